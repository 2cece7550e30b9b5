// Package diagnostic provides structured build-time errors and warnings for
// volgen.
//
// Every diagnostic names the struct it concerns and, where it applies, the
// field path and layout directive, so a failed generation can be fixed from
// the message alone:
//   - rejected layout directives
//   - unsupported field shapes
//   - layouts Go cannot express natively
//   - unknown type names with suggestions
package diagnostic
