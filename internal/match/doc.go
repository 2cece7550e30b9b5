// Package match ranks known names against an unknown one so diagnostics can
// offer "did you mean" suggestions.
//
// Key functions:
//   - NormalizeIdent: folds case and separators ("CTRL_REG" == "ctrlReg")
//   - Levenshtein: computes edit distance between strings
//   - Suggest: returns the closest candidates for a misspelled name
package match
