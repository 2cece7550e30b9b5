// Package report renders layouts and diagnostics for people: aligned tables,
// coloured only when written to a terminal, and go-spew dumps of the model.
package report
