package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownStr is the String() result for out-of-range enum values.
const UnknownStr = "unknown"

// ExportName turns a schema or field name into an exported Go identifier:
// "ctrl_reg" becomes "CtrlReg", "count" becomes "Count". Names that already
// start with an upper-case letter keep their spelling.
func ExportName(name string) string {
	if name == "" {
		return ""
	}

	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) && !strings.ContainsAny(name, "_-") {
		return name
	}

	var b strings.Builder

	upper := true

	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))

			upper = false
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "" {
		return ""
	}

	if r, _ := utf8.DecodeRuneInString(out); !unicode.IsLetter(r) {
		out = "X" + out
	}

	return out
}
