package layout

import (
	"strconv"
	"strings"
)

// Chain lists the packing bounds enclosing a field, outermost first.
type Chain []int64

// Extend returns the chain inside a struct with directive d. Only packed
// directives contribute a bound.
func (c Chain) Extend(d Directive) Chain {
	n, ok := d.Bound()
	if !ok {
		return c
	}

	out := make(Chain, len(c), len(c)+1)
	copy(out, c)

	return append(out, n)
}

// Bound returns the tightest bound in the chain.
func (c Chain) Bound() (int64, bool) {
	if len(c) == 0 {
		return 0, false
	}

	return minOf(c), true
}

// Transport returns the alignment a value of the given natural alignment is
// moved with at the end of the chain.
func (c Chain) Transport(natural int64) int64 {
	return EffectiveAlign(natural, c...)
}

// String formats the chain as "packed(4) > packed(1)", or "natural".
func (c Chain) String() string {
	if len(c) == 0 {
		return "natural"
	}

	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = "packed(" + strconv.FormatInt(n, 10) + ")"
	}

	return strings.Join(parts, " > ")
}
