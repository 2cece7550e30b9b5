package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind selects the layout rule of a struct.
type Kind int

const (
	Standard Kind = iota
	Packed
	Aligned
)

// Directive is the layout rule of one struct. The zero value is Standard.
type Directive struct {
	Kind Kind
	N    int64 // bound for Packed, minimum alignment for Aligned
}

// PackedTo returns the packed(n) directive.
func PackedTo(n int64) Directive {
	return Directive{Kind: Packed, N: n}
}

// AlignedTo returns the align(n) directive.
func AlignedTo(n int64) Directive {
	return Directive{Kind: Aligned, N: n}
}

// Bound returns the packing bound of a Packed directive.
func (d Directive) Bound() (int64, bool) {
	if d.Kind != Packed {
		return 0, false
	}

	return d.N, true
}

// Validate reports whether d is one of standard, packed(2^k) or align(2^k).
func (d Directive) Validate() error {
	switch d.Kind {
	case Standard:
		return nil
	case Packed, Aligned:
		if !IsPowerOfTwo(d.N) {
			return fmt.Errorf("%w: %s: %d is not a power of two", ErrInvalidDirective, d.keyword(), d.N)
		}

		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidDirective, int(d.Kind))
	}
}

func (d Directive) keyword() string {
	if d.Kind == Aligned {
		return "align"
	}

	return "packed"
}

// String returns the directive in the syntax ParseDirective accepts.
func (d Directive) String() string {
	switch d.Kind {
	case Packed, Aligned:
		return fmt.Sprintf("%s(%d)", d.keyword(), d.N)
	default:
		return "standard"
	}
}

var directiveToken = regexp.MustCompile(`^(packed|align)(?:\(\s*([^)]*?)\s*\))?$`)

// ParseDirective parses a layout directive.
//
// Accepted words are "standard" (or "C"), "packed" (same as packed(1)),
// "packed(N)" and "align(N)", separated by spaces or commas. "standard" may
// accompany one of the others. Several packed words keep the smallest bound
// and several align words keep the largest; packed and align together are
// rejected. The empty string is Standard.
func ParseDirective(text string) (Directive, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var packed, aligned []int64

	for _, f := range fields {
		if f == "standard" || f == "C" {
			continue
		}

		m := directiveToken.FindStringSubmatch(f)
		if m == nil {
			return Directive{}, fmt.Errorf("%w: unknown word %q", ErrInvalidDirective, f)
		}

		n := int64(1)

		switch {
		case len(f) > len(m[1]):
			v, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				return Directive{}, fmt.Errorf("%w: %s: bad argument %q", ErrInvalidDirective, m[1], m[2])
			}

			n = v
		case m[1] == "align":
			return Directive{}, fmt.Errorf("%w: align needs an argument", ErrInvalidDirective)
		}

		if !IsPowerOfTwo(n) {
			return Directive{}, fmt.Errorf("%w: %s(%d): %d is not a power of two", ErrInvalidDirective, m[1], n, n)
		}

		if m[1] == "packed" {
			packed = append(packed, n)
		} else {
			aligned = append(aligned, n)
		}
	}

	switch {
	case len(packed) > 0 && len(aligned) > 0:
		return Directive{}, fmt.Errorf("%w: packed and align on the same struct", ErrConflictingDirective)
	case len(packed) > 0:
		return PackedTo(minOf(packed)), nil
	case len(aligned) > 0:
		return AlignedTo(maxOf(aligned)), nil
	default:
		return Directive{}, nil
	}
}

func minOf(xs []int64) int64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = min(m, x)
	}

	return m
}

func maxOf(xs []int64) int64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = max(m, x)
	}

	return m
}
