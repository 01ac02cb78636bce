package token

import (
	"fmt"
	"strings"

	"mend/internal/source"
)

// Token is one delimiter found in a code span.
type Token struct {
	Kind Kind
	Span source.Span
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

// Text renders a run of kinds as source text.
func Text(kinds []Kind) string {
	buf := make([]byte, len(kinds))
	for i, k := range kinds {
		buf[i] = k.Byte()
	}
	return string(buf)
}

// Delta is a net opens-minus-closes count per delimiter family.
type Delta [delimCount]int

// Add accounts for one token.
func (d *Delta) Add(k Kind) {
	switch {
	case k.IsOpen():
		d[k.Delim()]++
	case k.IsClose():
		d[k.Delim()]--
	}
}

// Plus returns d+o.
func (d Delta) Plus(o Delta) Delta {
	for i := range d {
		d[i] += o[i]
	}
	return d
}

// Zero reports whether every family is balanced.
func (d Delta) Zero() bool {
	return d == Delta{}
}

// Abs returns the sum of absolute values over all families.
func (d Delta) Abs() int {
	n := 0
	for _, v := range d {
		if v < 0 {
			v = -v
		}
		n += v
	}
	return n
}

func (d Delta) String() string {
	var parts []string
	for _, dl := range Delims {
		if d[dl] != 0 {
			parts = append(parts, fmt.Sprintf("%s%+d", dl, d[dl]))
		}
	}
	if len(parts) == 0 {
		return "balanced"
	}
	return strings.Join(parts, " ")
}
