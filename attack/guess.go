package attack

import (
	"fmt"
	"strings"
)

// Kind tags a recovered coordinate.
type Kind uint8

const (
	// Determined means the coordinate is pinned to a single value.
	Determined Kind = iota
	// Ambiguous means the coordinate is known to lie in [Lo, Hi].
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Determined:
		return "determined"
	case Ambiguous:
		return "ambiguous"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Coordinate is one entry of a Guess. For Determined coordinates only Value
// is meaningful; for Ambiguous ones the closed interval [Lo, Hi] is the
// candidate set. An Ambiguous coordinate with Lo > Hi is empty and can only
// arise from samples that violate the acceptance window.
type Coordinate struct {
	Kind  Kind
	Value int64
	Lo    int64
	Hi    int64
}

// Fixed builds a Determined coordinate.
func Fixed(v int64) Coordinate {
	return Coordinate{Kind: Determined, Value: v, Lo: v, Hi: v}
}

// Interval builds an Ambiguous coordinate covering [lo, hi].
func Interval(lo, hi int64) Coordinate {
	return Coordinate{Kind: Ambiguous, Lo: lo, Hi: hi}
}

// Size is the number of candidates, 1 for a Determined coordinate.
func (c Coordinate) Size() int64 {
	if c.Kind == Determined {
		return 1
	}
	if c.Hi < c.Lo {
		return 0
	}
	return c.Hi - c.Lo + 1
}

// Contains reports whether v is a candidate for this coordinate.
func (c Coordinate) Contains(v int64) bool {
	if c.Kind == Determined {
		return v == c.Value
	}
	return c.Lo <= v && v <= c.Hi
}

// Candidates enumerates the candidate set in increasing order.
func (c Coordinate) Candidates() []int64 {
	if c.Kind == Determined {
		return []int64{c.Value}
	}
	out := make([]int64, 0, c.Size())
	for v := c.Lo; v <= c.Hi; v++ {
		out = append(out, v)
	}
	return out
}

func (c Coordinate) String() string {
	if c.Kind == Determined {
		return fmt.Sprintf("%d", c.Value)
	}
	return fmt.Sprintf("[%d..%d]", c.Lo, c.Hi)
}

// Guess is the per-coordinate output of the recoverer.
type Guess []Coordinate

// Known counts the Determined coordinates.
func (g Guess) Known() int {
	n := 0
	for _, c := range g {
		if c.Kind == Determined {
			n++
		}
	}
	return n
}

func (g Guess) String() string {
	parts := make([]string, len(g))
	for i, c := range g {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
