package distance

import (
	"fmt"
	"math"
)

// Unreachable is the distance between positions with no route between them.
// It is distinct from zero and from every real distance.
const Unreachable int64 = math.MaxInt64

// Unbounded is the upper bound of a quantity with no finite bound. It shares
// its value with [Unreachable]; test for it with [IsInf].
const Unbounded = Unreachable

// IsInf reports whether d is [Unreachable] or [Unbounded].
func IsInf(d int64) bool { return d == Unreachable }

// Span is a closed interval [Lo, Hi] known to contain a distance.
type Span struct {
	Lo int64 `json:"lo"`
	Hi int64 `json:"hi"`
}

// Exactly returns the span holding only d.
func Exactly(d int64) Span { return Span{Lo: d, Hi: d} }

// Bounded returns the span [0, hi].
func Bounded(hi int64) Span { return Span{Lo: 0, Hi: hi} }

// Never is the span of an unreachable pair.
var Never = Span{Lo: Unreachable, Hi: Unreachable}

// Exact reports whether the span pins down a single value.
func (s Span) Exact() bool { return s.Lo == s.Hi }

// Reachable reports whether the span holds any real distance.
func (s Span) Reachable() bool { return s.Lo != Unreachable }

// Add returns the span of a sum, saturating at [Unreachable].
func (s Span) Add(o Span) Span {
	return Span{Lo: add(s.Lo, o.Lo), Hi: add(s.Hi, o.Hi)}
}

// Min returns the span of the smaller of two distances.
func (s Span) Min(o Span) Span {
	return Span{Lo: min(s.Lo, o.Lo), Hi: min(s.Hi, o.Hi)}
}

// Contains reports whether d lies in the span.
func (s Span) Contains(d int64) bool { return s.Lo <= d && d <= s.Hi }

// String formats the span as "5" or "[3, 9]", with "inf" for unbounded ends.
func (s Span) String() string {
	if s.Exact() {
		return format(s.Lo)
	}
	return fmt.Sprintf("[%s, %s]", format(s.Lo), format(s.Hi))
}

func format(d int64) string {
	if IsInf(d) {
		return "inf"
	}
	return fmt.Sprint(d)
}

func add(a, b int64) int64 {
	if a == Unreachable || b == Unreachable || a > Unreachable-b {
		return Unreachable
	}
	return a + b
}

// sub returns a-b for prefix sums, keeping saturated sums saturated.
func sub(a, b int64) int64 {
	if a == Unreachable || b == Unreachable {
		return Unreachable
	}
	return a - b
}
