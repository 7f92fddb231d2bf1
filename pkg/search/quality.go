package search

import "time"

// Quality represents the desired trade-off between search speed and the
// chance of settling a request before the budget runs out.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityThorough
)

const (
	DefaultStatesFast     = 10_000
	DefaultStatesBalanced = 200_000
	DefaultStatesThorough = 5_000_000
)

const (
	DefaultTimeoutFast     = 100 * time.Millisecond
	DefaultTimeoutBalanced = 5 * time.Second
	DefaultTimeoutThorough = 60 * time.Second
)

// MaxStates returns the default state budget.
func (q Quality) MaxStates() int {
	switch q {
	case QualityFast:
		return DefaultStatesFast
	case QualityThorough:
		return DefaultStatesThorough
	default:
		return DefaultStatesBalanced
	}
}

// Timeout returns the default time limit.
func (q Quality) Timeout() time.Duration {
	switch q {
	case QualityFast:
		return DefaultTimeoutFast
	case QualityThorough:
		return DefaultTimeoutThorough
	default:
		return DefaultTimeoutBalanced
	}
}

// String returns "fast", "balanced" or "thorough".
func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityThorough:
		return "thorough"
	default:
		return "balanced"
	}
}

// ParseQuality parses a quality name. The empty string is balanced.
func ParseQuality(s string) (Quality, bool) {
	switch s {
	case "fast":
		return QualityFast, true
	case "", "balanced":
		return QualityBalanced, true
	case "thorough":
		return QualityThorough, true
	}
	return QualityBalanced, false
}
