package quantity

import "strings"

// Compatibility is the outcome of comparing two units.
type Compatibility int

const (
	// Unknown means one side has no unit; callers assume the units agree.
	Unknown Compatibility = iota
	Match
	Mismatch
)

func (c Compatibility) String() string {
	switch c {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "unit-unknown"
	}
}

// Compatible reports whether amounts in these units may be divided into each other.
func (c Compatibility) Compatible() bool {
	return c != Mismatch
}

// Compare checks units case-insensitively. An empty unit matches anything but
// is reported as Unknown rather than Match.
func Compare(a, b string) Compatibility {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return Unknown
	}
	if strings.EqualFold(a, b) {
		return Match
	}
	return Mismatch
}
