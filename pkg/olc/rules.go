package olc

import (
	"fmt"
	"strings"
)

// Rules selects the contest scoring scheme.
type Rules int

// The numeric values are persisted in settings and resume files.
const (
	Sprint Rules = iota
	Triangle
	Classic
	numRules
)

// Minimum buffered points before a shape scanner can produce anything.
const (
	MinPointsTriangle = 4
	MinPointsSprint   = 5
	MinPointsClassic  = 7
)

func (r Rules) String() string {
	switch r {
	case Sprint:
		return "sprint"
	case Triangle:
		return "triangle"
	case Classic:
		return "classic"
	default:
		return fmt.Sprintf("rules(%d)", int(r))
	}
}

// Valid reports whether r names a known scheme.
func (r Rules) Valid() bool {
	return r >= Sprint && r < numRules
}

// MinPoints is the number of points the rule's scanner needs.
func (r Rules) MinPoints() int {
	switch r {
	case Triangle:
		return MinPointsTriangle
	case Sprint:
		return MinPointsSprint
	default:
		return MinPointsClassic
	}
}

// ParseRules accepts the names produced by String.
func ParseRules(s string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sprint":
		return Sprint, nil
	case "triangle", "fai", "fai-triangle":
		return Triangle, nil
	case "classic":
		return Classic, nil
	}
	return Sprint, fmt.Errorf("unknown contest rules %q", s)
}

// MarshalText implements encoding.TextMarshaler so rules read naturally in
// YAML and JSON.
func (r Rules) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid contest rules %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rules) UnmarshalText(b []byte) error {
	v, err := ParseRules(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
