package mvnversion

import (
	"fmt"
	"strings"
)

// Range is a parsed Maven version range, e.g. "[1.0,2.0)" or "[1.5,)"
// (spec §4.1 Phase 3 "Version ranges in upstream POMs").
type Range struct {
	exact                       bool
	lowSet, highSet             bool
	low, high                   Version
	lowInclusive, highInclusive bool
}

// IsRange reports whether s uses Maven's bracket/paren range syntax, as
// opposed to a single concrete version string.
func IsRange(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > 1 && (s[0] == '[' || s[0] == '(')
}

// ParseRange parses a Maven version range expression: "[1.0]" (exact),
// "[1.0,2.0]" / "(1.0,2.0)" (inclusive/exclusive bounds, mixable), or an
// open-ended "[1.5,)" / "(,1.0]".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return Range{}, fmt.Errorf("invalid version range %q", s)
	}
	open, closeCh := s[0], s[len(s)-1]
	if (open != '[' && open != '(') || (closeCh != ']' && closeCh != ')') {
		return Range{}, fmt.Errorf("invalid version range %q: must be bracket/paren delimited", s)
	}
	inner := s[1 : len(s)-1]
	r := Range{lowInclusive: open == '[', highInclusive: closeCh == ']'}

	parts := strings.SplitN(inner, ",", 2)
	if len(parts) == 1 {
		v := strings.TrimSpace(parts[0])
		if v == "" {
			return Range{}, fmt.Errorf("invalid version range %q: missing version", s)
		}
		r.exact = true
		r.low, r.lowSet = Parse(v), true
		return r, nil
	}

	low, high := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if low != "" {
		r.low, r.lowSet = Parse(low), true
	}
	if high != "" {
		r.high, r.highSet = Parse(high), true
	}
	return r, nil
}

// Satisfies reports whether v falls within r.
func (r Range) Satisfies(v Version) bool {
	if r.exact {
		return Compare(v, r.low) == 0
	}
	if r.lowSet {
		c := Compare(v, r.low)
		if r.lowInclusive {
			if c < 0 {
				return false
			}
		} else if c <= 0 {
			return false
		}
	}
	if r.highSet {
		c := Compare(v, r.high)
		if r.highInclusive {
			if c > 0 {
				return false
			}
		} else if c >= 0 {
			return false
		}
	}
	return true
}
