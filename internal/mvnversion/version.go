// Package mvnversion implements Maven's version ordering rules (see
// https://maven.apache.org/pom.html#Version_Order_Specification), used by
// the resolver to decide which of two candidate versions for a module wins.
package mvnversion

import (
	"strconv"
	"strings"
)

// qualifierRank orders the well-known Maven qualifiers relative to an
// unqualified release. Anything not in this table ranks as an "unknown"
// qualifier, which Maven sorts *above* release but below a following
// numeric segment.
var qualifierRank = map[string]int{
	"alpha":     -5,
	"a":         -5,
	"beta":      -4,
	"b":         -4,
	"milestone": -3,
	"m":         -3,
	"rc":        -2,
	"cr":        -2,
	"snapshot":  -1,
	"":          0,
	"ga":        0,
	"final":     0,
	"release":   0,
	"sp":        1,
}

const unknownQualifierRank = 2

// segment is one dot/dash-delimited piece of a version string.
type segment struct {
	sep      byte // separator preceding this segment; 0 for the first
	text     string
	numeric  bool
	num      int64
	qualRank int // only meaningful when !numeric
}

// Version is a parsed, comparable Maven version string.
type Version struct {
	raw      string
	segments []segment
}

// Parse splits a raw version string into comparable segments. Parse never
// fails: any input is a legal Maven version, including ones Maven itself
// would consider odd (Maven treats missing/garbage segments as qualifiers).
func Parse(raw string) Version {
	v := Version{raw: raw}
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return v
	}
	var sep byte
	start := 0
	flush := func(end int) {
		if start == end && sep == 0 {
			return
		}
		text := lower[start:end]
		v.segments = append(v.segments, newSegment(sep, text))
	}
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c == '.' || c == '-' {
			flush(i)
			sep = c
			start = i + 1
		}
	}
	flush(len(lower))
	// Maven treats a qualifier immediately followed by a number as an
	// implicit "-": 1.0-alpha1 splits into "alpha", "1" at the char-class
	// boundary even without an explicit separator. Re-split any mixed
	// alnum segment produced above.
	v.segments = expandMixedSegments(v.segments)
	return v
}

func newSegment(sep byte, text string) segment {
	s := segment{sep: sep, text: text}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		s.numeric = true
		s.num = n
	} else {
		s.qualRank = rankOf(text)
	}
	return s
}

func rankOf(text string) int {
	if r, ok := qualifierRank[text]; ok {
		return r
	}
	return unknownQualifierRank
}

// expandMixedSegments splits segments like "alpha1" (no explicit separator
// between a letter run and a digit run) into "alpha" and "1", joined by an
// implicit dash, matching Maven's lexer.
func expandMixedSegments(in []segment) []segment {
	out := make([]segment, 0, len(in))
	for _, s := range in {
		if s.numeric || s.text == "" {
			out = append(out, s)
			continue
		}
		boundary := -1
		for i, r := range s.text {
			if r >= '0' && r <= '9' {
				boundary = i
				break
			}
		}
		if boundary <= 0 {
			out = append(out, s)
			continue
		}
		head := s.text[:boundary]
		tail := s.text[boundary:]
		out = append(out, newSegment(s.sep, head))
		out = append(out, newSegment('-', tail))
	}
	return out
}

// Compare returns -1, 0, or 1 as a orders before, the same as, or after b,
// following Maven's version ordering rules: numeric segments compare
// numerically, qualifiers compare via the fixed SNAPSHOT < release < sp
// ordering (unknown qualifiers sort between release and the next numeric
// segment), missing trailing segments pad as zero/empty, and a longer
// version with extra non-zero segments is greater.
func Compare(a, b Version) int {
	n := len(a.segments)
	if len(b.segments) > n {
		n = len(b.segments)
	}
	for i := 0; i < n; i++ {
		as, aok := at(a.segments, i)
		bs, bok := at(b.segments, i)
		if c := compareSegment(as, aok, bs, bok); c != 0 {
			return c
		}
	}
	return 0
}

func at(segs []segment, i int) (segment, bool) {
	if i < len(segs) {
		return segs[i], true
	}
	return segment{}, false
}

// compareSegment compares a single position, treating a missing segment as
// padding: zero if the neighboring segment is numeric, empty-qualifier
// (rank 0) otherwise.
func compareSegment(a segment, aok bool, b segment, bok bool) int {
	if !aok && !bok {
		return 0
	}
	if !aok {
		return -compareSegment(b, bok, a, aok)
	}
	if !bok {
		if a.numeric {
			if a.num == 0 {
				return 0
			}
			return sign(a.num)
		}
		return sign(int64(a.qualRank))
	}
	if a.numeric != b.numeric {
		// A numeric segment always outranks a qualifier segment at the
		// same position (e.g. "1.1" > "1.alpha"), except both empty.
		if a.numeric {
			return 1
		}
		return -1
	}
	if a.numeric {
		return sign(a.num - b.num)
	}
	if a.qualRank != b.qualRank {
		return sign(int64(a.qualRank - b.qualRank))
	}
	return strings.Compare(a.text, b.text)
}

func sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Less reports whether a orders strictly before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// String returns the original, unparsed version string.
func (v Version) String() string { return v.raw }
