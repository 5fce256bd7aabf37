package mvnversion

import "testing"

func TestIsRange(t *testing.T) {
	cases := map[string]bool{
		"1.0":        false,
		"[1.0]":      true,
		"[1.0,2.0)":  true,
		"(,1.0]":     true,
		"[1.5,)":     true,
	}
	for v, want := range cases {
		if got := IsRange(v); got != want {
			t.Fatalf("IsRange(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestParseRangeExactVersion(t *testing.T) {
	r, err := ParseRange("[1.0]")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !r.Satisfies(Parse("1.0")) {
		t.Fatal("expected exact version to satisfy")
	}
	if r.Satisfies(Parse("1.1")) {
		t.Fatal("expected different version to not satisfy exact range")
	}
}

func TestParseRangeInclusiveBounds(t *testing.T) {
	r, err := ParseRange("[1.0,2.0]")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	for _, v := range []string{"1.0", "1.5", "2.0"} {
		if !r.Satisfies(Parse(v)) {
			t.Fatalf("expected %s to satisfy [1.0,2.0]", v)
		}
	}
	if r.Satisfies(Parse("0.9")) || r.Satisfies(Parse("2.1")) {
		t.Fatal("expected bounds to exclude values outside the range")
	}
}

func TestParseRangeExclusiveBounds(t *testing.T) {
	r, err := ParseRange("(1.0,2.0)")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if r.Satisfies(Parse("1.0")) || r.Satisfies(Parse("2.0")) {
		t.Fatal("expected exclusive bounds to exclude their endpoints")
	}
	if !r.Satisfies(Parse("1.5")) {
		t.Fatal("expected 1.5 to satisfy (1.0,2.0)")
	}
}

func TestParseRangeOpenEnded(t *testing.T) {
	r, err := ParseRange("[1.5,)")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if r.Satisfies(Parse("1.4")) {
		t.Fatal("expected 1.4 to not satisfy [1.5,)")
	}
	if !r.Satisfies(Parse("99.0")) {
		t.Fatal("expected open-ended upper bound to admit any higher version")
	}
}

func TestParseRangeRejectsMalformed(t *testing.T) {
	if _, err := ParseRange("1.0"); err == nil {
		t.Fatal("expected error for non-bracketed input")
	}
	if _, err := ParseRange("[1.0"); err == nil {
		t.Fatal("expected error for unbalanced brackets")
	}
}
