package fixed

import "testing"

func TestParseString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1"},
		{"1.5", "1.5"},
		{"0.000000000000000001", "0.000000000000000001"},
		{"30", "30"},
		{"20.10", "20.1"},
		{"100.000000000000000000", "100"},
	}
	for _, tt := range tests {
		v, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got := v.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsTooManyDigits(t *testing.T) {
	if _, err := Parse("1.0000000000000000001"); err == nil {
		t.Error("expected error for 19 fractional digits")
	}
}

func TestMulDown(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"1.5", "20", "30"},
		{"2", "3", "6"},
		{"0", "20", "0"},
		// 1/3 * 3 loses one wei rounding down
		{"0.333333333333333333", "3", "0.999999999999999999"},
	}
	for _, tt := range tests {
		got := MustParse(tt.a).MulDown(MustParse(tt.b))
		if got.String() != tt.want {
			t.Errorf("%s.MulDown(%s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMulUpRoundsAgainstCaller(t *testing.T) {
	got := MustParse("0.333333333333333333").MulUp(MustParse("3"))
	if got.String() != "1" {
		t.Errorf("MulUp = %s, want 1", got)
	}
	if !Zero().MulUp(MustParse("3")).IsZero() {
		t.Error("0.MulUp(x) should be 0")
	}
}

func TestDivDirections(t *testing.T) {
	// 30 / 20 = 1.5 exactly in both directions
	down := MustParse("30").DivDown(MustParse("20"))
	up := MustParse("30").DivUp(MustParse("20"))
	if down.String() != "1.5" || up.String() != "1.5" {
		t.Errorf("30/20: down=%s up=%s, want 1.5", down, up)
	}

	// 1 / 3: down truncates, up rounds away
	down = One().DivDown(MustParse("3"))
	up = One().DivUp(MustParse("3"))
	if down.String() != "0.333333333333333333" {
		t.Errorf("DivDown = %s", down)
	}
	if up.String() != "0.333333333333333334" {
		t.Errorf("DivUp = %s", up)
	}
}

func TestDivByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on division by zero")
		}
	}()
	One().DivDown(Zero())
}

func TestAddSubMinCmp(t *testing.T) {
	a, b := MustParse("10"), MustParse("4")
	if got := a.Sub(b).String(); got != "6" {
		t.Errorf("10-4 = %s", got)
	}
	if got := a.Add(b).String(); got != "14" {
		t.Errorf("10+4 = %s", got)
	}
	if got := a.Min(b); !got.Eq(b) {
		t.Errorf("min(10,4) = %s", got)
	}
	if !b.Lt(a) || !a.Gt(b) || !a.Gte(a) || !b.Lte(b) {
		t.Error("comparison helpers inconsistent")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v := MustParse("20.125")
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"20.125"` {
		t.Errorf("MarshalJSON = %s", data)
	}
	var back Value
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if !back.Eq(v) {
		t.Errorf("round trip mismatch: %s != %s", back, v)
	}
}
