package units

import "testing"

func TestReduce(t *testing.T) {
	tests := []struct {
		num, den, limit int64
		want            Rational
	}{
		{1920, 1080, 1 << 20, Rational{16, 9}},
		{720 * 64, 576 * 45, 1 << 20, Rational{16, 9}},
		{0, 5, 1 << 20, Rational{0, 1}},
		{-4, 6, 1 << 20, Rational{-2, 3}},
		{3141592653, 1000000000, 1000, Rational{355, 113}},
		{7, 0, 1 << 20, Rational{0, 0}},
	}
	for _, tt := range tests {
		if got := Reduce(tt.num, tt.den, tt.limit); got != tt.want {
			t.Fatalf("Reduce(%d, %d, %d) = %v, want %v", tt.num, tt.den, tt.limit, got, tt.want)
		}
	}
}

func TestParseRational(t *testing.T) {
	for input, want := range map[string]Rational{
		"30000/1001": {30000, 1001},
		"24:1":       {24, 1},
		" 1/1000 ":   {1, 1000},
	} {
		got, err := ParseRational(input)
		if err != nil {
			t.Fatalf("ParseRational(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseRational(%q) = %v, want %v", input, got, want)
		}
	}
	for _, input := range []string{"", "bad", "1/", "/2", "a/b"} {
		if _, err := ParseRational(input); err == nil {
			t.Fatalf("ParseRational(%q) expected error", input)
		}
	}
}
