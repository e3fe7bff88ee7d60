package language

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"spa", "es"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"dut", "nl"},
		{"en-US", "en-US"},
		{"und", ""},
		{"", ""},
		{" ", ""},
		{"not a code", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Canonical(tt.input); got != tt.expected {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToISO3(t *testing.T) {
	tests := map[string]string{
		"en":  "eng",
		"fre": "fra",
		"de":  "deu",
		"ja":  "jpn",
		"":    "und",
	}
	for input, want := range tests {
		if got := ToISO3(input); got != want {
			t.Errorf("ToISO3(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"eng":      "English",
		"ger":      "German",
		"ja":       "Japanese",
		"en-GB":    "English",
		"":         "Unknown",
		"?? bogus": "?? BOGUS",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseStripsNullPadding(t *testing.T) {
	tag, ok := Parse("eng\x00")
	if !ok || tag.String() != "en" {
		t.Fatalf("Parse with NUL padding = %v, %v", tag, ok)
	}
}
