package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Bibliographic ISO 639-2/B codes mapped to their terminology form.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

// Parse returns the canonical tag for code. ok is false for empty,
// undetermined or unknown codes.
func Parse(code string) (xlanguage.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(code, "\u0000", "")))
	if code == "" {
		return xlanguage.Und, false
	}
	if mapped, ok := bibliographic[code]; ok {
		code = mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil || tag == xlanguage.Und {
		return xlanguage.Und, false
	}
	return tag, true
}

// Canonical returns the BCP 47 form of code ("eng" becomes "en"), or ""
// when the code is not recognized.
func Canonical(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return ""
	}
	return tag.String()
}

// ToISO3 converts code to its ISO 639-2/T form. Unknown codes give "und".
func ToISO3(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// DisplayName returns the English name of the language. Empty input gives
// "Unknown"; unrecognized codes come back uppercased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, ok := Parse(trimmed)
	if !ok {
		return strings.ToUpper(trimmed)
	}
	base, _ := tag.Base()
	name := display.English.Languages().Name(base)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}
