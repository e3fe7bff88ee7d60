package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit identifies the measure a value is expressed in.
type Unit int

const (
	UnitNone Unit = iota
	UnitSecond
	UnitHertz
	UnitBit
	UnitByte
	UnitBitPerSecond
	UnitBytePerSecond
)

var unitSuffixes = [...]string{
	UnitNone:          "",
	UnitSecond:        "s",
	UnitHertz:         "Hz",
	UnitBit:           "bit",
	UnitByte:          "byte",
	UnitBitPerSecond:  "bit/s",
	UnitBytePerSecond: "byte/s",
}

// Suffix returns the printed unit symbol, or "" for UnitNone and unknown units.
func (u Unit) Suffix() string {
	if u < 0 || int(u) >= len(unitSuffixes) {
		return ""
	}
	return unitSuffixes[u]
}

// Flags selects how ValueString renders a value. The flags are orthogonal.
type Flags uint8

const (
	// UseUnit appends the unit suffix.
	UseUnit Flags = 1 << iota
	// UsePrefix scales the value into a kilo/mega/... tier.
	UsePrefix
	// UseBinaryPrefix selects the 1024 ladder (Ki, Mi, ...) when prefixing.
	UseBinaryPrefix
	// UseByteBinaryPrefix forces the binary ladder for UnitByte values only.
	UseByteBinaryPrefix
	// UseBabylonianTime renders seconds as H:MM:SS.uuuuuu.
	UseBabylonianTime
)

// Pretty is the flag set enabled by the --pretty option.
const Pretty = UseUnit | UsePrefix | UseBabylonianTime | UseByteBinaryPrefix

// MaxTier is the highest prefix tier (peta).
const MaxTier = 5

var (
	decimalPrefixes = [MaxTier + 1]string{"", "K", "M", "G", "T", "P"}
	binaryPrefixes  = [MaxTier + 1]string{"", "Ki", "Mi", "Gi", "Ti", "Pi"}
	decimalScales   = [MaxTier + 1]float64{1, 1e3, 1e6, 1e9, 1e12, 1e15}
)

func tierScale(tier int, binary bool) float64 {
	if binary {
		return math.Ldexp(1, 10*tier)
	}
	return decimalScales[tier]
}

// Tier returns the prefix tier for value on the decimal or binary ladder.
// Zero, negative and NaN inputs map to tier 0; values beyond peta clamp to
// MaxTier.
func Tier(value float64, binary bool) int {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	if math.IsInf(value, 1) {
		return MaxTier
	}

	var tier int
	if binary {
		tier = int(math.Log2(value)) / 10
	} else {
		tier = int(math.Log10(value)) / 3
	}
	tier = max(0, min(tier, MaxTier))

	// log10 is not exact at powers of ten (log10(1000) may land just below 3),
	// so settle the tier against the scale table.
	for tier < MaxTier && value >= tierScale(tier+1, binary) {
		tier++
	}
	for tier > 0 && value < tierScale(tier, binary) {
		tier--
	}
	return tier
}

// Prefix returns the prefix label for tier on the requested ladder.
func Prefix(tier int, binary bool) string {
	tier = max(0, min(tier, MaxTier))
	if binary {
		return binaryPrefixes[tier]
	}
	return decimalPrefixes[tier]
}

// Scale divides value by the factor of its tier and returns the mantissa,
// the tier and its prefix label.
func Scale(value float64, binary bool) (float64, int, string) {
	tier := Tier(value, binary)
	return value / tierScale(tier, binary), tier, Prefix(tier, binary)
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func ladderBase(binary bool) float64 {
	if binary {
		return 1024
	}
	return 1000
}

// ValueString renders val expressed in unit according to flags.
func ValueString(val float64, unit Unit, flags Flags) string {
	if unit == UnitByte && flags&UseByteBinaryPrefix != 0 {
		flags |= UseBinaryPrefix
	}

	if unit == UnitSecond && flags&UseBabylonianTime != 0 {
		return babylonian(val, flags)
	}

	suffix := ""
	if flags&UseUnit != 0 {
		suffix = unit.Suffix()
	}

	if flags&UsePrefix != 0 {
		binary := flags&UseBinaryPrefix != 0
		mantissa, tier, prefix := Scale(val, binary)
		// A mantissa that rounds up to the ladder base moves to the next tier.
		if tier < MaxTier && roundMillis(mantissa) >= ladderBase(binary) {
			tier++
			mantissa, prefix = val/tierScale(tier, binary), Prefix(tier, binary)
		}
		return joinValue(strconv.FormatFloat(mantissa, 'f', 3, 64), prefix+suffix)
	}
	return joinValue(strconv.FormatFloat(val, 'f', 6, 64), suffix)
}

func babylonian(val float64, flags Flags) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return strconv.FormatFloat(val, 'f', 6, 64)
	}
	sign := ""
	if val < 0 {
		sign = "-"
		val = -val
	}
	whole := math.Floor(val)
	usecs := int64(math.Round((val - whole) * 1e6))
	secs := int64(whole)
	if usecs >= 1_000_000 {
		secs++
		usecs -= 1_000_000
	}
	mins := secs / 60
	secs %= 60
	hours := mins / 60
	mins %= 60

	out := fmt.Sprintf("%s%d:%02d:%02d.%06d", sign, hours, mins, secs, usecs)
	if flags&UseUnit != 0 {
		return joinValue(out, UnitSecond.Suffix())
	}
	return out
}

func joinValue(number, suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return number
	}
	return number + " " + suffix
}
