package units

import (
	"math"
	"strconv"
)

// NoTimestamp marks a tick value that is not known. It is distinct from 0,
// which is a valid tick.
const NoTimestamp int64 = math.MinInt64

// Unknown is the rendering of an absent timestamp or duration.
const Unknown = "N/A"

// Seconds converts ts ticks of time base tb into seconds. The boolean is false
// when ts is NoTimestamp or the time base has a zero denominator.
func Seconds(ts int64, tb Rational) (float64, bool) {
	if ts == NoTimestamp || tb.Den == 0 {
		return 0, false
	}
	return float64(ts) * float64(tb.Num) / float64(tb.Den), true
}

// TimeString renders ts as seconds through ValueString, or Unknown.
func TimeString(ts int64, tb Rational, flags Flags) string {
	seconds, ok := Seconds(ts, tb)
	if !ok {
		return Unknown
	}
	return ValueString(seconds, UnitSecond, flags)
}

// TicksString renders the raw tick value, or Unknown.
func TicksString(ts int64) string {
	if ts == NoTimestamp {
		return Unknown
	}
	return strconv.FormatInt(ts, 10)
}
