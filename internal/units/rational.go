package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Rational is a numerator/denominator pair, used for time bases, frame rates
// and aspect ratios.
type Rational struct {
	Num int64
	Den int64
}

// TimeBaseMicros is the container-level time base (microseconds).
var TimeBaseMicros = Rational{Num: 1, Den: 1_000_000}

// String renders the rational as "num/den".
func (r Rational) String() string {
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10)
}

// Float64 returns num/den, or 0 when the denominator is zero.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// IsZero reports whether the rational carries no information.
func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

// Invert swaps numerator and denominator.
func (r Rational) Invert() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// ParseRational accepts "num/den" or "num:den".
func ParseRational(value string) (Rational, error) {
	value = strings.TrimSpace(value)
	sep := strings.IndexAny(value, "/:")
	if sep <= 0 || sep == len(value)-1 {
		return Rational{}, fmt.Errorf("parse rational %q: expected num/den", value)
	}
	num, err := strconv.ParseInt(value[:sep], 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", value, err)
	}
	den, err := strconv.ParseInt(value[sep+1:], 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", value, err)
	}
	return Rational{Num: num, Den: den}, nil
}

// Reduce returns num/den in lowest terms with both parts bounded by limit.
// When the exact fraction does not fit, the closest continued fraction
// convergent (or semiconvergent) within the bound is returned.
func Reduce(num, den, limit int64) Rational {
	if den == 0 {
		return Rational{Num: 0, Den: 0}
	}
	if num == 0 {
		return Rational{Num: 0, Den: 1}
	}
	negative := (num < 0) != (den < 0)
	num, den = abs64(num), abs64(den)

	if g := gcd(num, den); g > 1 {
		num /= g
		den /= g
	}
	if num > limit || den > limit {
		num, den = approximate(num, den, limit)
	}
	if negative {
		num = -num
	}
	return Rational{Num: num, Den: den}
}

func approximate(num, den, limit int64) (int64, int64) {
	// a0 and a1 are the previous two convergents.
	a0n, a0d := int64(0), int64(1)
	a1n, a1d := int64(1), int64(0)
	n, d := num, den
	target := float64(num) / float64(den)

	for d != 0 {
		x := n / d
		nextN := x*a1n + a0n
		nextD := x*a1d + a0d
		if nextN > limit || nextD > limit {
			k := x
			if a1n != 0 {
				k = min(k, (limit-a0n)/a1n)
			}
			if a1d != 0 {
				k = min(k, (limit-a0d)/a1d)
			}
			if k > 0 {
				semiN, semiD := k*a1n+a0n, k*a1d+a0d
				if a1d == 0 || absFloat(float64(semiN)/float64(semiD)-target) < absFloat(float64(a1n)/float64(a1d)-target) {
					return semiN, semiD
				}
			}
			break
		}
		a0n, a0d = a1n, a1d
		a1n, a1d = nextN, nextD
		n, d = d, n-x*d
	}
	if a1d == 0 {
		return limit, 1
	}
	return a1n, a1d
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
