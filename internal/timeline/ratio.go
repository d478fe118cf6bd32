package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ratio is a positive rational number, used for framerates and sample rates.
type Ratio struct {
	Num int64
	Den int64
}

// String renders the ratio in the num/den wire form ("25/1").
func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Value returns the ratio as a float.
func (r Ratio) Value() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// IsZero reports whether the ratio is unset.
func (r Ratio) IsZero() bool {
	return r.Num == 0 && r.Den == 0
}

const maxRatioDenominator = 1_000_000

// ParseRatio normalizes the textual and numeric framerate forms the input
// accepts: "25" and "25/1" both yield 25/1, a JSON number 23.976 yields its
// best rational approximation. Zero numerators or denominators are rejected.
func ParseRatio(value any) (Ratio, error) {
	switch v := value.(type) {
	case string:
		return parseRatioString(v)
	case float64:
		return ratioFromFloat(v)
	case int:
		return ratioFromInt(int64(v))
	case int64:
		return ratioFromInt(v)
	case nil:
		return Ratio{}, fmt.Errorf("missing value")
	default:
		return Ratio{}, fmt.Errorf("unsupported type %T", value)
	}
}

func parseRatioString(text string) (Ratio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Ratio{}, fmt.Errorf("empty value")
	}
	if left, right, found := strings.Cut(text, "/"); found {
		num, errN := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
		den, errD := strconv.ParseInt(strings.TrimSpace(right), 10, 64)
		if errN != nil || errD != nil {
			return Ratio{}, fmt.Errorf("%q is not an int/int ratio", text)
		}
		if num <= 0 || den <= 0 {
			return Ratio{}, fmt.Errorf("ratio %q must have positive numerator and denominator", text)
		}
		return Ratio{Num: num, Den: den}, nil
	}
	if num, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ratioFromInt(num)
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("%q is not parseable as int or int/int", text)
	}
	return ratioFromFloat(value)
}

func ratioFromInt(value int64) (Ratio, error) {
	if value <= 0 {
		return Ratio{}, fmt.Errorf("rate %d must be positive", value)
	}
	return Ratio{Num: value, Den: 1}, nil
}

// ratioFromFloat finds the best rational approximation with a bounded
// denominator using the continued fraction expansion of value.
func ratioFromFloat(value float64) (Ratio, error) {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return Ratio{}, fmt.Errorf("rate %v must be positive and finite", value)
	}
	if value == math.Trunc(value) {
		return Ratio{Num: int64(value), Den: 1}, nil
	}

	var p0, q0, p1, q1 int64 = 0, 1, 1, 0
	remainder := value
	for {
		whole := int64(math.Floor(remainder))
		p2 := whole*p1 + p0
		q2 := whole*q1 + q0
		if q2 > maxRatioDenominator {
			break
		}
		p0, q0, p1, q1 = p1, q1, p2, q2
		frac := remainder - math.Floor(remainder)
		if frac < 1e-12 {
			break
		}
		remainder = 1 / frac
	}
	if p1 <= 0 || q1 <= 0 {
		return Ratio{}, fmt.Errorf("rate %v has no positive rational form", value)
	}
	return Ratio{Num: p1, Den: q1}, nil
}
