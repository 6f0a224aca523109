package templates

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Currency formats v as whole dollars with thousands separators.
func Currency(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + groupThousands(d.StringFixed(0))
}

// Number formats v rounded to an integer with thousands separators.
func Number(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	if d.IsNegative() {
		return "-" + groupThousands(d.Abs().StringFixed(0))
	}
	return groupThousands(d.StringFixed(0))
}

// Percent formats a fraction (0.25) as a percentage with one decimal.
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(hundred).StringFixed(1) + "%"
}

// Share formats an already-scaled percentage with one decimal.
func Share(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
