// Package numfmt formats numbers the way German readers expect them:
// "." groups thousands and "," separates decimals.
package numfmt

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is safe for concurrent use; it holds no per-call state.
var printer = message.NewPrinter(language.German)

// Int formats n with thousands grouping ("12.345").
func Int(n int) string {
	return printer.Sprintf("%d", n)
}

// Round formats v rounded half away from zero to an integer.
func Round(v float64) string {
	return Int(int(math.Round(v)))
}

// Decimal formats v with exactly digits fraction digits ("1.234,50").
func Decimal(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	return printer.Sprintf("%."+strconv.Itoa(digits)+"f", v)
}

// SignedPercent formats v as a percentage with an explicit sign
// ("+20,0 %", "-3,40 %"). The sign follows the rounded value, so anything
// that rounds to zero is rendered with a plus sign.
func SignedPercent(v float64, digits int) string {
	digits = max(digits, 0)
	scale := math.Pow(10, float64(digits))
	v = math.Round(v*scale) / scale
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + Decimal(math.Abs(v), digits) + " %"
}

// Number formats a value that may or may not be integral. Integral values
// are grouped like Int, others keep up to three fraction digits.
func Number(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return Int(int(v))
	}
	return trimFraction(Decimal(v, 3))
}

// trimFraction drops trailing zeros after the decimal comma.
func trimFraction(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == '0' {
		end--
	}
	if end > 0 && s[end-1] == ',' {
		end--
	}
	return s[:end]
}
