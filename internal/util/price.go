package util

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reThousandsDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	reMixedComma     = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+\.\d+$`)
	reMixedDot       = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+,\d+$`)
)

const currencySymbols = "$€£₪¥₽"

// ParseDecimal parses a human-entered price such as "1 200,50", "₪120" or
// "1,000.5". ok is false for anything that is not a finite number.
func ParseDecimal(input string) (decimal.Decimal, bool) {
	token := NormalizeNumericToken(input)
	if token == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParsePrice is ParseDecimal for callers that want a nullable float.
func ParsePrice(input string) *float64 {
	d, ok := ParseDecimal(input)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return nil
	}
	return FloatPtr(f)
}

func NormalizeNumericToken(token string) string {
	s := strings.ReplaceAll(token, "\u00A0", " ")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, currencySymbols)
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	switch {
	case compact == "":
		return ""
	case reThousandsDot.MatchString(compact):
		return strings.ReplaceAll(compact, ".", "")
	case reThousandsComma.MatchString(compact):
		return strings.ReplaceAll(compact, ",", "")
	case reMixedComma.MatchString(compact):
		return strings.ReplaceAll(compact, ",", "")
	case reMixedDot.MatchString(compact):
		return strings.ReplaceAll(strings.ReplaceAll(compact, ".", ""), ",", ".")
	case strings.Contains(compact, ",") && !strings.Contains(compact, "."):
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
