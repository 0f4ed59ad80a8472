package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reKeyNoise = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// NormalizeKey folds a header or JSON key for loose comparison:
// "Price (Small)", "price_small" and "PriceSmall" all become "pricesmall".
// Letters outside ASCII are kept.
func NormalizeKey(input string) string {
	return reKeyNoise.ReplaceAllString(strings.ToLower(input), "")
}

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }

// ParseBool accepts the usual on/off spellings found in env files, query
// strings and spreadsheet cells. ok is false when the value is not recognized.
func ParseBool(value string) (parsed bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	}
	return false, false
}
