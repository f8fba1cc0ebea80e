package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	nonBudgetChars = regexp.MustCompile(`[^0-9.]`)
	budgetPrefix   = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)
)

// ParseBudget strips everything but digits and dots and reads the longest numeric prefix,
// so "$500,000" and "500000 usd" both give 500000. ok is false when nothing finite remains.
func ParseBudget(text string) (float64, bool) {
	digits := nonBudgetChars.ReplaceAllString(text, "")
	m := budgetPrefix.FindString(digits)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// looksNumeric reports whether text starts like an amount, optionally signed or behind a
// currency sign.
func looksNumeric(text string) bool {
	s := strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
	})
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return true
	}
	return len(s) > 1 && s[0] == '.' && s[1] >= '0' && s[1] <= '9'
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
