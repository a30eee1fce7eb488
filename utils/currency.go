package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCents renders an amount in cents with thousands separators,
// e.g. 1234550 -> "$12,345.50". Negative amounts keep a leading minus.
func FormatCents(cents int64) string {
	amount := decimal.New(cents, -2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	parts := strings.SplitN(fixed, ".", 2)
	integerPart := parts[0]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}
	return sign + "$" + strings.Join(groups, ",") + "." + parts[1]
}

