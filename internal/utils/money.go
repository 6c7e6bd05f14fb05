package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRWF renders an integer franc amount with thousand separators.
func FormatRWF(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s RWF", sign, formatThousand(amount))
}

// ParseRWF parses "150,000 RWF" or "150000" into an integer franc amount.
func ParseRWF(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "rwf")
	replacer := strings.NewReplacer(".", "", ",", "", " ", "")
	s = replacer.Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid franc amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

// PercentOf computes pct percent of amount with round-half-up.
func PercentOf(amount int64, pct int64) int64 {
	return (amount*pct + 50) / 100
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
