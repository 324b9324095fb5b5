package utils

import "strconv"

// FormatAmount renders an amount with comma grouping (e.g. 1234567 -> "1,234,567")
func FormatAmount(value int64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	digits := strconv.FormatInt(value, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var out []byte
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i:i+3]...)
	}
	return sign + string(out)
}
