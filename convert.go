package dbtype

import (
	"math"
	"strconv"
	"strings"
)

// underlyingInt returns v as an int64 if v is any integer kind that fits.
func underlyingInt(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// isDigits reports whether s is non-empty and made only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isNumeric reports whether s is a decimal number: an optional sign, digits with an
// optional fraction and an optional exponent, with surrounding white space allowed.
// NaN, Inf and hexadecimal forms are not numeric.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		for i++; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for ; i < len(s) && isDigit(s[i]); i++ {
		}
		if i == start {
			return false
		}
	}

	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// leadingInt reads the integer at the start of s the way a lenient form parser would:
// leading spaces and a sign are accepted, anything after the digits is ignored and a
// string without digits is 0. Numeric strings with a fraction or exponent are
// truncated toward zero. Integers outside the int32 range are an error.
func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)

	if isNumeric(s) && strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		f = math.Trunc(f)
		if f < math.MinInt32 || f > math.MaxInt32 {
			return 0, strconv.ErrRange
		}
		return int(f), nil
	}

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == start {
		return 0, nil
	}

	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
