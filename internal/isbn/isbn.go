// Package isbn implements ISBN-10 and ISBN-13 check-digit validation.
package isbn

import "strings"

// Normalize strips hyphens and spaces and uppercases a trailing 'x'.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToUpper(s)
}

// Valid reports whether s is a checksum-valid ISBN-10 or ISBN-13, ignoring
// hyphens and spaces. Any other length is invalid.
func Valid(s string) bool {
	n := Normalize(s)
	switch len(n) {
	case 10:
		return validISBN10(n)
	case 13:
		return validISBN13(n)
	}
	return false
}

// validISBN10 checks the weighted sum with weights 10..1 modulo 11.
// The final position may be 'X', counting as 10.
func validISBN10(s string) bool {
	sum := 0
	for i, r := range s {
		var digit int
		switch {
		case r >= '0' && r <= '9':
			digit = int(r - '0')
		case r == 'X' && i == 9:
			digit = 10
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// validISBN13 checks the alternating 1,3 weighted sum modulo 10.
func validISBN13(s string) bool {
	sum := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return sum%10 == 0
}
