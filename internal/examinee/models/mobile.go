package models

import (
	platformstrings "examreg/pkg/platform/strings"
)

const maxMobileDigits = 11

// NormalizeMobile keeps at most 11 digits of s.
func NormalizeMobile(s string) string {
	digits := platformstrings.DigitsOnly(s)
	if len(digits) > maxMobileDigits {
		digits = digits[:maxMobileDigits]
	}
	return digits
}

// FormatMobile renders a number as 3-4-4 (010-1234-5678). Shorter inputs are
// split as far as they go.
func FormatMobile(s string) string {
	d := NormalizeMobile(s)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 7:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	}
}
