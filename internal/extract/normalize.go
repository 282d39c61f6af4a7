package extract

import "regexp"

// nonNumeric matches every character that is not a digit, a decimal point,
// or a minus sign.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Normalize reduces raw cell text to a canonical numeric string. Thousands
// separators, currency and unit symbols, and whitespace are all stripped.
// Total over every input; "" means the cell held no clean numeric value and
// the caller decides whether to keep it.
func Normalize(text string) string {
	return nonNumeric.ReplaceAllString(text, "")
}
