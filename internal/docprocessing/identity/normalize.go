package identity

import (
	"regexp"
	"strings"
)

// validVIN is the canonical 17-character VIN shape. VINs never contain
// the letters I, O or Q.
var validVIN = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]`)

// ocrConfusions maps letters that OCR engines commonly misread for digits.
// Substitution is only applied in digit-adjacent positions.
var ocrConfusions = map[byte]byte{
	'O': '0',
	'I': '1',
	'S': '5',
	'G': '6',
}

// NormalizeVIN canonicalizes a raw VIN string: uppercase, strip everything
// outside [A-Z0-9], then attempt OCR-confusion correction. Corrections are
// accepted only when the result completes to a valid 17-character VIN;
// otherwise the merely-cleaned string is returned unchanged. The function is
// idempotent: an already-valid VIN passes through without substitution.
func NormalizeVIN(raw string) string {
	cleaned := clean(raw)

	if validVIN.MatchString(cleaned) {
		return cleaned
	}

	// Only strings in the plausible length window are worth correcting.
	if len(cleaned) < 15 || len(cleaned) > 19 {
		return cleaned
	}

	corrected := correctConfusions(cleaned)
	if len(corrected) == 17 && validVIN.MatchString(corrected) {
		return corrected
	}

	return cleaned
}

// NormalizePlate canonicalizes a license plate: uppercase, strip everything
// outside [A-Z0-9]. No length enforcement.
func NormalizePlate(raw string) string {
	return clean(raw)
}

func clean(raw string) string {
	return nonAlnum.ReplaceAllString(strings.ToUpper(raw), "")
}

// correctConfusions substitutes confusable letters with the digit they were
// likely misread from, but only where the character sits next to a digit in
// the original string.
func correctConfusions(s string) string {
	out := []byte(s)
	for i := 0; i < len(s); i++ {
		repl, ok := ocrConfusions[s[i]]
		if !ok {
			continue
		}
		if digitAdjacent(s, i) {
			out[i] = repl
		}
	}
	return string(out)
}

func digitAdjacent(s string, i int) bool {
	if i > 0 && isDigit(s[i-1]) {
		return true
	}
	if i < len(s)-1 && isDigit(s[i+1]) {
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsValidVIN reports whether s is already a canonical 17-character VIN.
func IsValidVIN(s string) bool {
	return validVIN.MatchString(s)
}
