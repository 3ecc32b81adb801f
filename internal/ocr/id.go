package ocr

import (
	"regexp"
	"strings"
)

var (
	// Reference designators: C=capacitor, R=resistor, U=IC, Q=transistor,
	// D=diode, L=inductor, J/P=connector, T=transformer, Y=crystal, TP=test point
	designatorPattern = regexp.MustCompile(`^(TP|[CRUQDLJTPYKXF])\d+[A-Z]?$`)

	// Anything that could be an id: letters, digits, dash, underscore
	tokenPattern = regexp.MustCompile(`[A-Z0-9][A-Z0-9_-]*`)
)

// CleanID extracts an id from OCR text. A token shaped like a reference
// designator wins; otherwise the first token with a letter is used.
func CleanID(text string) string {
	tokens := tokenPattern.FindAllString(strings.ToUpper(text), -1)

	for _, tok := range tokens {
		if designatorPattern.MatchString(fixDigits(tok)) {
			return fixDigits(tok)
		}
	}
	for _, tok := range tokens {
		tok = strings.Trim(tok, "-_")
		if strings.ContainsAny(tok, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") && len(tok) > 1 {
			return tok
		}
	}
	return ""
}

// fixDigits repairs the usual letter/digit confusion after a designator
// prefix: "R1O" reads as "R10", "C2I" as "C21".
func fixDigits(tok string) string {
	prefix := 1
	if strings.HasPrefix(tok, "TP") {
		prefix = 2
	}
	if len(tok) <= prefix {
		return tok
	}
	tail := []byte(tok[prefix:])
	if tail[0] < '0' || tail[0] > '9' {
		return tok
	}
	for i, c := range tail {
		switch c {
		case 'O':
			tail[i] = '0'
		case 'I':
			tail[i] = '1'
		case 'S':
			tail[i] = '5'
		}
	}
	return tok[:prefix] + string(tail)
}
