package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9]`)
	digitsRe    = regexp.MustCompile(`[0-9]+`)
	spaceRe     = regexp.MustCompile(`\s+`)
	headerStrip = regexp.MustCompile(`[."(),/]`)
)

// minMeterReading is the smallest integer accepted as a meter reading;
// smaller numbers in prose are usually counts.
const minMeterReading = 10

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize returns the comparison key of free text: accents folded,
// lower-cased, and every rune outside [a-z0-9] removed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return nonAlnumRe.ReplaceAllString(foldAccents(strings.ToLower(s)), "")
}

// Words splits s on whitespace and normalizes each word, dropping empties.
func Words(s string) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if n := Normalize(w); n != "" {
			words = append(words, n)
		}
	}
	return words
}

// MeterReading returns the first integer in s greater than 10.
func MeterReading(s string) (int64, bool) {
	for _, tok := range digitsRe.FindAllString(s, -1) {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		if n > minMeterReading {
			return n, true
		}
	}
	return 0, false
}

// Quantity parses a decimal that may use a comma separator ("1,5").
func Quantity(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HeaderKey turns a sheet header into a column key: trimmed, inner spaces
// replaced by underscores, punctuation stripped, lower-cased.
func HeaderKey(h string) string {
	h = spaceRe.ReplaceAllString(strings.TrimSpace(h), "_")
	return strings.ToLower(headerStrip.ReplaceAllString(h, ""))
}
