package clean

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/hearinglist/internal/layout"
	"golang.org/x/text/unicode/norm"
)

// commaDensityThreshold is the mean comma count per candidate at which the
// whole list is treated as one comma-separated run.
const commaDensityThreshold = 2

// maxDigits is the digit count at which a candidate is taken to be an
// address, phone or registration number.
const maxDigits = 4

var (
	// A splitting comma follows a word character, ")" or whitespace.
	splitComma  = regexp.MustCompile(`([\p{L}\p{N}_)\s]),`)
	wrapHyphen  = regexp.MustCompile(`-([a-z])`)
	ordinalMark = regexp.MustCompile(`^\p{Nd}+\.`)
	invisibles  = strings.NewReplacer("\u00a0", " ", "\u00ad", "")
)

// normalizeEncoding composes decomposed characters so "ø" and "å" compare
// equal however the PDF encoded them, and drops soft hyphens.
func normalizeEncoding(s string) string {
	return invisibles.Replace(norm.NFC.String(s))
}

func longerThanOne(s string) bool {
	return layout.RuneLen(s) > 1
}

// meanCommas is the average number of commas per candidate, 0 for none.
func meanCommas(cands []string) float64 {
	if len(cands) == 0 {
		return 0
	}
	total := 0
	for _, c := range cands {
		total += strings.Count(c, ",")
	}
	return float64(total) / float64(len(cands))
}

// resplitCommaRun joins the candidates and cuts them at splitting commas.
// Each fragment keeps the character before its comma. Text after the last
// splitting comma is discarded.
func resplitCommaRun(cands []string) []string {
	raw := strings.TrimSpace(strings.Join(cands, ""))
	var out []string
	prev := 0
	for _, m := range splitComma.FindAllStringSubmatchIndex(raw, -1) {
		fragment := raw[prev:m[3]]
		prev = m[1]
		out = append(out, dehyphenate(strings.TrimSpace(fragment)))
	}
	return out
}

// dehyphenate removes hyphens left by words wrapped across lines.
func dehyphenate(s string) string {
	return wrapHyphen.ReplaceAllString(s, "$1")
}

// stripEmails drops whitespace-separated tokens containing "@" and
// rejoins the rest with single spaces.
func stripEmails(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.Contains(f, "@") {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// isPageNoise reports page markers and list titles.
func isPageNoise(s string, v Vocabulary, lower func(string) string) bool {
	l := lower(s)
	for _, tok := range strings.Fields(l) {
		for _, p := range v.PageTokens {
			if tok == p {
				return true
			}
		}
	}
	for _, m := range v.TitleMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	trimmed := strings.TrimSpace(l)
	for _, e := range v.Exact {
		if trimmed == e {
			return true
		}
	}
	return false
}

// normalizeSymbols removes bullets, spaces out "/v" abbreviations, deletes
// double spaces outright and repairs a lone "1" read for "I".
func normalizeSymbols(s string, v Vocabulary) string {
	for _, b := range v.Bullets {
		s = strings.ReplaceAll(s, b, "")
	}
	s = strings.ReplaceAll(s, "/v", " /v")
	s = strings.ReplaceAll(s, "  ", "")
	return strings.ReplaceAll(s, " 1 ", " I ")
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func hasPhoneLabel(s string, v Vocabulary, lower func(string) string) bool {
	l := lower(s)
	for _, p := range v.PhoneLabels {
		if strings.Contains(l, p) {
			return true
		}
	}
	return false
}

// trimPunctuation strips dashes, periods and spaces from both ends, in
// that order.
func trimPunctuation(s string) string {
	s = strings.Trim(s, " -")
	s = strings.Trim(s, " –")
	s = strings.Trim(s, ".")
	return strings.TrimSpace(s)
}

// stripOrdinal removes a leading list number such as "12.".
func stripOrdinal(s string) string {
	return strings.TrimSpace(ordinalMark.ReplaceAllString(s, ""))
}

func trimCommas(s string) string {
	return strings.TrimSpace(strings.Trim(s, ","))
}

// isNumeric reports a non-empty string made only of digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// fixCasing title-cases every all-lowercase word and leaves any word with
// an upper-case letter alone, so acronyms and names like "KFUM" survive.
func fixCasing(s string) string {
	var b strings.Builder
	for _, seg := range splitWords(s) {
		if isLower(seg) {
			b.WriteString(titleCase(seg))
		} else {
			b.WriteString(seg)
		}
	}
	return b.String()
}

// splitWords cuts s into runs of word characters and single non-word
// characters, keeping every character.
func splitWords(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
		out = append(out, string(r))
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// isLower reports whether s has a cased letter and no upper or title case
// letters.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

// titleCase upper-cases a letter that follows an uncased character and
// lower-cases the rest, so "3f" becomes "3F".
func titleCase(s string) string {
	var b strings.Builder
	prevCased := false
	for _, r := range s {
		if !isCased(r) {
			b.WriteRune(r)
			prevCased = false
			continue
		}
		if prevCased {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToTitle(r))
		}
		prevCased = true
	}
	return b.String()
}
