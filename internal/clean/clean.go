// Package clean turns raw hearing-list candidates into organisation names.
//
// The passes run in a fixed order and are not commutative: the comma re-split
// must see the raw text, the digit filter must run before ordinal numbers
// are stripped, and casing runs last on the surviving strings.
package clean

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options toggles heuristics that are off by default.
type Options struct {
	Vocabulary Vocabulary
	// RejectMostlyUntitled empties the list when at most a third of the
	// entries are already title case.
	RejectMostlyUntitled bool
	// Dedupe returns the sorted set of names.
	Dedupe bool
}

// Cleaner is stateless and safe for concurrent use.
type Cleaner struct {
	opts Options
}

// New returns a Cleaner. An empty vocabulary selects the built-in one.
func New(opts Options) *Cleaner {
	if isZeroVocabulary(opts.Vocabulary) {
		opts.Vocabulary = DefaultVocabulary()
	}
	return &Cleaner{opts: opts}
}

// Clean runs every pass over cands and returns a new list.
func (c *Cleaner) Clean(cands []string) []string {
	v := c.opts.Vocabulary
	lower := cases.Lower(language.Danish).String

	out := mapEach(cands, normalizeEncoding)
	out = keep(out, longerThanOne)
	if meanCommas(out) >= commaDensityThreshold {
		out = resplitCommaRun(out)
	}
	out = mapEach(out, stripEmails)
	out = keep(out, func(s string) bool { return !isPageNoise(s, v, lower) })
	out = mapEach(out, func(s string) string { return normalizeSymbols(s, v) })
	out = keep(out, func(s string) bool { return countDigits(s) < maxDigits })
	out = keep(out, func(s string) bool { return !hasPhoneLabel(s, v, lower) })
	out = mapEach(out, trimPunctuation)
	out = mapEach(out, stripOrdinal)
	out = keep(out, func(s string) bool { return !strings.HasSuffix(s, ":") })
	out = mapEach(out, trimCommas)
	out = keep(out, func(s string) bool { return !isNumeric(s) })
	out = keep(out, longerThanOne)
	out = keep(out, func(s string) bool { return strings.TrimSpace(s) != "" })

	if c.opts.RejectMostlyUntitled && mostlyUntitled(out) {
		out = []string{}
	}
	out = mapEach(out, fixCasing)
	if c.opts.Dedupe {
		out = dedupe(out)
	}
	return out
}

// mostlyUntitled reports whether no more than a third of the entries are
// already in title case.
func mostlyUntitled(cands []string) bool {
	titled := 0
	for _, s := range cands {
		if s == titleCase(s) {
			titled++
		}
	}
	return float64(titled) <= float64(len(cands))/3
}

func dedupe(cands []string) []string {
	seen := make(map[string]bool, len(cands))
	out := make([]string, 0, len(cands))
	for _, s := range cands {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func mapEach(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

func keep(in []string, pred func(string) bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

func isZeroVocabulary(v Vocabulary) bool {
	return v.PageTokens == nil && v.TitleMarkers == nil && v.Exact == nil &&
		v.PhoneLabels == nil && v.Bullets == nil
}
