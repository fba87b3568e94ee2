package extract

import (
	"strings"

	"github.com/dgallion1/hearinglist/internal/layout"
)

// DominantStyle returns the style signature carried by the most spans on a
// page, ignoring symbol fonts, single characters and email addresses. Ties
// go to the style seen first. ok is false when no span qualifies.
func DominantStyle(lines []layout.Line) (style string, ok bool) {
	counts := map[string]int{}
	var order []string
	for _, l := range lines {
		for _, s := range l.Spans {
			if !countsTowardStyle(s) {
				continue
			}
			if _, seen := counts[s.Style]; !seen {
				order = append(order, s.Style)
			}
			counts[s.Style]++
		}
	}

	best := 0
	for _, st := range order {
		if counts[st] > best {
			style, best = st, counts[st]
		}
	}
	return style, best > 0
}

func countsTowardStyle(s layout.Span) bool {
	if s.Style == "" || layout.IsSymbolStyle(s.Style) {
		return false
	}
	if layout.RuneLen(strings.TrimSpace(s.Text)) <= 1 {
		return false
	}
	return !strings.Contains(s.Text, "@")
}
