// Package report counts entity occurrences across a corpus result and
// writes them as CSV, Markdown or HTML.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Count is one entity and the number of times it appears.
type Count struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// CountEntities tallies every entity in lists, most frequent first. Ties keep
// the order in which entities were first seen.
func CountEntities(lists [][]string) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, list := range lists {
		for _, e := range list {
			i, ok := index[e]
			if !ok {
				i = len(counts)
				index[e] = i
				counts = append(counts, Count{Entity: e})
			}
			counts[i].Count++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

// WriteCSV writes an entity,count header followed by one row per entity.
func WriteCSV(w io.Writer, counts []Count) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entity", "count"}); err != nil {
		return err
	}
	for _, c := range counts {
		if err := cw.Write([]string{c.Entity, strconv.Itoa(c.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown writes counts as a GFM table under a heading.
func WriteMarkdown(w io.Writer, title string, counts []Count) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("| Entity | Count |\n|---|---:|\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(c.Entity), c.Count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderHTML renders the Markdown report to an HTML fragment.
func RenderHTML(w io.Writer, title string, counts []Count) error {
	var src bytes.Buffer
	if err := WriteMarkdown(&src, title, counts); err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := md.Convert(src.Bytes(), w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
