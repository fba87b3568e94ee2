package parser

import (
	"strings"
	"testing"
)

func TestTextParser_Indentation(t *testing.T) {
	input := "Høringsliste\n\n    Dansk Industri\n    KL\n\tLandbrug & Fødevarer\n"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "liste.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines, err := doc.Page(0).Lines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	want := []struct {
		text string
		left float64
		top  float64
	}{
		{"Høringsliste", 0, 0},
		{"Dansk Industri", 4, 2},
		{"KL", 4, 3},
		{"Landbrug & Fødevarer", 4, 4},
	}
	for i, w := range want {
		if lines[i].Text() != w.text {
			t.Errorf("line %d: expected %q, got %q", i, w.text, lines[i].Text())
		}
		if lines[i].Left != w.left || lines[i].Top != w.top {
			t.Errorf("line %d: expected (%v,%v), got (%v,%v)", i, w.left, w.top, lines[i].Left, lines[i].Top)
		}
	}
}

func TestTextParser_FormFeedSplitsPages(t *testing.T) {
	input := "Dansk Industri\n\fKL\nAarhus\fDanske Regioner"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "pages.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.NumPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.NumPages())
	}
	text, _ := doc.Page(1).PlainText()
	if text != "KL\nAarhus" {
		t.Errorf("expected page 2 text %q, got %q", "KL\nAarhus", text)
	}
	text, _ = doc.Page(2).PlainText()
	if text != "Danske Regioner" {
		t.Errorf("expected page 3 text %q, got %q", "Danske Regioner", text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.NumPages() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.NumPages())
	}
	text, _ := doc.Page(0).PlainText()
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader("   \n\t\nKL\n  \n"), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines, _ := doc.Page(0).Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}
