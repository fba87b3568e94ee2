package layout

import (
	"math"
	"sort"
	"strings"
)

// Rect is a filled or stroked rectangle in PDF user space. Corners may come
// in any order; Normalize puts X0,Y0 at the bottom-left.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Normalize orders the corners so that X0 <= X1 and Y0 <= Y1.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Grid is a detected ruled table: column boundaries left to right and row
// boundaries top to bottom, both in PDF user space.
type Grid struct {
	Xs []float64
	Ys []float64
}

const (
	ruleThickness = 2.0
	joinTolerance = 1.5
)

type segment struct {
	horizontal bool
	pos        float64 // y for horizontal rules, x for vertical ones
	from, to   float64
}

func (s segment) length() float64 { return s.to - s.from }

// DetectGrids finds ruled tables among a page's rectangles. Thin rectangles
// count as rules and larger ones contribute their four edges. Rules shorter
// than the page dimension divided by lineScale are ignored. A connected
// group of rules with at least two horizontal and two vertical lines forms
// a grid.
func DetectGrids(rects []Rect, width, height, lineScale float64) []Grid {
	if lineScale <= 0 {
		lineScale = 15
	}
	var hs, vs []segment
	for _, r := range rects {
		r = r.Normalize()
		w, h := r.X1-r.X0, r.Y1-r.Y0
		switch {
		case h <= ruleThickness && w > ruleThickness:
			hs = append(hs, segment{true, (r.Y0 + r.Y1) / 2, r.X0, r.X1})
		case w <= ruleThickness && h > ruleThickness:
			vs = append(vs, segment{false, (r.X0 + r.X1) / 2, r.Y0, r.Y1})
		case w > ruleThickness && h > ruleThickness:
			hs = append(hs, segment{true, r.Y0, r.X0, r.X1}, segment{true, r.Y1, r.X0, r.X1})
			vs = append(vs, segment{false, r.X0, r.Y0, r.Y1}, segment{false, r.X1, r.Y0, r.Y1})
		}
	}

	hs = filterShort(mergeCollinear(hs), width/lineScale)
	vs = filterShort(mergeCollinear(vs), height/lineScale)
	if len(hs) < 2 || len(vs) < 2 {
		return nil
	}

	segs := append(append([]segment{}, hs...), vs...)
	parent := make([]int, len(segs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	for i := range hs {
		for j := range vs {
			if intersects(hs[i], vs[j]) {
				a, b := find(i), find(len(hs)+j)
				if a != b {
					parent[a] = b
				}
			}
		}
	}

	groups := map[int][]segment{}
	var roots []int
	for i, s := range segs {
		root := find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], s)
	}

	var grids []Grid
	for _, root := range roots {
		var xs, ys []float64
		for _, s := range groups[root] {
			if s.horizontal {
				ys = append(ys, s.pos)
			} else {
				xs = append(xs, s.pos)
			}
		}
		xs = uniqueSorted(xs)
		ys = uniqueSorted(ys)
		if len(xs) < 2 || len(ys) < 2 {
			continue
		}
		// Rows run top to bottom.
		for i, j := 0, len(ys)-1; i < j; i, j = i+1, j-1 {
			ys[i], ys[j] = ys[j], ys[i]
		}
		grids = append(grids, Grid{Xs: xs, Ys: ys})
	}
	sort.SliceStable(grids, func(i, j int) bool { return grids[i].Ys[0] > grids[j].Ys[0] })
	return grids
}

// Rows fills the grid's cells with the glyphs whose centres fall inside
// them. Lines within a cell are joined with "\n".
func (g Grid) Rows(glyphs []Glyph, pageHeight float64) [][]string {
	nrows, ncols := len(g.Ys)-1, len(g.Xs)-1
	cells := make([][][]Glyph, nrows)
	for i := range cells {
		cells[i] = make([][]Glyph, ncols)
	}
	for _, gl := range glyphs {
		if gl.S == "\n" {
			continue
		}
		cx := gl.X + gl.W/2
		cy := gl.Y + gl.Size*0.3
		row := sort.Search(nrows, func(i int) bool { return cy > g.Ys[i+1] })
		col := sort.Search(ncols, func(j int) bool { return cx < g.Xs[j+1] })
		if row >= nrows || col >= ncols || cy > g.Ys[0] || cx < g.Xs[0] {
			continue
		}
		cells[row][col] = append(cells[row][col], gl)
	}

	rows := make([][]string, 0, nrows)
	for _, r := range cells {
		row := make([]string, ncols)
		for j, cg := range r {
			lines := FromGlyphs(cg, pageHeight)
			parts := make([]string, 0, len(lines))
			for _, l := range lines {
				parts = append(parts, l.Text())
			}
			row[j] = strings.Join(parts, "\n")
		}
		rows = append(rows, row)
	}
	return rows
}

func intersects(h, v segment) bool {
	return v.pos >= h.from-joinTolerance && v.pos <= h.to+joinTolerance &&
		h.pos >= v.from-joinTolerance && h.pos <= v.to+joinTolerance
}

func mergeCollinear(segs []segment) []segment {
	if len(segs) == 0 {
		return nil
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].pos < segs[j].pos })

	var out []segment
	for start := 0; start < len(segs); {
		end := start + 1
		for end < len(segs) && segs[end].pos-segs[start].pos <= joinTolerance {
			end++
		}
		line := segs[start:end]
		sort.Slice(line, func(i, j int) bool { return line[i].from < line[j].from })
		merged := line[0]
		merged.pos = segs[start].pos
		for _, s := range line[1:] {
			if s.from <= merged.to+joinTolerance {
				merged.to = math.Max(merged.to, s.to)
				continue
			}
			out = append(out, merged)
			merged = s
			merged.pos = segs[start].pos
		}
		out = append(out, merged)
		start = end
	}
	return out
}

func filterShort(segs []segment, min float64) []segment {
	out := segs[:0]
	for _, s := range segs {
		if s.length() >= min {
			out = append(out, s)
		}
	}
	return out
}

func uniqueSorted(vals []float64) []float64 {
	sort.Float64s(vals)
	var out []float64
	for _, v := range vals {
		if len(out) > 0 && v-out[len(out)-1] <= joinTolerance {
			continue
		}
		out = append(out, v)
	}
	return out
}
