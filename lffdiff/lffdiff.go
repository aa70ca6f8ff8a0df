// Package lffdiff compares two LFF texts line by line, and two decoded
// trees languoid by languoid.
package lffdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) Prefix() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	default:
		return " "
	}
}

// Line is one line of a diff. A and B are the 1-based line numbers in the
// old and new text, 0 when the line is absent from that side.
type Line struct {
	Op   Op
	Text string
	A, B int
}

// Diff returns the line diff turning a into b.
func Diff(a, b string) []Line {
	lineMap := map[string]rune{}
	runeMap := map[rune]string{}
	aRunes := mapLinesTo(lineMap, runeMap, a)
	bRunes := mapLinesTo(lineMap, runeMap, b)
	diffs := diffpatch.New().DiffMainRunes(aRunes, bRunes, false)
	var res []Line
	ai, bi := 0, 0
	for i := range diffs {
		d := &diffs[i]
		for _, r := range d.Text {
			l := Line{Text: runeMap[r]}
			switch d.Type {
			case diffpatch.DiffDelete:
				ai++
				l.Op, l.A = Delete, ai
			case diffpatch.DiffInsert:
				bi++
				l.Op, l.B = Insert, bi
			case diffpatch.DiffEqual:
				ai++
				bi++
				l.Op, l.A, l.B = Equal, ai, bi
			}
			res = append(res, l)
		}
	}
	return res
}

// Changed reports whether lines has anything but Equal lines.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

func mapLinesTo(m map[string]rune, im map[rune]string, text string) []rune {
	var rs []rune
	for line := range strings.Lines(text) {
		line = strings.TrimSuffix(line, "\n")
		r, ok := m[line]
		if !ok {
			// stay clear of the surrogate range
			r = rune(len(m))
			if r >= 0xD800 {
				r += 0x800
			}
			m[line] = r
			im[r] = line
		}
		rs = append(rs, r)
	}
	return rs
}
