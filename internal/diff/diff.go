// Package diff compares the live and target YAML of a resource.
//
// Lines are aligned first; each pair of changed lines is then compared word
// by word so long single-line values (image tags, base64 blobs) show only
// the part that moved.
package diff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Op int8

const (
	OpEqual Op = iota
	OpDelete
	OpInsert
)

// Segment is a run of text with one operation.
type Segment struct {
	Op   Op
	Text string
}

type RowKind int8

const (
	RowEqual RowKind = iota
	RowChanged
	RowRemoved
	RowAdded
)

// Row is one aligned line of the comparison. LeftNo and RightNo are 1-based
// and zero when the side has no line.
type Row struct {
	Kind    RowKind
	LeftNo  int
	RightNo int
	Left    []Segment
	Right   []Segment
}

// Result is a computed comparison. It does not depend on the layout used
// to show it.
type Result struct {
	Rows    []Row
	Added   int
	Removed int
}

func (r Result) Changed() bool {
	return r.Added > 0 || r.Removed > 0
}

// Words compares live (a) and target (b) text at word granularity.
func Words(a, b string) Result {
	a, b = endLine(a), endLine(b)
	dmp := diffmatchpatch.New()
	ra, rb, lines := dmp.DiffLinesToRunes(a, b)
	blocks := dmp.DiffCharsToLines(dmp.DiffMainRunes(ra, rb, false), lines)

	var (
		res     Result
		leftNo  int
		rightNo int
		pendDel []string
		pendIns []string
	)
	flush := func() {
		n := min(len(pendDel), len(pendIns))
		for i := 0; i < n; i++ {
			leftNo++
			rightNo++
			left, right := splitSides(Segments(pendDel[i], pendIns[i]))
			res.Rows = append(res.Rows, Row{Kind: RowChanged, LeftNo: leftNo, RightNo: rightNo, Left: left, Right: right})
		}
		for _, l := range pendDel[n:] {
			leftNo++
			res.Rows = append(res.Rows, Row{Kind: RowRemoved, LeftNo: leftNo, Left: []Segment{{Op: OpDelete, Text: l}}})
		}
		for _, l := range pendIns[n:] {
			rightNo++
			res.Rows = append(res.Rows, Row{Kind: RowAdded, RightNo: rightNo, Right: []Segment{{Op: OpInsert, Text: l}}})
		}
		res.Removed += len(pendDel)
		res.Added += len(pendIns)
		pendDel, pendIns = nil, nil
	}

	for _, d := range blocks {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			pendDel = append(pendDel, splitLines(d.Text)...)
		case diffmatchpatch.DiffInsert:
			pendIns = append(pendIns, splitLines(d.Text)...)
		case diffmatchpatch.DiffEqual:
			flush()
			for _, l := range splitLines(d.Text) {
				leftNo++
				rightNo++
				seg := []Segment{{Op: OpEqual, Text: l}}
				res.Rows = append(res.Rows, Row{Kind: RowEqual, LeftNo: leftNo, RightNo: rightNo, Left: seg, Right: seg})
			}
		}
	}
	flush()
	return res
}

// Segments is the raw word-level diff of a and b. Equal and Delete
// segments rebuild a; Equal and Insert segments rebuild b.
func Segments(a, b string) []Segment {
	var tab tokenTable
	ra := tab.encode(tokenize(a))
	rb := tab.encode(tokenize(b))

	dmp := diffmatchpatch.New()
	var out []Segment
	for _, d := range dmp.DiffMainRunes(ra, rb, false) {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(tab.tokens[r])
		}
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		}
		if n := len(out); n > 0 && out[n-1].Op == op {
			out[n-1].Text += sb.String()
			continue
		}
		out = append(out, Segment{Op: op, Text: sb.String()})
	}
	return out
}

func splitSides(segs []Segment) (left, right []Segment) {
	for _, s := range segs {
		switch s.Op {
		case OpEqual:
			left = append(left, s)
			right = append(right, s)
		case OpDelete:
			left = append(left, s)
		case OpInsert:
			right = append(right, s)
		}
	}
	return left, right
}

// splitLines splits text into lines without their terminators.
// endLine terminates the last line so a missing final newline is not a change.
func endLine(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\n")
	}
	return lines
}

// tokenize splits s into runs of word characters, runs of whitespace and
// single punctuation characters. Concatenating the tokens yields s.
func tokenize(s string) []string {
	var toks []string
	start := 0
	prev := -1
	for i, r := range s {
		c := charClass(r)
		if i > start && (c != prev || c == classPunct) {
			toks = append(toks, s[start:i])
			start = i
		}
		prev = c
	}
	if start < len(s) {
		toks = append(toks, s[start:])
	}
	return toks
}

const (
	classSpace = iota
	classWord
	classPunct
)

func charClass(r rune) int {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	default:
		return classPunct
	}
}

// tokenTable maps each distinct token to a rune so go-diff can compare
// token sequences the way it compares characters.
type tokenTable struct {
	ids    map[string]rune
	tokens map[rune]string
	next   rune
}

func (t *tokenTable) encode(toks []string) []rune {
	if t.ids == nil {
		t.ids = map[string]rune{}
		t.tokens = map[rune]string{}
		t.next = 1
	}
	out := make([]rune, len(toks))
	for i, tok := range toks {
		id, ok := t.ids[tok]
		if !ok {
			id = t.next
			t.next++
			// Surrogate halves do not survive a string round trip.
			if t.next == 0xD800 {
				t.next = 0xE000
			}
			t.ids[tok] = id
			t.tokens[id] = tok
		}
		out[i] = id
	}
	return out
}
