package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	removedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	addedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("124"))
	addedWordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("28"))
	lineNoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gutterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderOptions affect drawing only.
type RenderOptions struct {
	ShowWhitespace bool
}

// Render draws res in the given layout. width is only used by the split
// layout.
func Render(res Result, layout Layout, width int, opts RenderOptions) string {
	if layout == LayoutUnified {
		return RenderUnified(res, opts)
	}
	return RenderSplit(res, width, opts)
}

// RenderSplit draws live on the left and target on the right. Lines longer
// than a pane are cut, never wrapped, so both panes stay aligned.
func RenderSplit(res Result, width int, opts RenderOptions) string {
	const numW = 4
	gutter := gutterStyle.Render(" │ ")
	pane := max(1, (width-3)/2)
	text := max(1, pane-numW-1)

	out := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		left := lineNo(row.LeftNo, numW) + " " + renderSide(row.Left, row.Kind, text, opts, true)
		right := lineNo(row.RightNo, numW) + " " + renderSide(row.Right, row.Kind, text, opts, false)
		out = append(out, left+gutter+right)
	}
	return strings.Join(out, "\n")
}

// RenderUnified draws one column: removed lines prefixed with "-", added
// lines with "+". A changed line appears once per side.
func RenderUnified(res Result, opts RenderOptions) string {
	const numW = 4
	out := make([]string, 0, len(res.Rows))
	line := func(l, r int, mark string, segs []Segment, kind RowKind, left bool) {
		prefix := lineNo(l, numW) + " " + lineNo(r, numW) + " "
		body := renderSide(segs, kind, -1, opts, left)
		switch mark {
		case "-":
			mark = removedStyle.Render(mark)
		case "+":
			mark = addedStyle.Render(mark)
		}
		out = append(out, prefix+mark+" "+body)
	}
	for _, row := range res.Rows {
		switch row.Kind {
		case RowEqual:
			line(row.LeftNo, row.RightNo, " ", row.Left, row.Kind, true)
		case RowRemoved:
			line(row.LeftNo, 0, "-", row.Left, row.Kind, true)
		case RowAdded:
			line(0, row.RightNo, "+", row.Right, row.Kind, false)
		case RowChanged:
			line(row.LeftNo, 0, "-", row.Left, row.Kind, true)
			line(0, row.RightNo, "+", row.Right, row.Kind, false)
		}
	}
	return strings.Join(out, "\n")
}

func lineNo(n, w int) string {
	if n == 0 {
		return strings.Repeat(" ", w)
	}
	return lineNoStyle.Render(fmt.Sprintf("%*d", w, n))
}

// renderSide styles one side of a row. A negative width disables cutting
// and padding.
func renderSide(segs []Segment, kind RowKind, width int, opts RenderOptions, left bool) string {
	var sb strings.Builder
	used := 0
	for _, s := range segs {
		t := s.Text
		if opts.ShowWhitespace {
			t = strings.ReplaceAll(t, "\t", "→")
			t = strings.ReplaceAll(t, " ", "·")
		}
		if width >= 0 {
			remain := width - used
			if remain <= 0 {
				break
			}
			if runewidth.StringWidth(t) > remain {
				t = runewidth.Truncate(t, remain, "…")
			}
			used += runewidth.StringWidth(t)
		}
		sb.WriteString(segmentStyle(s.Op, kind, left).Render(t))
	}
	if width > used {
		sb.WriteString(strings.Repeat(" ", width-used))
	}
	return sb.String()
}

func segmentStyle(op Op, kind RowKind, left bool) lipgloss.Style {
	switch op {
	case OpDelete:
		if kind == RowChanged {
			return removedWordStyle
		}
		return removedStyle
	case OpInsert:
		if kind == RowChanged {
			return addedWordStyle
		}
		return addedStyle
	}
	if kind == RowChanged {
		if left {
			return removedStyle
		}
		return addedStyle
	}
	return lipgloss.NewStyle()
}
