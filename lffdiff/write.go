package lffdiff

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"
)

type Colors struct {
	Delete func(string, ...any) string
	Insert func(string, ...any) string
	Hunk   func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Delete: color.RedString,
		Insert: color.GreenString,
		Hunk:   color.CyanString,
	}
}

func plain(f string, args ...any) string {
	return fmt.Sprintf(f, args...)
}

type writeOpts struct {
	colors  *Colors
	context int
}

type WriteOption func(*writeOpts)

func WriteColors(c *Colors) WriteOption {
	return func(o *writeOpts) { o.colors = c }
}

// WriteContext sets how many unchanged lines are shown around each change.
// A negative n shows everything.
func WriteContext(n int) WriteOption {
	return func(o *writeOpts) { o.context = n }
}

// Write prints lines in unified style: hunks of changed lines with their
// surrounding context, each headed by "@@ -a +b @@".
func Write(w io.Writer, lines []Line, opts ...WriteOption) error {
	o := &writeOpts{context: 2}
	for _, opt := range opts {
		opt(o)
	}
	c := o.colors
	if c == nil {
		c = &Colors{Delete: plain, Insert: plain, Hunk: plain}
	}
	show := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == Equal && o.context >= 0 {
			continue
		}
		lo, hi := i, i
		if o.context > 0 {
			lo, hi = max(0, i-o.context), min(len(lines)-1, i+o.context)
		}
		for j := lo; j <= hi; j++ {
			show[j] = true
		}
	}
	bw := bufio.NewWriter(w)
	inHunk := false
	lastA, lastB := 0, 0
	for i, l := range lines {
		if show[i] && !inHunk {
			bw.WriteString(c.Hunk("@@ -%d +%d @@", lastA+1, lastB+1) + "\n")
		}
		inHunk = show[i]
		lastA, lastB = max(lastA, l.A), max(lastB, l.B)
		if !show[i] {
			continue
		}
		text := l.Op.Prefix() + l.Text
		switch l.Op {
		case Delete:
			text = c.Delete("%s", text)
		case Insert:
			text = c.Insert("%s", text)
		}
		bw.WriteString(text + "\n")
	}
	return bw.Flush()
}
