package lff

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/glottolog/glottree/check"
	"github.com/glottolog/glottree/debug"
	"github.com/glottolog/glottree/languoid"
)

type decoder struct {
	opts  decodeOpts
	tree  *languoid.Tree
	open  []string // open ancestors, indexed by depth
	skip  int      // lines deeper than this are dropped, -1 when not skipping
	lines []*LineError
}

// Decode reads an LFF text into a tree. Each line becomes a child of the
// nearest preceding line one level up.
//
// A malformed line is reported and left out together with the lines that
// would have been nested below it; decoding continues with the next line
// at the same or a lower depth. Unless DecodeCheck(false) is given, the
// resulting tree is then checked. All problems come back as one
// *DecodeError alongside the tree, which may therefore be invalid.
func Decode(r io.Reader, opts ...DecodeOption) (*languoid.Tree, error) {
	d := &decoder{
		opts: decodeOpts{indent: DefaultIndent, check: true},
		tree: languoid.NewTree(),
		skip: -1,
	}
	for _, opt := range opts {
		opt(&d.opts)
	}
	if d.opts.indent <= 0 {
		return nil, fmt.Errorf("lff: indent must be positive, got %d", d.opts.indent)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		d.line(lineNo, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return d.tree, fmt.Errorf("lff: reading line %d: %w", lineNo+1, err)
	}
	de := &DecodeError{Lines: d.lines}
	if d.opts.check {
		de.Violations = check.Tree(d.tree)
	}
	if debug.LFF() {
		debug.Logf("lff: decoded %d nodes from %d lines, %d line errors, %d violations",
			d.tree.Len(), lineNo, len(de.Lines), len(de.Violations))
	}
	if len(de.Lines) == 0 && len(de.Violations) == 0 {
		return d.tree, nil
	}
	return d.tree, de
}

func (d *decoder) fail(lineNo int, text, msg string, args ...any) {
	d.lines = append(d.lines, &LineError{Line: lineNo, Text: text, Msg: fmt.Sprintf(msg, args...)})
}

func (d *decoder) line(lineNo int, text string) {
	trimmed := strings.TrimLeft(text, " \t")
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	ws := text[:len(text)-len(trimmed)]
	if strings.ContainsRune(ws, '\t') {
		d.fail(lineNo, text, "tab in indentation")
		return
	}
	if len(ws)%d.opts.indent != 0 {
		d.fail(lineNo, text, "indentation of %d is not a multiple of %d", len(ws), d.opts.indent)
		return
	}
	depth := len(ws) / d.opts.indent
	if d.skip >= 0 {
		if depth > d.skip {
			return
		}
		d.skip = -1
	}
	n, msg := parseNode(trimmed)
	switch {
	case depth > len(d.open):
		msg = fmt.Sprintf("depth %d skips a level (deepest open depth is %d)", depth, len(d.open)-1)
	case msg == "":
		if _, dup := d.tree.Lookup(n.ID); dup {
			msg = "duplicate identifier " + n.ID
		}
	}
	if msg != "" {
		d.fail(lineNo, text, "%s", msg)
		d.skip = depth
		return
	}
	d.open = d.open[:depth]
	if depth > 0 {
		n.Parent = d.open[depth-1]
	}
	if err := d.tree.Add(n); err != nil {
		d.fail(lineNo, text, "%v", err)
		d.skip = depth
		return
	}
	d.open = append(d.open, n.ID)
}

// parseNode parses the text of a line after its indentation. A non-empty
// message reports why the line is malformed.
func parseNode(s string) (*languoid.Node, string) {
	n := &languoid.Node{}
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s, n.Annotation = s[:i], s[i+1:]
	}
	id, rest, ok := strings.Cut(s, " ")
	if id == "" || strings.HasPrefix(id, "[") {
		return nil, "missing identifier"
	}
	n.ID = id
	rest = strings.TrimLeft(rest, " ")
	if !ok || !strings.HasPrefix(rest, "[") {
		return nil, "missing level marker"
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return nil, "unterminated level marker"
	}
	lv, ok := parseMarker(rest[:end+1])
	if !ok {
		return nil, "unknown level marker " + rest[:end+1]
	}
	n.Level = lv
	// an empty name is left to check.Lint
	n.Name = strings.TrimSpace(rest[end+1:])
	return n, ""
}
