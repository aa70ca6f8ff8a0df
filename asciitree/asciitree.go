// Package asciitree draws a languoid, its ancestors and its subtree with
// box-drawing characters:
//
//	Indo-European [indo1319]
//	   └─ Germanic [germ1287]
//	      └─ Standard German [stan1295]
//	         ├─ Bavarian [bava1246]
//	         └─ Swabian [swab1242]
package asciitree

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/glottolog/glottree/languoid"

	"github.com/fatih/color"
)

// Colors paints the start node and, below it, languages and dialects.
type Colors struct {
	Start    func(string, ...any) string
	Language func(string, ...any) string
	Dialect  func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Start:    color.RedString,
		Language: color.GreenString,
		Dialect:  color.BlueString,
	}
}

type Options struct {
	// MaxLevel stops the descent at nodes of a lower level. Zero means no
	// limit.
	MaxLevel languoid.Level
	// Colors is nil for plain output.
	Colors *Colors
}

type renderer struct {
	t *languoid.Tree
	o Options
	w *bufio.Writer
}

// Render draws the tree around id: its ancestors from the top level down,
// then id and everything below it, children sorted by name.
func Render(w io.Writer, t *languoid.Tree, id string, o Options) error {
	n, ok := t.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", languoid.ErrUnknownID, id)
	}
	r := &renderer{t: t, o: o, w: bufio.NewWriter(w)}
	prefix := ""
	lineage := t.Lineage(n)
	for i, a := range lineage {
		branch := ""
		if i > 0 {
			branch = "└─ "
		}
		fmt.Fprintf(r.w, "%s%s%s [%s]\n", prefix, branch, a.Name, a.ID)
		prefix = "   " + prefix
	}
	r.node(n, 0, true, prefix, len(lineage) > 0)
	return r.w.Flush()
}

func (r *renderer) node(n *languoid.Node, depth int, last bool, prefix string, branch bool) {
	if r.o.MaxLevel != languoid.NoLevel && n.Level.Ordinal() > r.o.MaxLevel.Ordinal() {
		return
	}
	s := ""
	if branch {
		s = "├─ "
		if last {
			s = "└─ "
		}
	}
	name, id := n.Name, n.ID
	if paint := r.paint(n, depth); paint != nil {
		name, id = paint("%s", name), paint("%s", id)
	}
	fmt.Fprintf(r.w, "%s%s%s [%s]\n", prefix, s, name, id)
	nprefix := prefix + "│  "
	if last {
		nprefix = prefix + "   "
	}
	kids := r.t.ChildNodes(n)
	slices.SortStableFunc(kids, func(a, b *languoid.Node) int { return cmp.Compare(a.Name, b.Name) })
	for i, c := range kids {
		r.node(c, depth+1, i == len(kids)-1, nprefix, true)
	}
}

func (r *renderer) paint(n *languoid.Node, depth int) func(string, ...any) string {
	c := r.o.Colors
	switch {
	case c == nil:
		return nil
	case depth == 0:
		return c.Start
	case n.Level == languoid.Language:
		return c.Language
	case n.Level == languoid.Dialect:
		return c.Dialect
	}
	return nil
}
