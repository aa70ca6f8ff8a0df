// Package newick renders classification subtrees in Newick format, for
// use with phylogenetics tools.
package newick

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/glottolog/glottree/languoid"
)

var nameReplacer = strings.NewReplacer(",", "/", "(", "{", ")", "}", "'", "''")

// Label is the quoted node label: the name with Newick punctuation
// replaced, the identifier, the bracketed ISO code if any and "-l-" for
// languages.
func Label(n *languoid.Node) string {
	var b strings.Builder
	b.WriteByte('\'')
	b.WriteString(nameReplacer.Replace(n.Name))
	fmt.Fprintf(&b, " [%s]", n.ID)
	if iso := n.ISO(); iso != "" {
		fmt.Fprintf(&b, "[%s]", iso)
	}
	if n.Level == languoid.Language {
		b.WriteString("-l-")
	}
	b.WriteByte('\'')
	return b.String()
}

// Options limit what is rendered. A zero MaxLevel renders every level.
type Options struct {
	MaxLevel languoid.Level
}

func (o Options) keep(n *languoid.Node) bool {
	return o.MaxLevel == languoid.NoLevel || n.Level.Ordinal() <= o.MaxLevel.Ordinal()
}

// Node renders n and its subtree without the final ';'. Children are
// ordered by name. Every branch has length 1.
func Node(t *languoid.Tree, n *languoid.Node, o Options) string {
	var b strings.Builder
	writeNode(&b, t, n, o)
	return b.String()
}

func writeNode(b *strings.Builder, t *languoid.Tree, n *languoid.Node, o Options) {
	var kids []*languoid.Node
	for _, c := range t.ChildNodes(n) {
		if o.keep(c) {
			kids = append(kids, c)
		}
	}
	slices.SortStableFunc(kids, func(a, b *languoid.Node) int { return cmp.Compare(a.Name, b.Name) })
	if len(kids) > 0 {
		b.WriteByte('(')
		for i, c := range kids {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNode(b, t, c, o)
		}
		b.WriteByte(')')
	}
	b.WriteString(Label(n))
	b.WriteString(":1")
}

// Tree renders the subtree rooted at id as one Newick tree.
func Tree(t *languoid.Tree, id string, o Options) (string, error) {
	n, ok := t.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", languoid.ErrUnknownID, id)
	}
	return Node(t, n, o) + ";", nil
}

// Forest renders every top-level node as its own tree, one per line. An
// isolate is wrapped in a family of the same name and identifier.
func Forest(t *languoid.Tree, o Options) string {
	var lines []string
	for _, r := range t.Roots() {
		s := Node(t, r, o)
		if r.Level == languoid.Language {
			fam := r.Clone()
			fam.Level = languoid.Family
			s = "(" + s + ")" + Label(fam) + ":1"
		}
		lines = append(lines, s+";")
	}
	return strings.Join(lines, "\n")
}
