package languoid

import (
	"fmt"
	"iter"
	"slices"
)

// Tree is an arena of languoid nodes with an identifier index.
//
// The tree owns the parent -> child edges (Node.Children and the root list).
// Node.Parent is a back reference used for navigation only. A Tree is also
// the node map handed to navigation and checking: it is built once per
// session and can always be rebuilt from the record store.
type Tree struct {
	nodes []*Node
	index map[string]int
	roots []string
}

func NewTree() *Tree {
	return &Tree{index: map[string]int{}}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.index)
}

// Add links n under n.Parent, or as a root when n.Parent is empty, after
// the existing children. Any Children already on n are discarded.
func (t *Tree) Add(n *Node) error {
	if _, ok := t.index[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	var parent *Node
	if n.Parent != "" {
		p, ok := t.Lookup(n.Parent)
		if !ok {
			return fmt.Errorf("%w: parent %s of %s", ErrUnknownID, n.Parent, n.ID)
		}
		parent = p
	}
	n.Children = nil
	t.index[n.ID] = len(t.nodes)
	t.nodes = append(t.nodes, n)
	if parent == nil {
		t.roots = append(t.roots, n.ID)
	} else {
		parent.Children = append(parent.Children, n.ID)
	}
	return nil
}

func (t *Tree) Lookup(id string) (*Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// MustLookup is Lookup for identifiers known to be present.
func (t *Tree) MustLookup(id string) *Node {
	n, ok := t.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("languoid: %s not in tree", id))
	}
	return n
}

// RootIDs returns the identifiers of the top-level nodes in order.
func (t *Tree) RootIDs() []string {
	return slices.Clone(t.roots)
}

func (t *Tree) Roots() []*Node {
	res := make([]*Node, len(t.roots))
	for i, id := range t.roots {
		res[i] = t.MustLookup(id)
	}
	return res
}

// Parent returns the parent of n, or nil for a root.
func (t *Tree) Parent(n *Node) *Node {
	if n.Parent == "" {
		return nil
	}
	p, _ := t.Lookup(n.Parent)
	return p
}

func (t *Tree) ChildNodes(n *Node) []*Node {
	res := make([]*Node, len(n.Children))
	for i, id := range n.Children {
		res[i] = t.MustLookup(id)
	}
	return res
}

// Depth is the path length from n's root to n; roots have depth 0.
func (t *Tree) Depth(n *Node) int {
	d := 0
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		d++
	}
	return d
}

// Lineage returns the ancestors of n, root first.
func (t *Tree) Lineage(n *Node) []*Node {
	var res []*Node
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		res = append(res, p)
	}
	slices.Reverse(res)
	return res
}

// IsDescendant reports whether id lies in the subtree strictly below anc.
func (t *Tree) IsDescendant(id, anc string) bool {
	n, ok := t.Lookup(id)
	if !ok {
		return false
	}
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		if p.ID == anc {
			return true
		}
	}
	return false
}

// All yields every node in pre-order, roots in order. The sequence can be
// ranged over repeatedly; the tree must not be mutated while ranging.
func (t *Tree) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, id := range t.roots {
			if !t.walk(id, yield) {
				return
			}
		}
	}
}

// Subtree yields the node id and its descendants in pre-order.
func (t *Tree) Subtree(id string) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if _, ok := t.index[id]; !ok {
			return
		}
		t.walk(id, yield)
	}
}

func (t *Tree) walk(id string, yield func(*Node) bool) bool {
	n := t.MustLookup(id)
	if !yield(n) {
		return false
	}
	for _, c := range n.Children {
		if !t.walk(c, yield) {
			return false
		}
	}
	return true
}

// Move detaches id and appends it to the children of parent, or to the
// roots when parent is empty. Moving a node below itself is ErrCycle.
func (t *Tree) Move(id, parent string) error {
	n, ok := t.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	var p *Node
	if parent != "" {
		p, ok = t.Lookup(parent)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownID, parent)
		}
		if parent == id || t.IsDescendant(parent, id) {
			return fmt.Errorf("%w: %s below %s", ErrCycle, id, parent)
		}
	}
	t.detach(n)
	n.Parent = parent
	if p == nil {
		t.roots = append(t.roots, id)
	} else {
		p.Children = append(p.Children, id)
	}
	return nil
}

func (t *Tree) detach(n *Node) {
	if p := t.Parent(n); p != nil {
		p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == n.ID })
		return
	}
	t.roots = slices.DeleteFunc(t.roots, func(c string) bool { return c == n.ID })
}

// Remove deletes id and its whole subtree.
func (t *Tree) Remove(id string) error {
	n, ok := t.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	t.detach(n)
	var gone []string
	for d := range t.Subtree(id) {
		gone = append(gone, d.ID)
	}
	for _, g := range gone {
		t.nodes[t.index[g]] = nil
		delete(t.index, g)
	}
	return nil
}

// SetOrder reorders the children of parent (roots when empty). ids must be
// a permutation of the current children.
func (t *Tree) SetOrder(parent string, ids []string) error {
	cur := &t.roots
	if parent != "" {
		p, ok := t.Lookup(parent)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownID, parent)
		}
		cur = &p.Children
	}
	a, b := slices.Clone(*cur), slices.Clone(ids)
	slices.Sort(a)
	slices.Sort(b)
	if !slices.Equal(a, b) {
		return fmt.Errorf("order for %q is not a permutation of its children", parent)
	}
	*cur = slices.Clone(ids)
	return nil
}

// Clone returns a deep copy with a compacted arena.
func (t *Tree) Clone() *Tree {
	res := NewTree()
	for n := range t.All() {
		c := n.Clone()
		res.index[c.ID] = len(res.nodes)
		res.nodes = append(res.nodes, c)
	}
	res.roots = slices.Clone(t.roots)
	return res
}

// Isomorphic returns nil when a and b have the same nodes, the same edges,
// the same child order and the same names and levels, and otherwise an
// error describing the first difference found.
func Isomorphic(a, b *Tree) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("node count %d != %d", a.Len(), b.Len())
	}
	if !slices.Equal(a.roots, b.roots) {
		return fmt.Errorf("roots %v != %v", a.roots, b.roots)
	}
	for an := range a.All() {
		bn, ok := b.Lookup(an.ID)
		if !ok {
			return fmt.Errorf("%s missing", an.ID)
		}
		switch {
		case an.Parent != bn.Parent:
			return fmt.Errorf("%s: parent %q != %q", an.ID, an.Parent, bn.Parent)
		case !slices.Equal(an.Children, bn.Children):
			return fmt.Errorf("%s: children %v != %v", an.ID, an.Children, bn.Children)
		case an.Name != bn.Name:
			return fmt.Errorf("%s: name %q != %q", an.ID, an.Name, bn.Name)
		case an.Level != bn.Level:
			return fmt.Errorf("%s: level %s != %s", an.ID, an.Level, bn.Level)
		}
	}
	return nil
}
