package navigate

import (
	"fmt"
	"iter"
	"slices"

	"github.com/glottolog/glottree/languoid"
)

type mapped struct {
	m NodeMap
}

// Mapped returns a Navigator answering from m alone. Returned nodes belong
// to m and must not be modified.
func Mapped(m NodeMap) Navigator {
	return &mapped{m: m}
}

func (n *mapped) Node(id string) (*languoid.Node, error) {
	node, ok := n.m.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	return node, nil
}

func (n *mapped) Ancestors(id string) ([]*languoid.Node, error) {
	node, err := n.Node(id)
	if err != nil {
		return nil, err
	}
	var res []*languoid.Node
	for p := node.Parent; p != ""; {
		pn, ok := n.m.Lookup(p)
		if !ok {
			return nil, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownID, p, node.ID)
		}
		res = append(res, pn)
		p = pn.Parent
	}
	slices.Reverse(res)
	return res, nil
}

func (n *mapped) Descendants(id string) iter.Seq2[*languoid.Node, error] {
	node, err := n.Node(id)
	if err != nil {
		return fail(err)
	}
	return func(yield func(*languoid.Node, error) bool) {
		n.below(node, yield)
	}
}

func (n *mapped) below(node *languoid.Node, yield func(*languoid.Node, error) bool) bool {
	for _, cid := range node.Children {
		c, ok := n.m.Lookup(cid)
		if !ok {
			if !yield(nil, fmt.Errorf("%w: %s (child of %s)", ErrUnknownID, cid, node.ID)) {
				return false
			}
			continue
		}
		if !yield(c, nil) || !n.below(c, yield) {
			return false
		}
	}
	return true
}

func (n *mapped) Siblings(id string) ([]*languoid.Node, error) {
	node, err := n.Node(id)
	if err != nil {
		return nil, err
	}
	var ids []string
	if node.Parent == "" {
		ids = n.m.RootIDs()
	} else {
		p, err := n.Node(node.Parent)
		if err != nil {
			return nil, err
		}
		ids = p.Children
	}
	var res []*languoid.Node
	for _, sid := range ids {
		if sid == id {
			continue
		}
		s, err := n.Node(sid)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}
