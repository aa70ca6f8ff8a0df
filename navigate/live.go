package navigate

import (
	"fmt"
	"iter"

	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/store"
)

type live struct {
	st store.Store
}

// Live returns a Navigator that reads st on every call. Identifiers are
// located by walking store listings; records are read only for the nodes
// returned.
func Live(st store.Store) Navigator {
	return &live{st: st}
}

// locate finds the ref of id with a breadth-first walk of the listings.
func (l *live) locate(id string) (store.Ref, error) {
	level, err := l.st.Roots()
	if err != nil {
		return "", err
	}
	for len(level) > 0 {
		var next []store.Ref
		for _, r := range level {
			if r.ID() == id {
				return r, nil
			}
		}
		for _, r := range level {
			kids, err := l.st.Children(r)
			if err != nil {
				return "", err
			}
			next = append(next, kids...)
		}
		level = next
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownID, id)
}

// load reads the record at ref and fills in its children.
func (l *live) load(ref store.Ref) (*languoid.Node, []store.Ref, error) {
	rec, err := l.st.Read(ref)
	if err != nil {
		return nil, nil, err
	}
	kids, err := l.st.Children(ref)
	if err != nil {
		return nil, nil, err
	}
	n := rec.Node(ref)
	for _, k := range kids {
		n.Children = append(n.Children, k.ID())
	}
	return n, kids, nil
}

func (l *live) Node(id string) (*languoid.Node, error) {
	ref, err := l.locate(id)
	if err != nil {
		return nil, err
	}
	n, _, err := l.load(ref)
	return n, err
}

func (l *live) Ancestors(id string) ([]*languoid.Node, error) {
	ref, err := l.locate(id)
	if err != nil {
		return nil, err
	}
	ids := ref.IDs()
	res := make([]*languoid.Node, 0, len(ids)-1)
	for i := range ids[:len(ids)-1] {
		n, _, err := l.load(store.RefOf(ids[:i+1]...))
		if err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, nil
}

func (l *live) Descendants(id string) iter.Seq2[*languoid.Node, error] {
	return func(yield func(*languoid.Node, error) bool) {
		ref, err := l.locate(id)
		if err != nil {
			yield(nil, err)
			return
		}
		kids, err := l.st.Children(ref)
		if err != nil {
			yield(nil, err)
			return
		}
		l.below(kids, yield)
	}
}

func (l *live) below(refs []store.Ref, yield func(*languoid.Node, error) bool) bool {
	for _, r := range refs {
		n, kids, err := l.load(r)
		if err != nil {
			// the subtree under an unreadable record is skipped
			if !yield(nil, err) {
				return false
			}
			continue
		}
		if !yield(n, nil) || !l.below(kids, yield) {
			return false
		}
	}
	return true
}

func (l *live) Siblings(id string) ([]*languoid.Node, error) {
	ref, err := l.locate(id)
	if err != nil {
		return nil, err
	}
	var sibs []store.Ref
	if p := ref.Parent(); p == "" {
		sibs, err = l.st.Roots()
	} else {
		sibs, err = l.st.Children(p)
	}
	if err != nil {
		return nil, err
	}
	var res []*languoid.Node
	for _, s := range sibs {
		if s == ref {
			continue
		}
		n, _, err := l.load(s)
		if err != nil {
			return nil, fmt.Errorf("sibling %s of %s: %w", s.ID(), id, err)
		}
		res = append(res, n)
	}
	return res, nil
}
