package glottree

import (
	"fmt"
	"iter"
	"strings"

	"github.com/glottolog/glottree/glottocode"
	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/navigate"
	"github.com/glottolog/glottree/query"
)

// Node returns the languoid id from the node map.
func (r *Repo) Node(id string) (*languoid.Node, error) {
	return r.lookup(id)
}

// AllNodes yields every languoid in pre-order. The sequence can be ranged
// over again; each range walks the tree current at the time of the call
// to AllNodes.
func (r *Repo) AllNodes() iter.Seq[*languoid.Node] {
	return r.tree.All()
}

// Navigator returns a node-map navigator over nm, or a live navigator over
// the store when nm is nil, including a nil *languoid.Tree.
func (r *Repo) Navigator(nm navigate.NodeMap) navigate.Navigator {
	if t, ok := nm.(*languoid.Tree); nm == nil || ok && t == nil {
		return navigate.Live(r.st)
	}
	return navigate.Mapped(nm)
}

// Ancestors returns the ancestors of id, top level first. With a nil nm
// the store is read; pass r.Tree() to answer from the node map.
func (r *Repo) Ancestors(id string, nm navigate.NodeMap) ([]*languoid.Node, error) {
	return r.Navigator(nm).Ancestors(id)
}

func (r *Repo) Descendants(id string, nm navigate.NodeMap) iter.Seq2[*languoid.Node, error] {
	return r.Navigator(nm).Descendants(id)
}

func (r *Repo) Siblings(id string, nm navigate.NodeMap) ([]*languoid.Node, error) {
	return r.Navigator(nm).Siblings(id)
}

// ByCode resolves a glottocode, a Hammarström identifier (hid) or an ISO
// 639-3 code.
func (r *Repo) ByCode(code string) (*languoid.Node, error) {
	if glottocode.Valid(code) {
		if n, ok := r.tree.Lookup(code); ok {
			return n, nil
		}
	}
	if id, ok := r.codes[code]; ok {
		return r.lookup(id)
	}
	if id, ok := r.codes[strings.ToLower(code)]; ok {
		return r.lookup(id)
	}
	return nil, fmt.Errorf("%w: no languoid with code %q", ErrUnknownID, code)
}

// Select returns the languoids matching f in pre-order.
func (r *Repo) Select(f *query.Filter) ([]*languoid.Node, error) {
	return query.Select(r.tree, f)
}
