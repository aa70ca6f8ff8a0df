// Package store provides the record store: one languoid record per node,
// addressed by the path of identifiers leading to it.
//
// The tree engine relies only on the Store interface: nodes are
// addressable, records can be read and written, and the children of a
// node are enumerable in a stable order. Dir implements it over a
// directory tree of md.ini files; Mem is an in-memory twin.
package store

import (
	"slices"
	"strings"

	"github.com/glottolog/glottree/languoid"
)

// Ref addresses a node: the slash-joined identifiers from the top level down
// to the node, e.g. "indo1319/germ1287/stan1295". The empty Ref is the
// virtual parent of the top-level nodes.
type Ref string

// RefOf joins ids into a Ref.
func RefOf(ids ...string) Ref {
	return Ref(strings.Join(ids, "/"))
}

// ID returns the identifier of the node r addresses.
func (r Ref) ID() string {
	s := string(r)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Parent returns the Ref of the enclosing node, "" for top-level nodes.
func (r Ref) Parent() Ref {
	s := string(r)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return Ref(s[:i])
	}
	return ""
}

func (r Ref) Child(id string) Ref {
	if r == "" {
		return Ref(id)
	}
	return Ref(string(r) + "/" + id)
}

// IDs returns the identifiers along r, top level first.
func (r Ref) IDs() []string {
	if r == "" {
		return nil
	}
	return strings.Split(string(r), "/")
}

// Depth is the number of ancestors of the node r addresses.
func (r Ref) Depth() int {
	if r == "" {
		return -1
	}
	return strings.Count(string(r), "/")
}

// HasPrefix reports whether r is anc or lies below it.
func (r Ref) HasPrefix(anc Ref) bool {
	return r == anc || strings.HasPrefix(string(r), string(anc)+"/")
}

// Record is the content of one languoid record.
type Record struct {
	Attrs languoid.Attrs
}

// Node converts the record at ref into an unlinked node whose Parent is
// derived from ref.
func (rec *Record) Node(ref Ref) *languoid.Node {
	n := languoid.FromAttrs(ref.ID(), rec.Attrs)
	n.Parent = ref.Parent().ID()
	return n
}

// RecordOf returns the record for n with core.name and core.level synced.
func RecordOf(n *languoid.Node) *Record {
	c := n.Clone()
	c.SyncAttrs()
	return &Record{Attrs: c.Attrs}
}

type Store interface {
	// Roots lists the top-level nodes in store order.
	Roots() ([]Ref, error)
	// Children lists the children of ref in store order.
	Children(ref Ref) ([]Ref, error)
	// Read returns the record at ref; a malformed record yields a
	// *RecordParseError.
	Read(ref Ref) (*Record, error)
	// Write stores rec at ref, creating the node when missing. The parent
	// of ref must exist.
	Write(ref Ref, rec *Record) error
	// Move relocates the node at from, with its subtree, to to.
	Move(from, to Ref) error
	// Remove deletes the node at ref with its subtree.
	Remove(ref Ref) error
	// SetOrder records the display order of the children of parent.
	SetOrder(parent Ref, ids []string) error
}

// orderChildren puts the ids listed in explicit first, in that order,
// followed by the remaining ids sorted. Listed ids not present are dropped.
func orderChildren(present, explicit []string) []string {
	rest := slices.Clone(present)
	slices.Sort(rest)
	if len(explicit) == 0 {
		return rest
	}
	res := make([]string, 0, len(present))
	seen := map[string]bool{}
	for _, id := range explicit {
		if seen[id] || !slices.Contains(rest, id) {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	for _, id := range rest {
		if !seen[id] {
			res = append(res, id)
		}
	}
	return res
}

// isSorted reports whether ids is in the order listing would produce
// without an explicit order.
func isSorted(ids []string) bool {
	return slices.IsSorted(ids)
}

func refs(parent Ref, ids []string) []Ref {
	res := make([]Ref, len(ids))
	for i, id := range ids {
		res[i] = parent.Child(id)
	}
	return res
}
