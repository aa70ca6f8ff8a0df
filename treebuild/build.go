// Package treebuild reads a record store into an in-memory classification
// tree.
//
// Build walks the store once, top down, in store order. A record that
// cannot be read is reported and left out together with everything below
// it; the walk carries on with the rest of the store. The caller receives
// the best-effort tree and the complete list of problems, and decides
// whether any of them is fatal.
package treebuild

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/glottolog/glottree/debug"
	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/store"

	"golang.org/x/sync/errgroup"
)

type BuildOption func(*builder)

// Parallel walks up to n top-level subtrees concurrently. The result is
// identical to a sequential walk.
func Parallel(n int) BuildOption {
	return func(b *builder) { b.parallel = n }
}

func WithLogger(l *slog.Logger) BuildOption {
	return func(b *builder) { b.log = l }
}

type builder struct {
	st       store.Store
	parallel int
	log      *slog.Logger
}

type entry struct {
	ref  store.Ref
	node *languoid.Node
}

// subtree is the pre-order content of one top-level subtree.
type subtree struct {
	entries []entry
	errs    []error
}

// Build reads every record reachable from the store's top-level nodes.
// The returned tree is complete with respect to what could be read; errs
// lists every record, listing and structural problem met on the way.
func Build(st store.Store, opts ...BuildOption) (*languoid.Tree, []error) {
	b := &builder{
		st:  st,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	tree := languoid.NewTree()
	roots, err := st.Roots()
	if err != nil {
		return tree, []error{fmt.Errorf("could not list top-level nodes: %w", err)}
	}
	if debug.Build() {
		debug.Logf("build: %d top-level nodes, parallel=%d", len(roots), b.parallel)
	}
	results := make([]subtree, len(roots))
	if b.parallel > 1 {
		var g errgroup.Group
		g.SetLimit(b.parallel)
		for i, r := range roots {
			g.Go(func() error {
				b.walk(r, &results[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, r := range roots {
			b.walk(r, &results[i])
		}
	}
	var errs []error
	for i := range results {
		errs = append(errs, b.assemble(tree, &results[i])...)
	}
	return tree, errs
}

func (b *builder) walk(ref store.Ref, out *subtree) {
	ids := ref.IDs()
	if slices.Contains(ids[:len(ids)-1], ref.ID()) {
		err := &StructuralError{Ref: ref, ID: ref.ID(), Kind: KindCycle}
		b.log.Error("cycle in store", "ref", ref)
		out.errs = append(out.errs, err)
		return
	}
	rec, err := b.st.Read(ref)
	if err != nil {
		b.log.Error("skipping record", "ref", ref, "err", err)
		out.errs = append(out.errs, err)
		if n := b.countBelow(ref); n > 0 {
			out.errs = append(out.errs, &StructuralError{
				Ref:    ref,
				ID:     ref.ID(),
				Kind:   KindUnreachable,
				Detail: fmt.Sprintf("%d records below an unreadable record skipped", n),
			})
		}
		return
	}
	out.entries = append(out.entries, entry{ref: ref, node: rec.Node(ref)})
	kids, err := b.st.Children(ref)
	if err != nil {
		b.log.Error("could not list children", "ref", ref, "err", err)
		out.errs = append(out.errs, &StructuralError{Ref: ref, ID: ref.ID(), Kind: KindListing, Err: err})
		return
	}
	for _, k := range kids {
		b.walk(k, out)
	}
}

func (b *builder) countBelow(ref store.Ref) int {
	kids, err := b.st.Children(ref)
	if err != nil {
		return 0
	}
	n := len(kids)
	for _, k := range kids {
		n += b.countBelow(k)
	}
	return n
}

// assemble links the entries of one subtree into tree. A duplicate
// identifier drops the later occurrence with its subtree.
func (b *builder) assemble(tree *languoid.Tree, st *subtree) []error {
	errs := st.errs
	var skipped []store.Ref
	for _, e := range st.entries {
		if slices.ContainsFunc(skipped, func(s store.Ref) bool { return e.ref.HasPrefix(s) }) {
			continue
		}
		err := tree.Add(e.node)
		if err == nil {
			continue
		}
		kind := KindDuplicate
		if !errors.Is(err, languoid.ErrDuplicateID) {
			kind = KindUnreachable
		}
		b.log.Error("dropping subtree", "ref", e.ref, "kind", kind)
		errs = append(errs, &StructuralError{Ref: e.ref, ID: e.node.ID, Kind: kind, Err: err})
		skipped = append(skipped, e.ref)
	}
	if debug.Build() {
		debug.Logf("build: assembled %d nodes, %d problems", len(st.entries), len(errs))
	}
	return errs
}
