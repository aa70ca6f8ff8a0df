package glottree

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/glottolog/glottree/check"
	"github.com/glottolog/glottree/debug"
	"github.com/glottolog/glottree/glottocode"
	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/lff"
	"github.com/glottolog/glottree/store"
)

// OrphanPolicy says what ApplyLFF does with languoids of the repository
// that the applied tree leaves out.
type OrphanPolicy int

const (
	// OrphanRefuse fails with an *OrphanError before anything is written.
	OrphanRefuse OrphanPolicy = iota
	// OrphanDelete removes them from the store.
	OrphanDelete
)

func (r *Repo) encodeOpts(opts []lff.EncodeOption) []lff.EncodeOption {
	res := []lff.EncodeOption{lff.EncodeIndent(r.indent)}
	if r.cfg != nil && r.cfg.LFF.Header != "" {
		res = append(res, lff.EncodeHeader(r.cfg.LFF.Header))
	}
	return append(res, opts...)
}

// EncodeToLFF writes the whole classification as LFF.
func (r *Repo) EncodeToLFF(w io.Writer, opts ...lff.EncodeOption) error {
	return lff.Encode(r.tree, w, r.encodeOpts(opts)...)
}

// EncodeSubtreeToLFF writes the subtree rooted at id as LFF.
func (r *Repo) EncodeSubtreeToLFF(id string, w io.Writer, opts ...lff.EncodeOption) error {
	return lff.EncodeSubtree(r.tree, id, w, r.encodeOpts(opts)...)
}

// DecodeFromLFF decodes an LFF text. Languoids already in the repository
// get a copy of their stored attributes, with name and level taken from the
// text. The tree is returned even when the error is non-nil; see
// lff.Decode.
func (r *Repo) DecodeFromLFF(rd io.Reader, opts ...lff.DecodeOption) (*languoid.Tree, error) {
	t, err := lff.Decode(rd, append([]lff.DecodeOption{lff.DecodeIndent(r.indent)}, opts...)...)
	if t == nil {
		return nil, err
	}
	for n := range t.All() {
		if old, ok := r.tree.Lookup(n.ID); ok {
			n.Attrs = old.Attrs.Clone()
		}
		n.SyncAttrs()
	}
	return t, err
}

// ApplyLFF makes the store hold the classification t, typically decoded
// with DecodeFromLFF: languoids are moved to their new parents, renamed,
// given new levels and reordered, and languoids new in t get a record. The
// repository is then reloaded.
//
// t must satisfy the invariants. Languoids missing from t are handled
// according to policy. A failure part way leaves the store partially
// updated; the caller is expected to keep the store under version control.
func (r *Repo) ApplyLFF(t *languoid.Tree, policy OrphanPolicy) error {
	if vs := check.Tree(t); len(vs) > 0 {
		return vs
	}
	var orphans []string
	for n := range r.tree.All() {
		if _, ok := t.Lookup(n.ID); !ok {
			orphans = append(orphans, n.ID)
		}
	}
	if len(orphans) > 0 && policy != OrphanDelete {
		return &OrphanError{IDs: orphans}
	}
	// renames are validated like Rename; unchanged empty names pass
	for n := range t.All() {
		old, ok := r.tree.Lookup(n.ID)
		if !ok || strings.TrimSpace(n.Name) == old.Name {
			continue
		}
		if _, err := normName(n.Name); err != nil {
			return fmt.Errorf("%s: %w", n.ID, err)
		}
	}
	cur := map[string]store.Ref{}
	for n := range r.tree.All() {
		cur[n.ID] = r.ref(n)
	}
	want := map[string]store.Ref{}
	var moved, created, updated, deleted int
	for n := range t.All() {
		dst := store.Ref(n.ID)
		if n.Parent != "" {
			dst = want[n.Parent].Child(n.ID)
		}
		want[n.ID] = dst
		old, exists := r.tree.Lookup(n.ID)
		if !exists {
			c := n.Clone()
			c.SyncAttrs()
			if err := r.st.Write(dst, &store.Record{Attrs: c.Attrs}); err != nil {
				return fmt.Errorf("could not create %s: %w", dst, err)
			}
			if r.reg != nil && glottocode.Valid(n.ID) {
				if err := r.reg.Observe(n.ID); err != nil {
					return err
				}
			}
			created++
			continue
		}
		if src := cur[n.ID]; src != dst {
			if err := r.st.Move(src, dst); err != nil {
				return fmt.Errorf("could not move %s to %s: %w", src, dst, err)
			}
			for id, ref := range cur {
				if ref.HasPrefix(src) {
					cur[id] = dst + ref[len(src):]
				}
			}
			moved++
		}
		name := strings.TrimSpace(n.Name)
		if old.Name != name || old.Level != n.Level {
			c := old.Clone()
			c.Name, c.Level = name, n.Level
			c.SyncAttrs()
			if err := r.st.Write(dst, &store.Record{Attrs: c.Attrs}); err != nil {
				return err
			}
			updated++
		}
	}
	if policy == OrphanDelete {
		var removed []store.Ref
		for _, id := range orphans {
			ref := cur[id]
			if slices.ContainsFunc(removed, func(x store.Ref) bool { return ref.HasPrefix(x) }) {
				continue
			}
			if err := r.st.Remove(ref); err != nil {
				return fmt.Errorf("could not delete %s: %w", ref, err)
			}
			removed = append(removed, ref)
			deleted++
		}
	}
	if err := r.st.SetOrder("", t.RootIDs()); err != nil {
		return err
	}
	for n := range t.All() {
		if len(n.Children) == 0 {
			continue
		}
		if err := r.st.SetOrder(want[n.ID], n.Children); err != nil {
			return err
		}
	}
	if r.reg != nil && created > 0 {
		if err := r.reg.Save(); err != nil {
			return err
		}
	}
	r.log.Info("applied classification", "moved", moved, "created", created,
		"updated", updated, "deleted", deleted)
	if debug.Edit() {
		debug.Logf("apply: moved=%d created=%d updated=%d deleted=%d", moved, created, updated, deleted)
	}
	return r.Reload()
}
