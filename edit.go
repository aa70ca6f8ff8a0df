package glottree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/glottolog/glottree/check"
	"github.com/glottolog/glottree/debug"
	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/store"
	"github.com/glottolog/glottree/treebuild"

	jsonpatch "github.com/evanphx/json-patch"
)

// DeletePolicy says what happens to the descendants of a deleted languoid.
// There is no default: the zero value is rejected.
type DeletePolicy int

const (
	// DeleteRefuse deletes leaves only.
	DeleteRefuse DeletePolicy = iota + 1
	// DeleteCascade deletes the whole subtree.
	DeleteCascade
	// DeleteLift moves the children up to the deleted languoid's parent.
	DeleteLift
)

func (p DeletePolicy) String() string {
	switch p {
	case DeleteRefuse:
		return "refuse"
	case DeleteCascade:
		return "cascade"
	case DeleteLift:
		return "lift"
	default:
		return fmt.Sprintf("DeletePolicy(%d)", int(p))
	}
}

func (r *Repo) edited(op string, args ...any) {
	r.index()
	r.log.Info(op, args...)
	if debug.Edit() {
		debug.Logf("edit: %s %v", op, args)
	}
}

// ProposeReparent moves id below newParent, or to the top level when
// newParent is empty. The move is checked first: moving a languoid below
// itself is a *treebuild.StructuralError and a move breaking a rule returns
// the check.Violations; in both cases nothing changes.
func (r *Repo) ProposeReparent(id, newParent string) error {
	n, err := r.lookup(id)
	if err != nil {
		return err
	}
	if newParent != "" {
		if _, err := r.lookup(newParent); err != nil {
			return err
		}
		if newParent == id || r.tree.IsDescendant(newParent, id) {
			return &treebuild.StructuralError{
				Ref:    r.ref(n),
				ID:     id,
				Kind:   treebuild.KindCycle,
				Detail: "cannot move below " + newParent,
			}
		}
	}
	vs, err := check.Reparent(r.tree, id, newParent)
	if err != nil {
		return err
	}
	if len(vs) > 0 {
		return vs
	}
	old := n.Parent
	if old == newParent {
		return nil
	}
	from, to := r.ref(n), r.refOf(newParent).Child(id)
	if err := r.st.Move(from, to); err != nil {
		return fmt.Errorf("could not move %s to %s: %w", from, to, err)
	}
	if err := r.tree.Move(id, newParent); err != nil {
		return err
	}
	if err := r.syncOrder(newParent); err != nil {
		return err
	}
	r.edited("reparented", "id", id, "from", old, "to", newParent)
	return nil
}

// ProposeLevelChange sets the level of id after checking the languoid
// against its parent and each child against the languoid.
func (r *Repo) ProposeLevelChange(id string, lv languoid.Level) error {
	n, err := r.lookup(id)
	if err != nil {
		return err
	}
	if !lv.Valid() {
		return fmt.Errorf("%w: %d", languoid.ErrBadLevel, int(lv))
	}
	vs, err := check.LevelChange(r.tree, id, lv)
	if err != nil {
		return err
	}
	if len(vs) > 0 {
		return vs
	}
	old := n.Level
	if old == lv {
		return nil
	}
	if err := r.update(n, func(c *languoid.Node) { c.Level = lv }); err != nil {
		return err
	}
	r.edited("changed level", "id", id, "from", old, "to", lv)
	return nil
}

func (r *Repo) Rename(id, name string) error {
	n, err := r.lookup(id)
	if err != nil {
		return err
	}
	name, err = normName(name)
	if err != nil {
		return err
	}
	old := n.Name
	if old == name {
		return nil
	}
	if err := r.update(n, func(c *languoid.Node) { c.Name = name }); err != nil {
		return err
	}
	r.edited("renamed", "id", id, "from", old, "to", name)
	return nil
}

// update writes n changed by f to the store, then to the tree.
func (r *Repo) update(n *languoid.Node, f func(*languoid.Node)) error {
	c := n.Clone()
	f(c)
	c.SyncAttrs()
	if err := r.st.Write(r.ref(n), &store.Record{Attrs: c.Attrs}); err != nil {
		return err
	}
	n.Name, n.Level, n.Attrs = c.Name, c.Level, c.Attrs
	return nil
}

// PatchAttrs edits the record of id through its JSON view, an object of
// sections holding objects of string values. A patch that is a JSON object
// is applied as a merge patch (RFC 7386), an array as JSON Patch operations
// (RFC 6902). A change of core.name or core.level is validated like Rename
// and ProposeLevelChange.
func (r *Repo) PatchAttrs(id string, patch []byte) error {
	n, err := r.lookup(id)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(n.Attrs.Map())
	if err != nil {
		return err
	}
	var out []byte
	switch p := bytes.TrimSpace(patch); {
	case len(p) > 0 && p[0] == '{':
		out, err = jsonpatch.MergePatch(doc, p)
	case len(p) > 0 && p[0] == '[':
		var ops jsonpatch.Patch
		ops, err = jsonpatch.DecodePatch(p)
		if err == nil {
			out, err = ops.Apply(doc)
		}
	default:
		return fmt.Errorf("patch for %s is neither a JSON object nor a JSON array", id)
	}
	if err != nil {
		return fmt.Errorf("could not patch %s: %w", id, err)
	}
	var m map[string]map[string]string
	if err := json.Unmarshal(out, &m); err != nil {
		return fmt.Errorf("patched record of %s is not sections of strings: %w", id, err)
	}
	attrs := n.Attrs.Clone()
	attrs.Replace(m)
	c := languoid.FromAttrs(id, attrs)
	if c.Name != n.Name {
		if _, err := normName(c.Name); err != nil {
			return fmt.Errorf("patch of %s: %w", id, err)
		}
	}
	if c.Level != n.Level {
		vs, err := check.LevelChange(r.tree, id, c.Level)
		if err != nil {
			return err
		}
		if len(vs) > 0 {
			return vs
		}
	}
	if err := r.st.Write(r.ref(n), &store.Record{Attrs: attrs}); err != nil {
		return err
	}
	n.Name, n.Level, n.Attrs = c.Name, c.Level, attrs
	r.edited("patched", "id", id)
	return nil
}

// Create adds a new languoid below parent (top level when empty) with a
// freshly issued glottocode.
func (r *Repo) Create(parent, name string, lv languoid.Level) (*languoid.Node, error) {
	if r.reg == nil {
		return nil, ErrNoRegistry
	}
	name, err := normName(name)
	if err != nil {
		return nil, err
	}
	var p *languoid.Node
	if parent != "" {
		if p, err = r.lookup(parent); err != nil {
			return nil, err
		}
	}
	var id string
	for {
		id, err = r.reg.New(name)
		if err != nil {
			return nil, err
		}
		if _, taken := r.tree.Lookup(id); !taken {
			break
		}
	}
	if vs := check.Edge(id, lv, p); len(vs) > 0 {
		return nil, vs
	}
	n := &languoid.Node{ID: id, Name: name, Level: lv, Parent: parent}
	n.SyncAttrs()
	// a number saved but never written is only skipped
	if err := r.reg.Save(); err != nil {
		return nil, fmt.Errorf("could not save the registry for %s: %w", id, err)
	}
	if err := r.st.Write(r.refOf(parent).Child(id), &store.Record{Attrs: n.Attrs.Clone()}); err != nil {
		return nil, err
	}
	if err := r.tree.Add(n); err != nil {
		return nil, err
	}
	if err := r.syncOrder(parent); err != nil {
		return nil, err
	}
	r.edited("created", "id", id, "parent", parent, "level", lv)
	return n, nil
}

// Delete removes id according to policy.
func (r *Repo) Delete(id string, policy DeletePolicy) error {
	n, err := r.lookup(id)
	if err != nil {
		return err
	}
	ref := r.ref(n)
	switch policy {
	case DeleteRefuse:
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: %s (%d)", ErrHasChildren, id, len(n.Children))
		}
	case DeleteCascade:
	case DeleteLift:
		var gp *languoid.Node
		if n.Parent != "" {
			gp = r.tree.MustLookup(n.Parent)
		}
		var vs check.Violations
		for _, c := range r.tree.ChildNodes(n) {
			vs = append(vs, check.Edge(c.ID, c.Level, gp)...)
		}
		if len(vs) > 0 {
			return vs
		}
	default:
		return fmt.Errorf("%w (%s)", ErrNoPolicy, policy)
	}
	var lifted []string
	if policy == DeleteLift {
		kids := slices.Clone(n.Children)
		for _, cid := range kids {
			if err := r.st.Move(ref.Child(cid), ref.Parent().Child(cid)); err != nil {
				r.unlift(ref, lifted)
				return fmt.Errorf("could not lift %s: %w", cid, err)
			}
			lifted = append(lifted, cid)
		}
	}
	if err := r.st.Remove(ref); err != nil {
		r.unlift(ref, lifted)
		return err
	}
	for _, cid := range lifted {
		if err := r.tree.Move(cid, n.Parent); err != nil {
			return err
		}
	}
	if err := r.tree.Remove(id); err != nil {
		return err
	}
	if policy == DeleteLift {
		if err := r.syncOrder(n.Parent); err != nil {
			return err
		}
	}
	r.edited("deleted", "id", id, "policy", policy)
	return nil
}

// unlift moves children lifted out of ref back below it, undoing a lift
// that failed part way.
func (r *Repo) unlift(ref store.Ref, ids []string) {
	for _, cid := range ids {
		if err := r.st.Move(ref.Parent().Child(cid), ref.Child(cid)); err != nil {
			r.log.Error("could not undo lift", "ref", ref.Child(cid), "err", err)
		}
	}
}

// Reorder sets the display order of the children of parent (top level
// when empty). ids must be a permutation of the current children.
func (r *Repo) Reorder(parent string, ids []string) error {
	var old []string
	if parent == "" {
		old = r.tree.RootIDs()
	} else {
		p, err := r.lookup(parent)
		if err != nil {
			return err
		}
		old = slices.Clone(p.Children)
	}
	if err := r.tree.SetOrder(parent, ids); err != nil {
		return err
	}
	if err := r.st.SetOrder(r.refOf(parent), ids); err != nil {
		_ = r.tree.SetOrder(parent, old)
		return err
	}
	r.edited("reordered", "parent", parent)
	return nil
}
