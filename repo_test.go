package glottree

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glottolog/glottree/check"
	"github.com/glottolog/glottree/glottocode"
	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/query"
	"github.com/glottolog/glottree/store"
	"github.com/glottolog/glottree/treebuild"

	"github.com/google/go-cmp/cmp"
)

func put(t *testing.T, st store.Store, ref store.Ref, name, level string, extra ...string) {
	t.Helper()
	a := languoid.Attrs{}
	a.Set(languoid.CoreSection, languoid.NameKey, name)
	a.Set(languoid.CoreSection, languoid.LevelKey, level)
	for i := 0; i+1 < len(extra); i += 2 {
		a.Set(languoid.CoreSection, extra[i], extra[i+1])
	}
	if err := st.Write(ref, &store.Record{Attrs: a}); err != nil {
		t.Fatal(err)
	}
}

func fill(t *testing.T, st store.Store) {
	t.Helper()
	put(t, st, "fam00001", "Family One", "family")
	put(t, st, "fam00001/lang0001", "Language One", "language", "hid", "LO", "iso639-3", "lon")
	put(t, st, "fam00001/lang0001/dia00001", "Dialect One", "dialect")
	put(t, st, "fam00001/lang0002", "Language Two", "language")
	put(t, st, "fam00002", "Family Two", "family")
}

func open(t *testing.T) (*Repo, *store.Mem) {
	t.Helper()
	m := store.NewMem()
	fill(t, m)
	r, err := Open(m, WithRegistry(glottocode.NewMemRegistry(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.BuildErrors()) != 0 || len(r.Violations()) != 0 {
		t.Fatalf("fixture: %v %v", r.BuildErrors(), r.Violations())
	}
	return r, m
}

func ids(ns []*languoid.Node) []string {
	var res []string
	for _, n := range ns {
		res = append(res, n.ID)
	}
	return res
}

func TestReparentUnderDialectRejected(t *testing.T) {
	r, m := open(t)
	err := r.ProposeReparent("lang0002", "dia00001")
	var vs check.Violations
	if !errors.As(err, &vs) || len(vs) != 1 || !vs.Has(check.RuleLanguageUnderFamily, "lang0002") {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, check.ErrInvariant) {
		t.Error("should match ErrInvariant")
	}
	if p := r.Tree().MustLookup("lang0002").Parent; p != "fam00001" {
		t.Errorf("parent in tree = %s", p)
	}
	if _, err := m.Read("fam00001/lang0002"); err != nil {
		t.Errorf("store changed: %v", err)
	}
}

func TestReparent(t *testing.T) {
	r, m := open(t)
	var se *treebuild.StructuralError
	if err := r.ProposeReparent("fam00001", "dia00001"); !errors.As(err, &se) || se.Kind != treebuild.KindCycle {
		t.Errorf("moving below itself: %v", err)
	}
	if err := r.ProposeReparent("lang0001", "fam00002"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Read("fam00002/lang0001/dia00001"); err != nil {
		t.Errorf("subtree not moved in store: %v", err)
	}
	live, err := r.Ancestors("dia00001", nil)
	if err != nil {
		t.Fatal(err)
	}
	mapped, err := r.Ancestors("dia00001", r.Tree())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"fam00002", "lang0001"}
	if diff := cmp.Diff(want, ids(live)); diff != "" {
		t.Errorf("live ancestors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, ids(mapped)); diff != "" {
		t.Errorf("mapped ancestors (-want +got):\n%s", diff)
	}
	if err := r.ProposeReparent("lang0001", ""); err != nil {
		t.Errorf("making an isolate: %v", err)
	}
	if !r.Tree().MustLookup("lang0001").Isolate() {
		t.Error("lang0001 should be an isolate")
	}
	if err := r.ProposeReparent("nope0000", ""); !errors.Is(err, ErrUnknownID) {
		t.Errorf("unknown: %v", err)
	}
}

func TestLevelChange(t *testing.T) {
	r, m := open(t)
	for id, lv := range map[string]languoid.Level{
		"lang0001": languoid.Dialect,
		"dia00001": languoid.Language,
		"fam00001": languoid.Dialect,
	} {
		if err := r.ProposeLevelChange(id, lv); !errors.Is(err, check.ErrInvariant) {
			t.Errorf("%s to %s: %v", id, lv, err)
		}
	}
	if err := r.ProposeLevelChange("fam00002", languoid.Language); err != nil {
		t.Fatal(err)
	}
	rec, err := m.Read("fam00002")
	if err != nil {
		t.Fatal(err)
	}
	if lv, _ := rec.Attrs.Get(languoid.CoreSection, languoid.LevelKey); lv != "language" {
		t.Errorf("stored level = %q", lv)
	}
	if err := r.ProposeLevelChange("fam00002", languoid.NoLevel); !errors.Is(err, languoid.ErrBadLevel) {
		t.Errorf("no level: %v", err)
	}
}

func TestRenameAndPatch(t *testing.T) {
	r, m := open(t)
	if err := r.Rename("lang0002", "  Second  "); err != nil {
		t.Fatal(err)
	}
	if err := r.Rename("lang0002", "\t"); err == nil {
		t.Error("empty name accepted")
	}
	if n, _ := r.Node("lang0002"); n.Name != "Second" {
		t.Errorf("name = %q", n.Name)
	}

	merge := `{"core": {"iso639-3": "sec", "hid": null}, "sources": {"glottolog": "x:1"}}`
	if err := r.PatchAttrs("lang0002", []byte(merge)); err != nil {
		t.Fatal(err)
	}
	n, err := r.ByCode("sec")
	if err != nil || n.ID != "lang0002" {
		t.Errorf("ByCode(sec) = %v, %v", n, err)
	}
	rec, _ := m.Read("fam00001/lang0002")
	if v, _ := rec.Attrs.Get("sources", "glottolog"); v != "x:1" {
		t.Errorf("stored sources = %q", v)
	}

	ops := `[{"op": "replace", "path": "/core/level", "value": "dialect"}]`
	if err := r.PatchAttrs("lang0001", []byte(ops)); !errors.Is(err, check.ErrInvariant) {
		t.Errorf("level patch: %v", err)
	}
	ops = `[{"op": "replace", "path": "/core/name", "value": "Renamed"}]`
	if err := r.PatchAttrs("lang0001", []byte(ops)); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Node("lang0001"); n.Name != "Renamed" || n.ISO() != "lon" {
		t.Errorf("after patch: %+v", n)
	}
	for _, bad := range []string{`{"core": {"x": 1}}`, `"core"`, `[{"op": "remove", "path": "/nope/x"}]`} {
		if err := r.PatchAttrs("lang0001", []byte(bad)); err == nil {
			t.Errorf("%s accepted", bad)
		}
	}
}

func TestByCode(t *testing.T) {
	r, _ := open(t)
	for _, code := range []string{"lang0001", "LO", "lon", "LON"} {
		n, err := r.ByCode(code)
		if err != nil || n.ID != "lang0001" {
			t.Errorf("ByCode(%s) = %v, %v", code, n, err)
		}
	}
	if _, err := r.ByCode("zzz"); !errors.Is(err, ErrUnknownID) {
		t.Errorf("err = %v", err)
	}
}

func TestCreate(t *testing.T) {
	r, m := open(t)
	n, err := r.Create("fam00002", "Zulu", languoid.Language)
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "zulu1234" {
		t.Errorf("id = %s", n.ID)
	}
	if _, err := m.Read("fam00002/zulu1234"); err != nil {
		t.Error(err)
	}
	if _, err := r.Create("", "Lost", languoid.Dialect); !errors.Is(err, check.ErrInvariant) {
		t.Errorf("dialect at top level: %v", err)
	}
	bare, err := Open(m)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bare.Create("", "X", languoid.Family); !errors.Is(err, ErrNoRegistry) {
		t.Errorf("err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	r, m := open(t)
	if err := r.Delete("dia00001", 0); !errors.Is(err, ErrNoPolicy) {
		t.Errorf("zero policy: %v", err)
	}
	if err := r.Delete("lang0001", DeleteRefuse); !errors.Is(err, ErrHasChildren) {
		t.Errorf("refuse: %v", err)
	}
	if err := r.Delete("lang0001", DeleteLift); !errors.Is(err, check.ErrInvariant) {
		t.Errorf("lifting a dialect under a family: %v", err)
	}
	if err := r.Delete("fam00001", DeleteLift); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"fam00002", "lang0001", "lang0002"}, r.Tree().RootIDs()); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
	if _, err := m.Read("lang0001/dia00001"); err != nil {
		t.Errorf("lifted subtree: %v", err)
	}
	if err := r.Delete("lang0001", DeleteCascade); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Read("lang0001/dia00001"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cascade left %v", err)
	}
	if _, ok := r.Tree().Lookup("dia00001"); ok {
		t.Error("dia00001 still in tree")
	}
	if err := r.Delete("lang0002", DeleteRefuse); err != nil {
		t.Error(err)
	}
}

func TestReorder(t *testing.T) {
	r, m := open(t)
	if err := r.Reorder("fam00001", []string{"lang0002", "lang0001"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Reorder("fam00001", []string{"lang0002"}); err == nil {
		t.Error("partial order accepted")
	}
	again, err := Open(m)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"lang0002", "lang0001"}, again.Tree().MustLookup("fam00001").Children); diff != "" {
		t.Errorf("persisted order (-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	r, _ := open(t)
	f, err := query.Compile(`level == "language"`)
	if err != nil {
		t.Fatal(err)
	}
	ns, err := r.Select(f)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"lang0001", "lang0002"}, ids(ns)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNavigationModesAgree(t *testing.T) {
	r, _ := open(t)
	for n := range r.AllNodes() {
		var live, mapped []string
		for d, err := range r.Descendants(n.ID, nil) {
			if err != nil {
				t.Fatal(err)
			}
			live = append(live, d.ID)
		}
		for d := range r.Descendants(n.ID, r.Tree()) {
			mapped = append(mapped, d.ID)
		}
		if diff := cmp.Diff(live, mapped); diff != "" {
			t.Errorf("%s descendants (-live +mapped):\n%s", n.ID, diff)
		}
		ls, err := r.Siblings(n.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		ms, err := r.Siblings(n.ID, r.Tree())
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(ids(ls), ids(ms)); diff != "" {
			t.Errorf("%s siblings (-live +mapped):\n%s", n.ID, diff)
		}
	}
}

const editedLFF = `fam00001 [f] Family One
    lang0001 [l] Language Uno
fam00002 [f] Family Two
    lang0002 [l] Language Two
    newl1234 [l] New Language
        dia00001 [d] Dialect One	moved here
`

func TestApplyLFF(t *testing.T) {
	r, m := open(t)
	var buf bytes.Buffer
	if err := r.EncodeToLFF(&buf); err != nil {
		t.Fatal(err)
	}
	want := "fam00001 [f] Family One\n" +
		"    lang0001 [l] Language One\n" +
		"        dia00001 [d] Dialect One\n" +
		"    lang0002 [l] Language Two\n" +
		"fam00002 [f] Family Two\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("encoded (-want +got):\n%s", diff)
	}

	tree, err := r.DecodeFromLFF(strings.NewReader(editedLFF))
	if err != nil {
		t.Fatal(err)
	}
	if iso := tree.MustLookup("lang0001").ISO(); iso != "lon" {
		t.Errorf("stored attributes not attached, iso = %q", iso)
	}
	if err := r.ApplyLFF(tree, OrphanRefuse); err != nil {
		t.Fatal(err)
	}
	if err := languoid.Isomorphic(tree, r.Tree()); err != nil {
		t.Error(err)
	}
	if _, err := m.Read("fam00002/newl1234/dia00001"); err != nil {
		t.Error(err)
	}
	rec, err := m.Read("fam00001/lang0001")
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := rec.Attrs.Get(languoid.CoreSection, languoid.NameKey); name != "Language Uno" {
		t.Errorf("stored name = %q", name)
	}
	if iso, _ := rec.Attrs.Get(languoid.CoreSection, languoid.ISOKey); iso != "lon" {
		t.Errorf("stored iso = %q", iso)
	}

	// drop lang0002 and reorder fam00002
	next := "fam00002 [f] Family Two\n" +
		"    newl1234 [l] New Language\n" +
		"        dia00001 [d] Dialect One\n" +
		"fam00001 [f] Family One\n" +
		"    lang0001 [l] Language Uno\n"
	tree, err = r.DecodeFromLFF(strings.NewReader(next))
	if err != nil {
		t.Fatal(err)
	}
	var oe *OrphanError
	if err := r.ApplyLFF(tree, OrphanRefuse); !errors.As(err, &oe) || len(oe.IDs) != 1 || oe.IDs[0] != "lang0002" {
		t.Fatalf("orphans: %v", err)
	}
	if err := r.ApplyLFF(tree, OrphanDelete); err != nil {
		t.Fatal(err)
	}
	if err := languoid.Isomorphic(tree, r.Tree()); err != nil {
		t.Error(err)
	}
	if _, err := m.Read("fam00002/lang0002"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("orphan left: %v", err)
	}
}

func TestApplyLFFRejectsViolations(t *testing.T) {
	r, m := open(t)
	tree, err := r.DecodeFromLFF(strings.NewReader("dia00001 [d] Top\nfam00001 [f] F\n"))
	if !errors.Is(err, check.ErrInvariant) {
		t.Fatalf("decode: %v", err)
	}
	if err := r.ApplyLFF(tree, OrphanDelete); !errors.Is(err, check.ErrInvariant) {
		t.Errorf("apply: %v", err)
	}
	if _, err := m.Read("fam00001/lang0001/dia00001"); err != nil {
		t.Errorf("store changed: %v", err)
	}
}

func TestOpenDir(t *testing.T) {
	root := t.TempDir()
	treeDir := filepath.Join(root, "languoids", "tree")
	if err := os.MkdirAll(treeDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "glottree.yaml"), []byte("lff:\n  indent: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := store.NewDir(treeDir)
	if err != nil {
		t.Fatal(err)
	}
	fill(t, d)
	r, err := OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if r.Tree().Len() != 5 {
		t.Fatalf("Len = %d", r.Tree().Len())
	}
	n, err := r.Create("fam00001", "Bété", languoid.Language)
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "bete1234" {
		t.Errorf("id = %s", n.ID)
	}
	if _, err := os.Stat(filepath.Join(treeDir, "fam00001", "bete1234", store.InfoFile)); err != nil {
		t.Error(err)
	}
	codes, err := os.ReadFile(filepath.Join(root, "languoids", "glottocodes.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(codes), `"bete": 1234`) {
		t.Errorf("registry:\n%s", codes)
	}

	var buf bytes.Buffer
	if err := r.EncodeSubtreeToLFF("fam00001", &buf); err != nil {
		t.Fatal(err)
	}
	src := strings.Replace(buf.String(), "  lang0002 [l] Language Two\n", "", 1)
	src = strings.Replace(src, "  bete1234", "  lang0002 [l] Language Two\n  bete1234", 1)
	src += "fam00002 [f] Family Two\n"
	tree, err := r.DecodeFromLFF(strings.NewReader(src))
	if err != nil {
		t.Fatalf("%v\n%s", err, src)
	}
	if err := r.ApplyLFF(tree, OrphanRefuse); err != nil {
		t.Fatal(err)
	}
	reopened, err := OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := languoid.Isomorphic(tree, reopened.Tree()); err != nil {
		t.Error(err)
	}
}

// failingMem fails moves to one destination and, optionally, removals.
type failingMem struct {
	*store.Mem
	moveTo     store.Ref
	failRemove bool
}

func (f *failingMem) Move(from, to store.Ref) error {
	if to == f.moveTo {
		return errors.New("disk full")
	}
	return f.Mem.Move(from, to)
}

func (f *failingMem) Remove(ref store.Ref) error {
	if f.failRemove {
		return errors.New("permission denied")
	}
	return f.Mem.Remove(ref)
}

func TestDeleteLiftFailureLeavesStore(t *testing.T) {
	m := store.NewMem()
	fill(t, m)
	f := &failingMem{Mem: m, moveTo: "lang0002"}
	r, err := Open(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Delete("fam00001", DeleteLift); err == nil {
		t.Fatal("lift should fail")
	}
	f.moveTo, f.failRemove = "", true
	if err := r.Delete("fam00001", DeleteLift); err == nil {
		t.Fatal("lift should fail")
	}
	for _, ref := range []store.Ref{"fam00001/lang0001/dia00001", "fam00001/lang0002"} {
		if _, err := m.Read(ref); err != nil {
			t.Errorf("%s: %v", ref, err)
		}
	}
	if _, err := m.Read("lang0001"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("lang0001 left lifted: %v", err)
	}
	again, err := Open(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := languoid.Isomorphic(again.Tree(), r.Tree()); err != nil {
		t.Errorf("tree and store disagree: %v", err)
	}
	f.failRemove = false
	if err := r.Delete("fam00001", DeleteLift); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"fam00002", "lang0001", "lang0002"}, r.Tree().RootIDs()); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
}

func TestCreateRegistryFailureLeavesStore(t *testing.T) {
	reg, err := glottocode.OpenRegistry(filepath.Join(t.TempDir(), "missing", "glottocodes.json"))
	if err != nil {
		t.Fatal(err)
	}
	m := store.NewMem()
	fill(t, m)
	r, err := Open(m, WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create("fam00002", "Zulu", languoid.Language); err == nil {
		t.Fatal("create should fail")
	}
	if kids, _ := m.Children("fam00002"); len(kids) != 0 {
		t.Errorf("store changed: %v", kids)
	}
	if r.Tree().Len() != 5 {
		t.Errorf("Len = %d", r.Tree().Len())
	}
}

func TestNilTreeNavigatesLive(t *testing.T) {
	r, m := open(t)
	m.ResetStats()
	var nm *languoid.Tree
	as, err := r.Ancestors("dia00001", nm)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"fam00001", "lang0001"}, ids(as)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if m.Stats().Reads == 0 {
		t.Error("a nil tree should read the store")
	}
}

func TestLintCodes(t *testing.T) {
	r, _ := open(t)
	n, err := r.Create("fam00002", "Zulu", languoid.Language)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.PatchAttrs("lang0002", []byte(`{"core": {"hid": "LO"}}`)); err != nil {
		t.Fatal(err)
	}
	var unreg []string
	var dups []check.Warning
	for _, w := range r.Lint() {
		switch w.Kind {
		case check.WarnUnregistered:
			unreg = append(unreg, w.ID)
		case check.WarnDuplicateHID:
			dups = append(dups, w)
		}
	}
	want := []string{"fam00001", "lang0001", "dia00001", "lang0002", "fam00002"}
	if diff := cmp.Diff(want, unreg); diff != "" {
		t.Errorf("unregistered (-want +got):\n%s", diff)
	}
	if len(dups) != 1 || dups[0].ID != "lang0002" || dups[0].Other != "lang0001" {
		t.Errorf("duplicate hid = %v", dups)
	}
	if got, _ := r.ByCode("LO"); got.ID != "lang0001" {
		t.Errorf("ByCode(LO) = %s", got.ID)
	}
	if n.ID != "zulu1234" {
		t.Errorf("id = %s", n.ID)
	}
}

func TestNamelessRecordRoundTrip(t *testing.T) {
	m := store.NewMem()
	a := languoid.Attrs{}
	a.Set(languoid.CoreSection, languoid.LevelKey, "family")
	if err := m.Write("fam00001", &store.Record{Attrs: a}); err != nil {
		t.Fatal(err)
	}
	put(t, m, "fam00001/lang0001", "L", "language")
	r, err := Open(m)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.EncodeToLFF(&buf); err != nil {
		t.Fatal(err)
	}
	tree, err := r.DecodeFromLFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := languoid.Isomorphic(r.Tree(), tree); err != nil {
		t.Fatal(err)
	}
	if err := r.ApplyLFF(tree, OrphanRefuse); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Read("fam00001/lang0001"); err != nil {
		t.Error(err)
	}
}
