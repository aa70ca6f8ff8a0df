package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glottolog/glottree/languoid"

	"github.com/google/go-cmp/cmp"
)

func rec(name, level string) *Record {
	a := languoid.Attrs{}
	a.Set(languoid.CoreSection, languoid.NameKey, name)
	a.Set(languoid.CoreSection, languoid.LevelKey, level)
	return &Record{Attrs: a}
}

func newDirStore(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"dir": newDirStore(t),
		"mem": NewMem(),
	}
}

func mustWrite(t *testing.T, s Store, ref Ref, r *Record) {
	t.Helper()
	if err := s.Write(ref, r); err != nil {
		t.Fatalf("write %s: %v", ref, err)
	}
}

func childIDs(t *testing.T, s Store, ref Ref) []string {
	t.Helper()
	rs, err := s.Children(ref)
	if err != nil {
		t.Fatal(err)
	}
	var res []string
	for _, r := range rs {
		res = append(res, r.ID())
	}
	return res
}

func TestRef(t *testing.T) {
	r := RefOf("fam00001", "lang0001", "dia00001")
	if r.ID() != "dia00001" {
		t.Errorf("ID = %s", r.ID())
	}
	if r.Parent() != "fam00001/lang0001" {
		t.Errorf("Parent = %s", r.Parent())
	}
	if r.Depth() != 2 {
		t.Errorf("Depth = %d", r.Depth())
	}
	if Ref("fam00001").Parent() != "" {
		t.Error("top-level parent should be empty")
	}
	if !r.HasPrefix("fam00001") || r.HasPrefix("fam0000") {
		t.Error("HasPrefix mismatch")
	}
	if diff := cmp.Diff([]string{"fam00001", "lang0001", "dia00001"}, r.IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSemantics(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			mustWrite(t, s, "fam00001", rec("Fam", "family"))
			mustWrite(t, s, "fam00001/lang0002", rec("B", "language"))
			mustWrite(t, s, "fam00001/lang0001", rec("A", "language"))
			mustWrite(t, s, "fam00002", rec("Fam2", "family"))

			if err := s.Write("nope0000/lang0003", rec("C", "language")); !errors.Is(err, ErrNotFound) {
				t.Errorf("write without parent: %v", err)
			}
			if diff := cmp.Diff([]string{"lang0001", "lang0002"}, childIDs(t, s, "fam00001")); diff != "" {
				t.Errorf("lexicographic children (-want +got):\n%s", diff)
			}
			if err := s.SetOrder("fam00001", []string{"lang0002", "lang0001"}); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"lang0002", "lang0001"}, childIDs(t, s, "fam00001")); diff != "" {
				t.Errorf("ordered children (-want +got):\n%s", diff)
			}
			r, err := s.Read("fam00001/lang0002")
			if err != nil {
				t.Fatal(err)
			}
			n := r.Node("fam00001/lang0002")
			if n.Name != "B" || n.Level != languoid.Language || n.Parent != "fam00001" {
				t.Errorf("node = %+v", n)
			}

			if err := s.Move("fam00001/lang0002", "fam00002/lang0002"); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"lang0001"}, childIDs(t, s, "fam00001")); diff != "" {
				t.Errorf("after move (-want +got):\n%s", diff)
			}
			if err := s.Move("fam00002", "fam00002/lang0002/fam00002"); err == nil {
				t.Error("moving below itself should fail")
			}
			if err := s.Move("fam00001/lang0001", "fam00002/lang0002"); !errors.Is(err, ErrExists) {
				t.Errorf("move onto existing: %v", err)
			}
			if err := s.Remove("fam00002"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Read("fam00002/lang0002"); !errors.Is(err, ErrNotFound) {
				t.Errorf("read removed: %v", err)
			}
			if diff := cmp.Diff([]string{"fam00001"}, childIDs(t, s, "")); diff != "" {
				t.Errorf("roots (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDirParseError(t *testing.T) {
	d := newDirStore(t)
	mustWrite(t, d, "fam00001", rec("Fam", "family"))
	bad := filepath.Join(d.Root, "fam00001", "bad00001")
	if err := os.Mkdir(bad, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, InfoFile), []byte("[core]\nthis line has no delimiter\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := d.Read("fam00001/bad00001")
	var rpe *RecordParseError
	if !errors.As(err, &rpe) {
		t.Fatalf("expected RecordParseError, got %v", err)
	}
	if rpe.Ref != "fam00001/bad00001" {
		t.Errorf("Ref = %s", rpe.Ref)
	}
	// a directory without md.ini is a bad record too
	if err := os.Mkdir(filepath.Join(d.Root, "empt0001"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Read("empt0001"); !errors.As(err, &rpe) {
		t.Errorf("expected RecordParseError for missing md.ini, got %v", err)
	}
}

func TestDirOrderFile(t *testing.T) {
	d := newDirStore(t)
	mustWrite(t, d, "fam00001", rec("Fam", "family"))
	for _, id := range []string{"aaaa0001", "bbbb0001", "cccc0001"} {
		mustWrite(t, d, RefOf("fam00001", id), rec(id, "language"))
	}
	of := filepath.Join(d.Root, "fam00001", OrderFile)
	if err := os.WriteFile(of, []byte("# curated\ncccc0001\ngone0001\naaaa0001\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"cccc0001", "aaaa0001", "bbbb0001"}, childIDs(t, d, "fam00001")); diff != "" {
		t.Errorf("order file children (-want +got):\n%s", diff)
	}
	if err := d.SetOrder("fam00001", []string{"aaaa0001", "bbbb0001", "cccc0001"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(of); !os.IsNotExist(err) {
		t.Error("lexicographic order should remove the order file")
	}
}

func TestINIRoundTrip(t *testing.T) {
	in := `# -*- coding: utf-8 -*-
[core]
name = Standard German
level = language
iso639-3 = deu

[sources]
glottolog = **hh:1**
`
	attrs, err := DecodeINI([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := attrs.Get("core", "iso639-3"); v != "deu" {
		t.Errorf("iso639-3 = %q", v)
	}
	out, err := EncodeINI(attrs)
	if err != nil {
		t.Fatal(err)
	}
	again, err := DecodeINI(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(attrs, again); diff != "" {
		t.Errorf("ini round trip (-want +got):\n%s", diff)
	}
}

func TestINIMultiline(t *testing.T) {
	in := "[core]\nname = X\ncountries =\n    Germany (DE)\n    Austria (AT)\n"
	attrs, err := DecodeINI([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := attrs.Get("core", "countries")
	if !strings.Contains(v, "Germany (DE)") || !strings.Contains(v, "Austria (AT)") {
		t.Errorf("countries = %q", v)
	}
}

func TestMemStats(t *testing.T) {
	m := NewMem()
	mustWrite(t, m, "fam00001", rec("Fam", "family"))
	m.ResetStats()
	if _, err := m.Read("fam00001"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Roots(); err != nil {
		t.Fatal(err)
	}
	if got := m.Stats(); got != (Stats{Reads: 1, Lists: 1}) {
		t.Errorf("stats = %+v", got)
	}
	m.Corrupt("fam00001", errors.New("boom"))
	var rpe *RecordParseError
	if _, err := m.Read("fam00001"); !errors.As(err, &rpe) {
		t.Errorf("expected RecordParseError, got %v", err)
	}
}
