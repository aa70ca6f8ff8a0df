package query

import (
	"testing"

	"github.com/glottolog/glottree/languoid"

	"github.com/google/go-cmp/cmp"
)

func sample(t *testing.T) *languoid.Tree {
	t.Helper()
	tree := languoid.NewTree()
	for _, s := range []struct {
		id, parent, name string
		lv               languoid.Level
		iso              string
	}{
		{"indo1319", "", "Indo-European", languoid.Family, ""},
		{"germ1287", "indo1319", "Germanic", languoid.Family, ""},
		{"stan1295", "germ1287", "Standard German", languoid.Language, "deu"},
		{"bava1246", "germ1287", "Bavarian", languoid.Language, "bar"},
		{"basq1248", "", "Basque", languoid.Language, "eus"},
		{"bete1234", "basq1248", "Bété", languoid.Dialect, ""},
	} {
		n := &languoid.Node{ID: s.id, Parent: s.parent, Name: s.name, Level: s.lv}
		if s.iso != "" {
			n.Attrs.Set(languoid.CoreSection, "iso639-3", s.iso)
		}
		if err := tree.Add(n); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func TestSelect(t *testing.T) {
	tree := sample(t)
	tests := []struct {
		src  string
		want []string
	}{
		{`level == "family"`, []string{"indo1319", "germ1287"}},
		{`isolate`, []string{"basq1248"}},
		{`"indo1319" in ancestors && level == "language"`, []string{"stan1295", "bava1246"}},
		{`depth >= 2`, []string{"stan1295", "bava1246"}},
		{`attrs.core["iso639-3"] == "eus"`, []string{"basq1248"}},
		{`slug(name) == "bete"`, []string{"bete1234"}},
		{`children == 0 && parent == "germ1287"`, []string{"stan1295", "bava1246"}},
		{`name startsWith "B" && validcode(id)`, []string{"bava1246", "basq1248", "bete1234"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f, err := Compile(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			nodes, err := Select(tree, f)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, n := range nodes {
				got = append(got, n.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{`name +`, `name`, `nosuchfield == 1`} {
		if _, err := Compile(src); err == nil {
			t.Errorf("%q should not compile", src)
		}
	}
}

func TestNilFilterMatchesAll(t *testing.T) {
	tree := sample(t)
	nodes, err := Select(tree, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != tree.Len() {
		t.Errorf("got %d nodes", len(nodes))
	}
}
