package languoid

import (
	"slices"
	"sort"
)

const (
	// CoreSection is the record section carrying name and level.
	CoreSection = "core"
	NameKey     = "name"
	LevelKey    = "level"
	HIDKey      = "hid"
	ISOKey      = "iso639-3"
)

type Field struct {
	Key   string
	Value string
}

type Section struct {
	Name   string
	Fields []Field
}

// Attrs is the free-form metadata of a languoid record: ordered sections of
// ordered key/value fields. The tree engine passes it through untouched,
// except for core.name and core.level which mirror Node.Name and Node.Level.
type Attrs struct {
	Sections []Section
}

func (a *Attrs) section(name string) int {
	for i := range a.Sections {
		if a.Sections[i].Name == name {
			return i
		}
	}
	return -1
}

// Section returns the named section or nil.
func (a *Attrs) Section(name string) *Section {
	i := a.section(name)
	if i < 0 {
		return nil
	}
	return &a.Sections[i]
}

func (a *Attrs) Get(section, key string) (string, bool) {
	s := a.Section(section)
	if s == nil {
		return "", false
	}
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set updates key in place when present, otherwise appends it, creating the
// section if needed.
func (a *Attrs) Set(section, key, value string) {
	i := a.section(section)
	if i < 0 {
		a.Sections = append(a.Sections, Section{Name: section})
		i = len(a.Sections) - 1
	}
	s := &a.Sections[i]
	for j := range s.Fields {
		if s.Fields[j].Key == key {
			s.Fields[j].Value = value
			return
		}
	}
	s.Fields = append(s.Fields, Field{Key: key, Value: value})
}

// Delete removes key from section and drops the section once empty.
func (a *Attrs) Delete(section, key string) bool {
	i := a.section(section)
	if i < 0 {
		return false
	}
	s := &a.Sections[i]
	for j := range s.Fields {
		if s.Fields[j].Key != key {
			continue
		}
		s.Fields = slices.Delete(s.Fields, j, j+1)
		if len(s.Fields) == 0 {
			a.Sections = slices.Delete(a.Sections, i, i+1)
		}
		return true
	}
	return false
}

func (a Attrs) Clone() Attrs {
	res := Attrs{Sections: make([]Section, len(a.Sections))}
	for i, s := range a.Sections {
		res.Sections[i] = Section{Name: s.Name, Fields: slices.Clone(s.Fields)}
	}
	return res
}

func (a Attrs) IsEmpty() bool {
	return len(a.Sections) == 0
}

// Map returns a section -> key -> value view of a.
func (a Attrs) Map() map[string]map[string]string {
	res := make(map[string]map[string]string, len(a.Sections))
	for _, s := range a.Sections {
		m := make(map[string]string, len(s.Fields))
		for _, f := range s.Fields {
			m[f.Key] = f.Value
		}
		res[s.Name] = m
	}
	return res
}

// Replace makes a hold exactly the content of m. Sections and keys already
// in a keep their position; new ones are appended in sorted order.
func (a *Attrs) Replace(m map[string]map[string]string) {
	res := Attrs{}
	for _, s := range a.Sections {
		kv, ok := m[s.Name]
		if !ok || len(kv) == 0 {
			continue
		}
		ns := Section{Name: s.Name}
		for _, f := range s.Fields {
			if v, ok := kv[f.Key]; ok {
				ns.Fields = append(ns.Fields, Field{Key: f.Key, Value: v})
			}
		}
		for _, k := range sortedKeys(kv) {
			if !slices.ContainsFunc(ns.Fields, func(f Field) bool { return f.Key == k }) {
				ns.Fields = append(ns.Fields, Field{Key: k, Value: kv[k]})
			}
		}
		res.Sections = append(res.Sections, ns)
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if res.section(name) >= 0 || len(m[name]) == 0 {
			continue
		}
		ns := Section{Name: name}
		for _, k := range sortedKeys(m[name]) {
			ns.Fields = append(ns.Fields, Field{Key: k, Value: m[name][k]})
		}
		res.Sections = append(res.Sections, ns)
	}
	*a = res
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
