package store

import (
	"fmt"
	"slices"
	"sync"
)

// Stats counts the store operations served by a Mem.
type Stats struct {
	Reads int
	Lists int
}

type memEntry struct {
	rec *Record
	err error
}

// Mem is an in-memory Store with the same listing semantics as Dir. It
// counts reads and listings so callers can assert how often storage was
// touched.
type Mem struct {
	mu      sync.Mutex
	entries map[Ref]*memEntry
	order   map[Ref][]string
	stats   Stats
}

func NewMem() *Mem {
	return &Mem{
		entries: map[Ref]*memEntry{},
		order:   map[Ref][]string{},
	}
}

func (m *Mem) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Mem) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = Stats{}
}

// Corrupt makes subsequent reads of ref fail with a RecordParseError
// wrapping err.
func (m *Mem) Corrupt(ref Ref, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[ref]
	if !ok {
		e = &memEntry{}
		m.entries[ref] = e
	}
	e.err = err
}

func (m *Mem) exists(ref Ref) bool {
	if ref == "" {
		return true
	}
	_, ok := m.entries[ref]
	return ok
}

func (m *Mem) Roots() ([]Ref, error) {
	return m.Children("")
}

func (m *Mem) Children(ref Ref) ([]Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Lists++
	if !m.exists(ref) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	var ids []string
	for r := range m.entries {
		if r.Parent() == ref {
			ids = append(ids, r.ID())
		}
	}
	return refs(ref, orderChildren(ids, m.order[ref])), nil
}

func (m *Mem) Read(ref Ref) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Reads++
	e, ok := m.entries[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if e.err != nil {
		return nil, &RecordParseError{Ref: ref, Err: e.err}
	}
	return &Record{Attrs: e.rec.Attrs.Clone()}, nil
}

func (m *Mem) Write(ref Ref, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref == "" {
		return fmt.Errorf("cannot write the tree root")
	}
	if !m.exists(ref.Parent()) {
		return fmt.Errorf("%w: parent of %s", ErrNotFound, ref)
	}
	m.entries[ref] = &memEntry{rec: &Record{Attrs: rec.Attrs.Clone()}}
	return nil
}

func (m *Mem) Move(from, to Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if from == "" || to == "" {
		return fmt.Errorf("cannot move the tree root")
	}
	if to.HasPrefix(from) {
		return fmt.Errorf("cannot move %s below itself (%s)", from, to)
	}
	if !m.exists(from) {
		return fmt.Errorf("%w: %s", ErrNotFound, from)
	}
	if !m.exists(to.Parent()) {
		return fmt.Errorf("%w: parent of %s", ErrNotFound, to)
	}
	if m.exists(to) {
		return fmt.Errorf("%w: %s", ErrExists, to)
	}
	moved := map[Ref]*memEntry{}
	movedOrder := map[Ref][]string{}
	for r, e := range m.entries {
		if r.HasPrefix(from) {
			moved[to+r[len(from):]] = e
			delete(m.entries, r)
		}
	}
	for r, o := range m.order {
		if r.HasPrefix(from) {
			movedOrder[to+r[len(from):]] = o
			delete(m.order, r)
		}
	}
	for r, e := range moved {
		m.entries[r] = e
	}
	for r, o := range movedOrder {
		m.order[r] = o
	}
	return nil
}

func (m *Mem) Remove(ref Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref == "" {
		return fmt.Errorf("cannot remove the tree root")
	}
	if !m.exists(ref) {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	for r := range m.entries {
		if r.HasPrefix(ref) {
			delete(m.entries, r)
		}
	}
	for r := range m.order {
		if r.HasPrefix(ref) {
			delete(m.order, r)
		}
	}
	return nil
}

func (m *Mem) SetOrder(parent Ref, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists(parent) {
		return fmt.Errorf("%w: %s", ErrNotFound, parent)
	}
	if isSorted(ids) {
		delete(m.order, parent)
		return nil
	}
	m.order[parent] = slices.Clone(ids)
	return nil
}
