package model

// NameTable maps module ids to resolved names. A name, once assigned, is only
// ever changed through Rename; seeded names never change.
type NameTable struct {
	names     map[ModuleID]string
	sentinels map[ModuleID]struct{}
	order     []ModuleID
}

// NewNameTable returns an empty table.
func NewNameTable() *NameTable {
	return &NameTable{
		names:     make(map[ModuleID]string),
		sentinels: make(map[ModuleID]struct{}),
	}
}

// Seed assigns a reserved entry name to id.
func (t *NameTable) Seed(id ModuleID, name string) {
	if _, ok := t.names[id]; !ok {
		t.order = append(t.order, id)
	}
	t.names[id] = name
	t.sentinels[id] = struct{}{}
}

// Assign names id if it has no name yet and reports whether it did.
func (t *NameTable) Assign(id ModuleID, name string) bool {
	if _, ok := t.names[id]; ok {
		return false
	}
	t.names[id] = name
	t.order = append(t.order, id)
	return true
}

// Rename replaces the name of an already named, non-seeded id.
func (t *NameTable) Rename(id ModuleID, name string) bool {
	if _, ok := t.names[id]; !ok || t.IsSentinel(id) {
		return false
	}
	t.names[id] = name
	return true
}

// Lookup returns the name of id.
func (t *NameTable) Lookup(id ModuleID) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// IsSentinel reports whether id holds a seeded entry name.
func (t *NameTable) IsSentinel(id ModuleID) bool {
	_, ok := t.sentinels[id]
	return ok
}

// IDs returns the named ids in assignment order.
func (t *NameTable) IDs() []ModuleID {
	return append([]ModuleID(nil), t.order...)
}

// Len returns the number of named ids.
func (t *NameTable) Len() int { return len(t.names) }

// Map returns a copy of the table.
func (t *NameTable) Map() map[ModuleID]string {
	out := make(map[ModuleID]string, len(t.names))
	for id, name := range t.names {
		out[id] = name
	}
	return out
}
