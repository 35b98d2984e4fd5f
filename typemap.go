package dbtype

import (
	"sort"
	"strconv"
)

// Key identifies a column either by name or by its position in a result row.
type Key struct {
	name       string
	pos        int
	positional bool
}

// Col returns the Key of the column called name.
func Col(name string) Key {
	return Key{name: name}
}

// Pos returns the Key of the column at position i.
func Pos(i int) Key {
	return Key{pos: i, positional: true}
}

// Name returns the column name, or "" for a positional key.
func (k Key) Name() string {
	return k.name
}

// Position returns the column position and whether k is positional.
func (k Key) Position() (int, bool) {
	return k.pos, k.positional
}

func (k Key) String() string {
	if k.positional {
		return strconv.Itoa(k.pos)
	}
	return k.name
}

// Types maps columns to converter type names.
type Types map[Key]string

// TypesByName builds Types from a map of column names.
func TypesByName(m map[string]string) Types {
	types := make(Types, len(m))
	for name, typeName := range m {
		types[Col(name)] = typeName
	}
	return types
}

// Keys returns the keys of t with positional keys first in ascending order followed by
// named keys in ascending order.
func (t Types) Keys() []Key {
	keys := make([]Key, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.positional != b.positional {
			return a.positional
		}
		if a.positional {
			return a.pos < b.pos
		}
		return a.name < b.name
	})

	return keys
}

func (t Types) clone() Types {
	out := make(Types, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// TypeMap holds default and single-use mappings of columns to converter type names for
// one query. It is not safe for concurrent mutation.
type TypeMap struct {
	defaults  Types
	overrides Types
}

// NewTypeMap returns a TypeMap with defaults as its default mapping.
func NewTypeMap(defaults Types) *TypeMap {
	tm := &TypeMap{}
	tm.SetDefaults(defaults)
	tm.SetOverrides(nil)
	return tm
}

// SetDefaults replaces all default mappings with defaults. Use AddDefaults to add to
// the existing mappings.
func (tm *TypeMap) SetDefaults(defaults Types) *TypeMap {
	tm.defaults = defaults.clone()
	return tm
}

// Defaults returns a copy of the default mappings.
func (tm *TypeMap) Defaults() Types {
	return tm.defaults.clone()
}

// AddDefaults adds types to the default mappings. Existing mappings are not
// overwritten.
func (tm *TypeMap) AddDefaults(types Types) *TypeMap {
	if tm.defaults == nil {
		tm.defaults = make(Types, len(types))
	}
	for k, v := range types {
		if _, ok := tm.defaults[k]; !ok {
			tm.defaults[k] = v
		}
	}
	return tm
}

// SetOverrides replaces the single-use mappings with overrides.
func (tm *TypeMap) SetOverrides(overrides Types) *TypeMap {
	tm.overrides = overrides.clone()
	return tm
}

// Overrides returns a copy of the single-use mappings.
func (tm *TypeMap) Overrides() Types {
	return tm.overrides.clone()
}

// Type returns the converter type name of the column identified by k. The single-use
// mapping is consulted first, then the default mapping.
func (tm *TypeMap) Type(k Key) (string, bool) {
	if typeName, ok := tm.overrides[k]; ok {
		return typeName, true
	}
	if typeName, ok := tm.defaults[k]; ok {
		return typeName, true
	}
	return "", false
}

// ToTypes returns all mappings in one Types. Single-use mappings win over defaults.
func (tm *TypeMap) ToTypes() Types {
	out := tm.defaults.clone()
	for k, v := range tm.overrides {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of tm.
func (tm *TypeMap) Clone() *TypeMap {
	return &TypeMap{defaults: tm.defaults.clone(), overrides: tm.overrides.clone()}
}
