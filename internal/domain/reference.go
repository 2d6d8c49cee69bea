package domain

import (
	"cmp"
	"maps"
	"slices"
)

// ReferenceTable is a read-only id to label mapping such as categories or
// product statuses. It is never mutated after construction.
type ReferenceTable[K cmp.Ordered, V any] struct {
	entries map[K]V
}

type ReferenceEntry[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

type CategoryTable = ReferenceTable[int, string]
type StatusTable = ReferenceTable[int, string]

func NewReferenceTable[K cmp.Ordered, V any](entries map[K]V) *ReferenceTable[K, V] {
	return &ReferenceTable[K, V]{entries: maps.Clone(entries)}
}

func (t *ReferenceTable[K, V]) Lookup(key K) (V, bool) {
	if t == nil {
		var zero V
		return zero, false
	}
	value, ok := t.entries[key]
	return value, ok
}

// Label returns the value for key or fallback when the key is unknown.
func (t *ReferenceTable[K, V]) Label(key K, fallback V) V {
	if value, ok := t.Lookup(key); ok {
		return value
	}
	return fallback
}

func (t *ReferenceTable[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *ReferenceTable[K, V]) Keys() []K {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.entries))
}

func (t *ReferenceTable[K, V]) Entries() []ReferenceEntry[K, V] {
	keys := t.Keys()
	entries := make([]ReferenceEntry[K, V], 0, len(keys))
	for _, key := range keys {
		entries = append(entries, ReferenceEntry[K, V]{Key: key, Value: t.entries[key]})
	}
	return entries
}

// Map returns a copy of the underlying mapping.
func (t *ReferenceTable[K, V]) Map() map[K]V {
	if t == nil {
		return map[K]V{}
	}
	return maps.Clone(t.entries)
}
