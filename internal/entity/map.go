// Package entity provides an ordered, id-addressable collection of records.
//
// A Map is immutable: every edit returns a new Map and leaves the receiver
// untouched, so a view holding an older Map never observes a half-applied
// change.
package entity

import "slices"

// Map pairs an ordered list of keys with a key→record lookup.
// The zero value is an empty Map.
type Map[K comparable, R any] struct {
	ids    []K
	record map[K]R
}

// Build converts records into a Map keyed by keyOf, preserving order.
// When two records share a key the first position is kept and the later
// record wins.
func Build[K comparable, R any](records []R, keyOf func(R) K) Map[K, R] {
	m := Map[K, R]{
		ids:    make([]K, 0, len(records)),
		record: make(map[K]R, len(records)),
	}
	for _, r := range records {
		k := keyOf(r)
		if _, seen := m.record[k]; !seen {
			m.ids = append(m.ids, k)
		}
		m.record[k] = r
	}
	return m
}

// Len returns the number of records.
func (m Map[K, R]) Len() int { return len(m.ids) }

// IDs returns a copy of the ordered keys.
func (m Map[K, R]) IDs() []K { return slices.Clone(m.ids) }

// Get returns the record stored under k.
func (m Map[K, R]) Get(k K) (R, bool) {
	r, ok := m.record[k]
	return r, ok
}

// Has reports whether k is present.
func (m Map[K, R]) Has(k K) bool {
	_, ok := m.record[k]
	return ok
}

// ToArray returns the records in key order.
func (m Map[K, R]) ToArray() []R {
	out := make([]R, len(m.ids))
	for i, k := range m.ids {
		out[i] = m.record[k]
	}
	return out
}

// Append adds r under k at the end. If k is already present its record is
// replaced and its position kept.
func (m Map[K, R]) Append(k K, r R) Map[K, R] {
	if m.Has(k) {
		return m.Replace(k, r)
	}
	next := Map[K, R]{
		ids:    append(slices.Clone(m.ids), k),
		record: cloneRecord(m.record, 1),
	}
	next.record[k] = r
	return next
}

// Replace swaps the record stored under k without changing order.
// It is a no-op when k is absent.
func (m Map[K, R]) Replace(k K, r R) Map[K, R] {
	if !m.Has(k) {
		return m
	}
	next := Map[K, R]{
		ids:    slices.Clone(m.ids),
		record: cloneRecord(m.record, 0),
	}
	next.record[k] = r
	return next
}

// Remove drops k. It is a no-op when k is absent.
func (m Map[K, R]) Remove(k K) Map[K, R] {
	i := slices.Index(m.ids, k)
	if i < 0 {
		return m
	}
	next := Map[K, R]{
		ids:    slices.Delete(slices.Clone(m.ids), i, i+1),
		record: cloneRecord(m.record, 0),
	}
	delete(next.record, k)
	return next
}

// ReplaceKey re-keys the record at old to newKey, keeping its position.
// If old is absent, r is appended under newKey (or replaces the record
// already stored under newKey). Any other occurrence of newKey is dropped.
func (m Map[K, R]) ReplaceKey(old, newKey K, r R) Map[K, R] {
	i := slices.Index(m.ids, old)
	if i < 0 {
		return m.Append(newKey, r)
	}
	if old == newKey {
		return m.Replace(old, r)
	}
	ids := slices.Clone(m.ids)
	ids[i] = newKey
	if j := slices.Index(m.ids, newKey); j >= 0 {
		ids = slices.Delete(ids, j, j+1)
	}
	next := Map[K, R]{
		ids:    ids,
		record: cloneRecord(m.record, 0),
	}
	delete(next.record, old)
	next.record[newKey] = r
	return next
}

// Filter returns the records for which keep returns true, in order.
func (m Map[K, R]) Filter(keep func(R) bool) Map[K, R] {
	next := Map[K, R]{record: make(map[K]R, len(m.ids))}
	for _, k := range m.ids {
		r := m.record[k]
		if keep(r) {
			next.ids = append(next.ids, k)
			next.record[k] = r
		}
	}
	return next
}

func cloneRecord[K comparable, R any](src map[K]R, extra int) map[K]R {
	dst := make(map[K]R, len(src)+extra)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
