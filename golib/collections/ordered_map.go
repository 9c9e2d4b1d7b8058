package collections

import (
	"container/list"
)

// OrderedMap is a map that also remembers insertion order, the way Python
// dicts do. Rebinding an existing key keeps its original position. The
// zero value is not usable; construct with NewOrderedMap. Not safe for
// concurrent use.
type OrderedMap struct {
	byKey map[interface{}]*list.Element
	seq   *list.List
}

type entry struct {
	key, val interface{}
}

// NewOrderedMap returns an empty map sized for about cap entries.
func NewOrderedMap(cap int) OrderedMap {
	return OrderedMap{
		byKey: make(map[interface{}]*list.Element, cap),
		seq:   list.New(),
	}
}

// Len returns the number of entries.
func (m OrderedMap) Len() int {
	return len(m.byKey)
}

// Get looks up key, reporting whether it was present.
func (m OrderedMap) Get(key interface{}) (interface{}, bool) {
	elem := m.byKey[key]
	if elem == nil {
		return nil, false
	}
	return elem.Value.(entry).val, true
}

// Set binds key to val and reports whether the key is new. Rebinding
// replaces the value in place, leaving the iteration order untouched.
func (m OrderedMap) Set(key, val interface{}) bool {
	if elem := m.byKey[key]; elem != nil {
		elem.Value = entry{key, val}
		return false
	}
	m.byKey[key] = m.seq.PushBack(entry{key, val})
	return true
}

// RangeInc visits the entries oldest first until cb returns false.
func (m OrderedMap) RangeInc(cb func(k, v interface{}) bool) {
	for elem := m.seq.Front(); elem != nil; elem = elem.Next() {
		kv := elem.Value.(entry)
		if !cb(kv.key, kv.val) {
			return
		}
	}
}
