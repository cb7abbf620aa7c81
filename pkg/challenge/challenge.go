// Package challenge defines the find-the-defect challenge model:
// declarative definitions, attempt results, completion records
// and the error taxonomy shared by the rest of the module.
package challenge

import "sort"

// ID uniquely identifies a challenge.
type ID string

// IDSet is a set of challenge IDs. It is what the completion
// tracker reports and what badge criteria are evaluated against.
type IDSet map[ID]struct{}

// NewIDSet builds a set from the given IDs.
func NewIDSet(ids ...ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s IDSet) Len() int { return len(s) }

// Sorted returns the IDs in ascending order.
func (s IDSet) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
