package trackers

import "strings"

// Set is an insertion-ordered collection of announce URLs with no
// duplicates and no empty entries. It is not safe for concurrent use,
// concurrent fetch tasks hand their results over a channel and the
// merge happens on a single goroutine.
type Set struct {
	entries []string
	index   map[string]struct{}
}

func NewSet(entries ...string) *Set {
	s := &Set{
		entries: []string{},
		index:   map[string]struct{}{},
	}
	s.AddAll(entries...)
	return s
}

func (s *Set) Add(tracker string) {
	if tracker == "" {
		return
	}
	if _, found := s.index[tracker]; found {
		return
	}
	s.index[tracker] = struct{}{}
	s.entries = append(s.entries, tracker)
}

func (s *Set) AddAll(trackers ...string) {
	for _, tracker := range trackers {
		s.Add(tracker)
	}
}

func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	s.AddAll(other.entries...)
}

func (s *Set) Contains(tracker string) bool {
	_, found := s.index[tracker]
	return found
}

func (s *Set) Len() int {
	return len(s.entries)
}

// Slice returns a copy, mutating it does not affect the set.
func (s *Set) Slice() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Set) Join(separator string) string {
	return strings.Join(s.entries, separator)
}
