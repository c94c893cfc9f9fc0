package notification

import (
	"sort"
	"sync"
)

// DefaultCapacity is the number of notifications a Feed keeps
const DefaultCapacity = 100

// Feed is an event-sourced cache of notifications keyed by id.
// Changes merge with apply-or-ignore semantics, so replays and overlapping
// sources converge on the same state.
type Feed struct {
	mu       sync.RWMutex
	items    map[string]Notification
	capacity int
}

// NewFeed creates a feed that keeps at most capacity notifications
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		items:    make(map[string]Notification),
		capacity: capacity,
	}
}

// Apply merges one change into the feed and reports whether the feed changed.
//   - INSERT of a known id is ignored
//   - UPDATE of an unknown id inserts it
//   - DELETE of an unknown id is ignored
func (f *Feed) Apply(c Change) bool {
	id := c.Notification.ID
	if id == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, exists := f.items[id]
	switch c.Op {
	case OpInsert:
		if exists {
			return false
		}
		f.items[id] = c.Notification
		f.evictLocked()
		return true
	case OpUpdate:
		if exists && current == c.Notification {
			return false
		}
		f.items[id] = c.Notification
		f.evictLocked()
		return true
	case OpDelete:
		if !exists {
			return false
		}
		delete(f.items, id)
		return true
	default:
		return false
	}
}

// Get returns a notification by id
func (f *Feed) Get(id string) (Notification, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, ok := f.items[id]
	return n, ok
}

// Len returns the number of notifications in the feed
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Items returns the notifications newest first
func (f *Feed) Items() []Notification {
	f.mu.RLock()
	items := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		items = append(items, n)
	}
	f.mu.RUnlock()

	sortNewestFirst(items)
	return items
}

// evictLocked drops the oldest notifications beyond capacity
func (f *Feed) evictLocked() {
	if len(f.items) <= f.capacity {
		return
	}
	items := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		items = append(items, n)
	}
	sortNewestFirst(items)
	for _, n := range items[f.capacity:] {
		delete(f.items, n.ID)
	}
}

func sortNewestFirst(items []Notification) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// DismissalSet is the set of notification ids one admin dismissed
type DismissalSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewDismissalSet creates a set seeded with already dismissed ids
func NewDismissalSet(ids ...string) *DismissalSet {
	s := &DismissalSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add marks ids as dismissed and returns the ones that were new
func (s *DismissalSet) Add(ids ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.ids[id]; ok || id == "" {
			continue
		}
		s.ids[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

// Contains reports whether an id was dismissed
func (s *DismissalSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Filter returns the notifications that were not dismissed, preserving order
func (s *DismissalSet) Filter(items []Notification) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visible := make([]Notification, 0, len(items))
	for _, n := range items {
		if _, ok := s.ids[n.ID]; !ok {
			visible = append(visible, n)
		}
	}
	return visible
}
