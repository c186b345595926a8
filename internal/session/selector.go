package session

import (
	"sync"

	"studydesk/internal/models"
)

// Selector holds the single currently selected material, in process memory
// only. The selection is a value copy: it is never validated against the
// store and survives (or doesn't) independently of the stored records,
// except that clearing the store also clears a selection that pointed into
// the cleared set.
type Selector struct {
	mu       sync.RWMutex
	current  models.Material
	selected bool
}

// Select replaces the current selection unconditionally.
func (s *Selector) Select(m models.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = m
	s.selected = true
}

// Current returns the current selection, or false when none is set.
func (s *Selector) Current() (models.Material, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.selected
}

// Clear sets the selection to none.
func (s *Selector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = models.Material{}
	s.selected = false
}
