// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package inventory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

// Origin tells who produced a change.
type Origin int

const (
	// OriginLocal marks an optimistic edit made by the local user.
	OriginLocal Origin = iota
	// OriginRemote marks a change received from the room.
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// Change is delivered to [State.OnChange] listeners after a message was
// applied.
type Change struct {
	Message models.SyncMessage
	Origin  Origin
}

// State is the local inventory of one room. It is safe for concurrent use.
type State struct {
	mu   sync.RWMutex
	tree tree

	listenersMu sync.RWMutex
	listeners   []func(Change)

	logger *logger.Logger
}

// NewState returns an empty inventory.
func NewState(log *logger.Logger) *State {
	return &State{
		tree:   newTree(),
		logger: log.WithComponent("inventory"),
	}
}

// Apply mutates the inventory according to msg and notifies listeners.
// Presence and signaling messages are rejected with [models.ErrNotMutation].
func (s *State) Apply(msg models.SyncMessage, origin Origin) error {
	s.mu.Lock()
	err := models.Dispatch(msg, &s.tree)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("apply %s (%s): %w", msg.MessageType(), origin, err)
	}

	s.notify(Change{Message: msg, Origin: origin})
	return nil
}

// OnChange registers fn to be called after every successful Apply. fn runs
// on the applying goroutine, outside the state lock.
func (s *State) OnChange(fn func(Change)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *State) notify(change Change) {
	s.listenersMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		s.safeCall(fn, change)
	}
}

func (s *State) safeCall(fn func(Change), change Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("type", string(change.Message.MessageType())).
				Msg("inventory listener panicked")
		}
	}()
	fn(change)
}

// Reset drops every drawer and category, e.g. when switching rooms.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = newTree()
}

// Drawer returns a copy of the drawer with the given id.
func (s *State) Drawer(id string) (models.Drawer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.tree.drawers[id]
	if !ok {
		return models.Drawer{}, false
	}
	return cloneDrawer(*d), true
}

// Drawers returns copies of all drawers ordered by id.
func (s *State) Drawers() []models.Drawer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Drawer, 0, len(s.tree.drawers))
	for _, d := range s.tree.drawers {
		out = append(out, cloneDrawer(*d))
	}
	slices.SortFunc(out, func(a, b models.Drawer) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Category returns the category with the given id.
func (s *State) Category(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.tree.categories[id]
	return c, ok
}

// Categories returns all categories ordered by id.
func (s *State) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.tree.categories))
	for _, c := range s.tree.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Fields returns the current field form of an entity. Sub-compartments
// report the fields of the item they hold.
func (s *State) Fields(kind models.EntityKind, id string, path models.EntityPath) (models.Fields, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case models.EntityDrawer:
		d, ok := s.tree.drawers[id]
		if !ok {
			return nil, false
		}
		return models.Fields{"name": d.Name, "rows": d.Rows, "cols": d.Cols}.Normalize(), true
	case models.EntityCompartment:
		d, idx := s.tree.findCompartment(path.DrawerID, id)
		if idx < 0 {
			return nil, false
		}
		c := d.Compartments[idx]
		return models.Fields{"name": c.Name, "divider_orientation": c.DividerOrientation}, true
	case models.EntitySubCompartment:
		sub := s.tree.findSubCompartment(path, id)
		if sub == nil {
			return nil, false
		}
		if sub.Item == nil {
			return models.Fields{}, true
		}
		fields, err := models.FieldsOf(*sub.Item)
		if err != nil {
			return nil, false
		}
		return fields, true
	case models.EntityCategory:
		c, ok := s.tree.categories[id]
		if !ok {
			return nil, false
		}
		fields, err := models.FieldsOf(c)
		if err != nil {
			return nil, false
		}
		delete(fields, "id")
		return fields, true
	}
	return nil, false
}

// Name returns a human-readable label of an entity, or "" if it is unknown.
func (s *State) Name(kind models.EntityKind, id string, path models.EntityPath) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case models.EntityDrawer:
		if d, ok := s.tree.drawers[id]; ok {
			return d.Name
		}
	case models.EntityCompartment:
		d, idx := s.tree.findCompartment(path.DrawerID, id)
		if idx < 0 {
			return ""
		}
		c := d.Compartments[idx]
		if c.Name != "" {
			return c.Name
		}
		return fmt.Sprintf("%s r%dc%d", d.Name, c.Row+1, c.Col+1)
	case models.EntitySubCompartment:
		if sub := s.tree.findSubCompartment(path, id); sub != nil && sub.Item != nil {
			return sub.Item.Name
		}
	case models.EntityCategory:
		if c, ok := s.tree.categories[id]; ok {
			return c.Name
		}
	}
	return ""
}
