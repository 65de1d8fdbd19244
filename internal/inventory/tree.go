// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package inventory

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/MKhiriev/drawer-sync/models"
)

// itemCleared is the sub-compartment field that empties the slot when set to
// null.
const itemCleared = "item"

var (
	drawerProtected      = []string{"id", "rows", "cols", "compartments"}
	compartmentProtected = []string{"id", "row", "col", "row_span", "col_span", "sub_compartments"}
	categoryProtected    = []string{"id"}
)

// tree implements models.MutationHandler. Callers hold State.mu.
type tree struct {
	drawers    map[string]*models.Drawer
	categories map[string]models.Category
}

func newTree() tree {
	return tree{
		drawers:    make(map[string]*models.Drawer),
		categories: make(map[string]models.Category),
	}
}

var _ models.MutationHandler = (*tree)(nil)

func (t *tree) DrawerCreated(m models.DrawerCreated) error {
	d := cloneDrawer(m.Drawer)
	if len(d.Compartments) == 0 && d.Rows > 0 && d.Cols > 0 {
		d.Compartments = fillGrid(d.ID, d.Rows, d.Cols, nil)
	}
	sortCompartments(d.Compartments)
	t.drawers[d.ID] = &d
	return nil
}

func (t *tree) DrawerUpdated(m models.DrawerUpdated) error {
	d, ok := t.drawers[m.DrawerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDrawerNotFound, m.DrawerID)
	}

	patched, err := patch(*d, m.Fields, drawerProtected...)
	if err != nil {
		return err
	}
	patched.ID = d.ID
	patched.Rows, patched.Cols = d.Rows, d.Cols
	patched.Compartments = d.Compartments
	*d = patched
	return nil
}

func (t *tree) DrawerDeleted(m models.DrawerDeleted) error {
	delete(t.drawers, m.DrawerID)
	return nil
}

// DrawerResized rebuilds the drawer grid. With an authoritative compartment
// list the list is taken as is; otherwise compartments that no longer fit are
// dropped and every uncovered cell gets a default compartment.
func (t *tree) DrawerResized(m models.DrawerResized) error {
	if m.Rows < 1 || m.Cols < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, m.Rows, m.Cols)
	}
	d, ok := t.drawers[m.DrawerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDrawerNotFound, m.DrawerID)
	}

	var compartments []models.Compartment
	if len(m.Compartments) > 0 {
		compartments = cloneCompartments(m.Compartments)
	} else {
		kept := make([]models.Compartment, 0, len(d.Compartments))
		for _, c := range d.Compartments {
			if c.FitsWithin(m.Rows, m.Cols) {
				kept = append(kept, c)
			}
		}
		compartments = fillGrid(d.ID, m.Rows, m.Cols, kept)
	}

	sortCompartments(compartments)
	d.Rows, d.Cols = m.Rows, m.Cols
	d.Compartments = compartments
	return nil
}

func (t *tree) CompartmentUpdated(m models.CompartmentUpdated) error {
	d, idx := t.findCompartment(m.DrawerID, m.CompartmentID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCompartmentNotFound, m.CompartmentID)
	}

	current := d.Compartments[idx]
	patched, err := patch(current, m.Fields, compartmentProtected...)
	if err != nil {
		return err
	}
	patched.ID = current.ID
	patched.Row, patched.Col = current.Row, current.Col
	patched.RowSpan, patched.ColSpan = current.RowSpan, current.ColSpan
	patched.SubCompartments = current.SubCompartments
	d.Compartments[idx] = patched
	return nil
}

func (t *tree) DividersChanged(m models.DividersChanged) error {
	d, idx := t.findCompartment(m.DrawerID, m.CompartmentID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCompartmentNotFound, m.CompartmentID)
	}

	subs := cloneSubCompartments(m.SubCompartments)
	slices.SortStableFunc(subs, func(a, b models.SubCompartment) int {
		return cmp.Compare(a.Position, b.Position)
	})
	d.Compartments[idx].SubCompartments = subs
	return nil
}

func (t *tree) CompartmentsMerged(m models.CompartmentsMerged) error {
	d, ok := t.drawers[m.DrawerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDrawerNotFound, m.DrawerID)
	}

	d.Compartments = replaceCompartments(d.Compartments, m.RemovedIDs, m.Compartments)
	return nil
}

func (t *tree) CompartmentSplit(m models.CompartmentSplit) error {
	d, ok := t.drawers[m.DrawerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDrawerNotFound, m.DrawerID)
	}

	d.Compartments = replaceCompartments(d.Compartments, []string{m.RemovedID}, m.Compartments)
	return nil
}

func (t *tree) SubCompartmentUpdated(m models.SubCompartmentUpdated) error {
	path := models.EntityPath{DrawerID: m.DrawerID, CompartmentID: m.CompartmentID}
	sub := t.findSubCompartment(path, m.SubCompartmentID)
	if sub == nil {
		return fmt.Errorf("%w: %s", ErrSubCompartmentNotFound, m.SubCompartmentID)
	}

	if v, ok := m.Fields[itemCleared]; ok && v == nil {
		sub.Item = nil
		return nil
	}

	item := models.Item{}
	if sub.Item != nil {
		item = *sub.Item
	}
	patched, err := patch(item, m.Fields, itemCleared)
	if err != nil {
		return err
	}
	sub.Item = &patched
	return nil
}

func (t *tree) CategoryCreated(m models.CategoryCreated) error {
	t.categories[m.Category.ID] = m.Category
	return nil
}

func (t *tree) CategoryUpdated(m models.CategoryUpdated) error {
	c, ok := t.categories[m.CategoryID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, m.CategoryID)
	}

	patched, err := patch(c, m.Fields, categoryProtected...)
	if err != nil {
		return err
	}
	patched.ID = c.ID
	t.categories[c.ID] = patched
	return nil
}

func (t *tree) CategoryDeleted(m models.CategoryDeleted) error {
	delete(t.categories, m.CategoryID)
	return nil
}

// findCompartment locates a compartment. An empty drawerID searches every
// drawer. The returned index is -1 when nothing matches.
func (t *tree) findCompartment(drawerID, compartmentID string) (*models.Drawer, int) {
	if drawerID != "" {
		d, ok := t.drawers[drawerID]
		if !ok {
			return nil, -1
		}
		return d, compartmentIndex(d.Compartments, compartmentID)
	}

	for _, d := range t.drawers {
		if idx := compartmentIndex(d.Compartments, compartmentID); idx >= 0 {
			return d, idx
		}
	}
	return nil, -1
}

func (t *tree) findSubCompartment(path models.EntityPath, id string) *models.SubCompartment {
	visit := func(c *models.Compartment) *models.SubCompartment {
		for i := range c.SubCompartments {
			if c.SubCompartments[i].ID == id {
				return &c.SubCompartments[i]
			}
		}
		return nil
	}

	if path.CompartmentID != "" {
		d, idx := t.findCompartment(path.DrawerID, path.CompartmentID)
		if idx < 0 {
			return nil
		}
		return visit(&d.Compartments[idx])
	}

	for _, d := range t.drawers {
		if path.DrawerID != "" && d.ID != path.DrawerID {
			continue
		}
		for i := range d.Compartments {
			if sub := visit(&d.Compartments[i]); sub != nil {
				return sub
			}
		}
	}
	return nil
}

func compartmentIndex(compartments []models.Compartment, id string) int {
	return slices.IndexFunc(compartments, func(c models.Compartment) bool { return c.ID == id })
}

// replaceCompartments removes the compartments named in removed and upserts
// the incoming ones by id.
func replaceCompartments(current []models.Compartment, removed []string, incoming []models.Compartment) []models.Compartment {
	out := make([]models.Compartment, 0, len(current)+len(incoming))
	for _, c := range current {
		if slices.Contains(removed, c.ID) {
			continue
		}
		if compartmentIndex(incoming, c.ID) >= 0 {
			continue
		}
		out = append(out, c)
	}
	out = append(out, cloneCompartments(incoming)...)
	sortCompartments(out)
	return out
}

// fillGrid appends a 1x1 compartment for every cell of a rows x cols grid not
// covered by kept.
func fillGrid(drawerID string, rows, cols int, kept []models.Compartment) []models.Compartment {
	out := slices.Clone(kept)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			covered := slices.ContainsFunc(kept, func(k models.Compartment) bool { return k.Covers(r, c) })
			if covered {
				continue
			}
			out = append(out, models.Compartment{
				ID:      DefaultCompartmentID(drawerID, r, c),
				Row:     r,
				Col:     c,
				RowSpan: 1,
				ColSpan: 1,
			})
		}
	}
	return out
}

// DefaultCompartmentID is the id given to a compartment synthesized for an
// uncovered grid cell.
func DefaultCompartmentID(drawerID string, row, col int) string {
	return fmt.Sprintf("%s-r%dc%d", drawerID, row, col)
}

func sortCompartments(compartments []models.Compartment) {
	slices.SortStableFunc(compartments, func(a, b models.Compartment) int {
		if n := cmp.Compare(a.Row, b.Row); n != 0 {
			return n
		}
		return cmp.Compare(a.Col, b.Col)
	})
}

// patch overlays fields onto the JSON form of entity and decodes the result.
// Protected keys are ignored.
func patch[T any](entity T, fields models.Fields, protected ...string) (T, error) {
	current, err := models.FieldsOf(entity)
	if err != nil {
		return entity, fmt.Errorf("%w: %w", ErrPatchingEntity, err)
	}

	delta := fields.Clone()
	for _, key := range protected {
		delete(delta, key)
	}

	var out T
	if err = current.Merge(delta).Decode(&out); err != nil {
		return entity, fmt.Errorf("%w: %w", ErrPatchingEntity, err)
	}
	return out, nil
}

func cloneDrawer(d models.Drawer) models.Drawer {
	d.Compartments = cloneCompartments(d.Compartments)
	if d.UpdatedAt != nil {
		at := *d.UpdatedAt
		d.UpdatedAt = &at
	}
	return d
}

func cloneCompartments(in []models.Compartment) []models.Compartment {
	if in == nil {
		return nil
	}
	out := make([]models.Compartment, len(in))
	for i, c := range in {
		c.SubCompartments = cloneSubCompartments(c.SubCompartments)
		out[i] = c
	}
	return out
}

func cloneSubCompartments(in []models.SubCompartment) []models.SubCompartment {
	if in == nil {
		return nil
	}
	out := make([]models.SubCompartment, len(in))
	for i, s := range in {
		if s.Item != nil {
			item := *s.Item
			s.Item = &item
		}
		out[i] = s
	}
	return out
}
