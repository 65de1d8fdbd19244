// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EntityKind names the unit of conflict detection and offline queuing.
type EntityKind string

const (
	EntityDrawer         EntityKind = "drawer"
	EntityCompartment    EntityKind = "compartment"
	EntitySubCompartment EntityKind = "sub_compartment"
	EntityCategory       EntityKind = "category"
)

// OperationKind is the CRUD verb of a queued mutation.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// Drawer is the root of the inventory hierarchy. Compartments tile a
// Rows x Cols grid; a compartment may span several cells after a merge.
type Drawer struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Rows         int           `json:"rows"`
	Cols         int           `json:"cols"`
	Compartments []Compartment `json:"compartments,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

// Compartment occupies the cells [Row, Row+RowSpan) x [Col, Col+ColSpan) of
// its drawer grid.
type Compartment struct {
	ID                 string           `json:"id"`
	Row                int              `json:"row"`
	Col                int              `json:"col"`
	RowSpan            int              `json:"row_span"`
	ColSpan            int              `json:"col_span"`
	Name               string           `json:"name,omitempty"`
	DividerOrientation string           `json:"divider_orientation,omitempty"`
	SubCompartments    []SubCompartment `json:"sub_compartments,omitempty"`
}

// Covers reports whether the compartment occupies grid cell (row, col).
func (c Compartment) Covers(row, col int) bool {
	return row >= c.Row && row < c.Row+c.span(c.RowSpan) &&
		col >= c.Col && col < c.Col+c.span(c.ColSpan)
}

// FitsWithin reports whether the whole compartment lies inside a rows x cols grid.
func (c Compartment) FitsWithin(rows, cols int) bool {
	return c.Row >= 0 && c.Col >= 0 &&
		c.Row+c.span(c.RowSpan) <= rows &&
		c.Col+c.span(c.ColSpan) <= cols
}

func (c Compartment) span(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// SubCompartment is a divider slot inside a compartment. It holds at most one
// item.
type SubCompartment struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Item     *Item  `json:"item,omitempty"`
}

// Item is the leaf of the hierarchy.
type Item struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	CategoryID string `json:"category_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Category groups items across drawers.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Member is a user present in a room.
type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// EntityPath locates a nested entity inside the drawer tree. Drawers and
// categories leave it empty.
type EntityPath struct {
	DrawerID      string `json:"drawer_id,omitempty"`
	CompartmentID string `json:"compartment_id,omitempty"`
}
