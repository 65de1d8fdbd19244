// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "errors"

// ErrNotMutation is returned by [Dispatch] for presence and signaling
// messages, which do not change inventory state.
var ErrNotMutation = errors.New("message is not an inventory mutation")

// MutationHandler has one method per inventory mutation variant. Adding a
// variant to the vocabulary breaks every implementation until it is handled.
type MutationHandler interface {
	DrawerCreated(DrawerCreated) error
	DrawerUpdated(DrawerUpdated) error
	DrawerDeleted(DrawerDeleted) error
	DrawerResized(DrawerResized) error
	CompartmentUpdated(CompartmentUpdated) error
	DividersChanged(DividersChanged) error
	CompartmentsMerged(CompartmentsMerged) error
	CompartmentSplit(CompartmentSplit) error
	SubCompartmentUpdated(SubCompartmentUpdated) error
	CategoryCreated(CategoryCreated) error
	CategoryUpdated(CategoryUpdated) error
	CategoryDeleted(CategoryDeleted) error
}

// Dispatch routes msg to the matching handler method.
func Dispatch(msg SyncMessage, h MutationHandler) error {
	switch m := msg.(type) {
	case DrawerCreated:
		return h.DrawerCreated(m)
	case DrawerUpdated:
		return h.DrawerUpdated(m)
	case DrawerDeleted:
		return h.DrawerDeleted(m)
	case DrawerResized:
		return h.DrawerResized(m)
	case CompartmentUpdated:
		return h.CompartmentUpdated(m)
	case DividersChanged:
		return h.DividersChanged(m)
	case CompartmentsMerged:
		return h.CompartmentsMerged(m)
	case CompartmentSplit:
		return h.CompartmentSplit(m)
	case SubCompartmentUpdated:
		return h.SubCompartmentUpdated(m)
	case CategoryCreated:
		return h.CategoryCreated(m)
	case CategoryUpdated:
		return h.CategoryUpdated(m)
	case CategoryDeleted:
		return h.CategoryDeleted(m)
	case MembersSnapshot, MemberJoined, MemberLeft, MemberRevoked,
		SignalOffer, SignalAnswer, SignalCandidate:
		return ErrNotMutation
	default:
		return ErrUnknownMessageType
	}
}
