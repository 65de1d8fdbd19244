// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// MessageType is the wire discriminator of a [SyncMessage].
type MessageType string

const (
	TypeDrawerCreated         MessageType = "drawer_created"
	TypeDrawerUpdated         MessageType = "drawer_updated"
	TypeDrawerDeleted         MessageType = "drawer_deleted"
	TypeDrawerResized         MessageType = "drawer_resized"
	TypeCompartmentUpdated    MessageType = "compartment_updated"
	TypeDividersChanged       MessageType = "dividers_changed"
	TypeCompartmentsMerged    MessageType = "compartments_merged"
	TypeCompartmentSplit      MessageType = "compartment_split"
	TypeSubCompartmentUpdated MessageType = "sub_compartment_updated"
	TypeCategoryCreated       MessageType = "category_created"
	TypeCategoryUpdated       MessageType = "category_updated"
	TypeCategoryDeleted       MessageType = "category_deleted"

	TypeMembersSnapshot MessageType = "members_snapshot"
	TypeMemberJoined    MessageType = "member_joined"
	TypeMemberLeft      MessageType = "member_left"
	TypeMemberRevoked   MessageType = "member_revoked"

	TypeSignalOffer     MessageType = "signal_offer"
	TypeSignalAnswer    MessageType = "signal_answer"
	TypeSignalCandidate MessageType = "signal_ice_candidate"
)

// SyncMessage is the closed vocabulary exchanged over the room channel.
// Only types declared in this package implement it.
type SyncMessage interface {
	MessageType() MessageType
	sealed()
}

// IsStructural reports whether t rebuilds a sub-tree with authority-assigned
// identifiers. Structural messages are never queued offline.
func (t MessageType) IsStructural() bool {
	switch t {
	case TypeDrawerResized, TypeDividersChanged, TypeCompartmentsMerged, TypeCompartmentSplit:
		return true
	}
	return false
}

// IsSignal reports whether t is a presence-mesh signaling message.
func (t MessageType) IsSignal() bool {
	return t == TypeSignalOffer || t == TypeSignalAnswer || t == TypeSignalCandidate
}

// IsPresence reports whether t changes the room roster.
func (t MessageType) IsPresence() bool {
	switch t {
	case TypeMembersSnapshot, TypeMemberJoined, TypeMemberLeft, TypeMemberRevoked:
		return true
	}
	return false
}

type DrawerCreated struct {
	Drawer Drawer `json:"drawer"`
}

type DrawerUpdated struct {
	DrawerID string `json:"drawer_id"`
	Fields   Fields `json:"fields"`
}

type DrawerDeleted struct {
	DrawerID string `json:"drawer_id"`
}

// DrawerResized changes the grid size. When Compartments is empty the
// receiver derives the new layout itself.
type DrawerResized struct {
	DrawerID     string        `json:"drawer_id"`
	Rows         int           `json:"rows"`
	Cols         int           `json:"cols"`
	Compartments []Compartment `json:"compartments,omitempty"`
}

type CompartmentUpdated struct {
	DrawerID      string `json:"drawer_id"`
	CompartmentID string `json:"compartment_id"`
	Fields        Fields `json:"fields"`
}

// DividersChanged carries the authoritative sub-compartment set after the
// divider count of a compartment changed.
type DividersChanged struct {
	DrawerID        string           `json:"drawer_id"`
	CompartmentID   string           `json:"compartment_id"`
	SubCompartments []SubCompartment `json:"sub_compartments"`
}

type CompartmentsMerged struct {
	DrawerID     string        `json:"drawer_id"`
	RemovedIDs   []string      `json:"removed_ids"`
	Compartments []Compartment `json:"compartments"`
}

type CompartmentSplit struct {
	DrawerID     string        `json:"drawer_id"`
	RemovedID    string        `json:"removed_id"`
	Compartments []Compartment `json:"compartments"`
}

type SubCompartmentUpdated struct {
	DrawerID         string `json:"drawer_id"`
	CompartmentID    string `json:"compartment_id"`
	SubCompartmentID string `json:"sub_compartment_id"`
	Fields           Fields `json:"fields"`
}

type CategoryCreated struct {
	Category Category `json:"category"`
}

type CategoryUpdated struct {
	CategoryID string `json:"category_id"`
	Fields     Fields `json:"fields"`
}

type CategoryDeleted struct {
	CategoryID string `json:"category_id"`
}

// MembersSnapshot is sent by the authority right after a connection opens.
type MembersSnapshot struct {
	Members []Member `json:"members"`
}

type MemberJoined struct {
	Member Member `json:"member"`
}

type MemberLeft struct {
	UserID string `json:"user_id"`
}

// MemberRevoked tells the room that UserID lost access.
type MemberRevoked struct {
	UserID string `json:"user_id"`
}

// SessionDescription is an SDP offer or answer.
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// ICECandidate mirrors the browser RTCIceCandidateInit shape.
type ICECandidate struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdp_mid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdp_mline_index,omitempty"`
	UsernameFragment *string `json:"username_fragment,omitempty"`
}

// Signal is relayed verbatim by the authority. Outbound signals name the
// TargetID; the authority rewrites them so inbound ones carry SenderID.
type Signal struct {
	TargetID string `json:"target_id,omitempty"`
	SenderID string `json:"sender_id,omitempty"`
}

type SignalOffer struct {
	Signal
	Description SessionDescription `json:"description"`
}

type SignalAnswer struct {
	Signal
	Description SessionDescription `json:"description"`
}

type SignalCandidate struct {
	Signal
	Candidate ICECandidate `json:"candidate"`
}

func (DrawerCreated) MessageType() MessageType         { return TypeDrawerCreated }
func (DrawerUpdated) MessageType() MessageType         { return TypeDrawerUpdated }
func (DrawerDeleted) MessageType() MessageType         { return TypeDrawerDeleted }
func (DrawerResized) MessageType() MessageType         { return TypeDrawerResized }
func (CompartmentUpdated) MessageType() MessageType    { return TypeCompartmentUpdated }
func (DividersChanged) MessageType() MessageType       { return TypeDividersChanged }
func (CompartmentsMerged) MessageType() MessageType    { return TypeCompartmentsMerged }
func (CompartmentSplit) MessageType() MessageType      { return TypeCompartmentSplit }
func (SubCompartmentUpdated) MessageType() MessageType { return TypeSubCompartmentUpdated }
func (CategoryCreated) MessageType() MessageType       { return TypeCategoryCreated }
func (CategoryUpdated) MessageType() MessageType       { return TypeCategoryUpdated }
func (CategoryDeleted) MessageType() MessageType       { return TypeCategoryDeleted }
func (MembersSnapshot) MessageType() MessageType       { return TypeMembersSnapshot }
func (MemberJoined) MessageType() MessageType          { return TypeMemberJoined }
func (MemberLeft) MessageType() MessageType            { return TypeMemberLeft }
func (MemberRevoked) MessageType() MessageType         { return TypeMemberRevoked }
func (SignalOffer) MessageType() MessageType           { return TypeSignalOffer }
func (SignalAnswer) MessageType() MessageType          { return TypeSignalAnswer }
func (SignalCandidate) MessageType() MessageType       { return TypeSignalCandidate }

func (DrawerCreated) sealed()         {}
func (DrawerUpdated) sealed()         {}
func (DrawerDeleted) sealed()         {}
func (DrawerResized) sealed()         {}
func (CompartmentUpdated) sealed()    {}
func (DividersChanged) sealed()       {}
func (CompartmentsMerged) sealed()    {}
func (CompartmentSplit) sealed()      {}
func (SubCompartmentUpdated) sealed() {}
func (CategoryCreated) sealed()       {}
func (CategoryUpdated) sealed()       {}
func (CategoryDeleted) sealed()       {}
func (MembersSnapshot) sealed()       {}
func (MemberJoined) sealed()          {}
func (MemberLeft) sealed()            {}
func (MemberRevoked) sealed()         {}
func (SignalOffer) sealed()           {}
func (SignalAnswer) sealed()          {}
func (SignalCandidate) sealed()       {}
