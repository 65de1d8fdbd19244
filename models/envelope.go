// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownMessageType is returned by [DecodeEnvelope] for a discriminator
// this client does not understand.
var ErrUnknownMessageType = errors.New("unknown sync message type")

// Envelope is the JSON frame exchanged over the room channel.
type Envelope struct {
	// ID identifies the frame for duplicate suppression. Optional.
	ID string `json:"id,omitempty"`
	// Type selects the payload variant.
	Type MessageType `json:"type"`
	// SenderID is stamped by the authority on relayed frames.
	SenderID string          `json:"sender_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// EncodeMessage wraps msg into an [Envelope] with the given frame id and
// returns its JSON encoding.
func EncodeMessage(id string, msg SyncMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msg.MessageType(), err)
	}

	return json.Marshal(Envelope{ID: id, Type: msg.MessageType(), Payload: payload})
}

// DecodeEnvelope parses a raw frame into its envelope and typed message.
// The envelope's SenderID is copied into inbound signaling messages that do
// not carry one in their payload.
func DecodeEnvelope(data []byte) (Envelope, SyncMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}

	msg, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return env, nil, err
	}

	switch m := msg.(type) {
	case SignalOffer:
		m.SenderID = firstNonEmpty(m.SenderID, env.SenderID)
		msg = m
	case SignalAnswer:
		m.SenderID = firstNonEmpty(m.SenderID, env.SenderID)
		msg = m
	case SignalCandidate:
		m.SenderID = firstNonEmpty(m.SenderID, env.SenderID)
		msg = m
	}

	return env, msg, nil
}

func decodePayload(t MessageType, payload json.RawMessage) (SyncMessage, error) {
	switch t {
	case TypeDrawerCreated:
		return decodeAs[DrawerCreated](t, payload)
	case TypeDrawerUpdated:
		return decodeAs[DrawerUpdated](t, payload)
	case TypeDrawerDeleted:
		return decodeAs[DrawerDeleted](t, payload)
	case TypeDrawerResized:
		return decodeAs[DrawerResized](t, payload)
	case TypeCompartmentUpdated:
		return decodeAs[CompartmentUpdated](t, payload)
	case TypeDividersChanged:
		return decodeAs[DividersChanged](t, payload)
	case TypeCompartmentsMerged:
		return decodeAs[CompartmentsMerged](t, payload)
	case TypeCompartmentSplit:
		return decodeAs[CompartmentSplit](t, payload)
	case TypeSubCompartmentUpdated:
		return decodeAs[SubCompartmentUpdated](t, payload)
	case TypeCategoryCreated:
		return decodeAs[CategoryCreated](t, payload)
	case TypeCategoryUpdated:
		return decodeAs[CategoryUpdated](t, payload)
	case TypeCategoryDeleted:
		return decodeAs[CategoryDeleted](t, payload)
	case TypeMembersSnapshot:
		return decodeAs[MembersSnapshot](t, payload)
	case TypeMemberJoined:
		return decodeAs[MemberJoined](t, payload)
	case TypeMemberLeft:
		return decodeAs[MemberLeft](t, payload)
	case TypeMemberRevoked:
		return decodeAs[MemberRevoked](t, payload)
	case TypeSignalOffer:
		return decodeAs[SignalOffer](t, payload)
	case TypeSignalAnswer:
		return decodeAs[SignalAnswer](t, payload)
	case TypeSignalCandidate:
		return decodeAs[SignalCandidate](t, payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, t)
	}
}

func decodeAs[T SyncMessage](t MessageType, payload json.RawMessage) (SyncMessage, error) {
	var msg T
	if len(payload) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return msg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
