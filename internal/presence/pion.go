// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/models"
)

const dataChannelLabel = "presence"

// NewPionFactory returns a factory of WebRTC peer connections configured
// with the ICE servers from cfg.
func NewPionFactory(cfg config.Presence) TransportFactory {
	servers := iceServers(cfg.ICEServers)

	return func(offering bool, events TransportEvents) (Transport, error) {
		pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: servers})
		if err != nil {
			return nil, fmt.Errorf("new peer connection: %w", err)
		}

		t := &pionTransport{pc: pc, events: events}
		pc.OnICECandidate(func(c *webrtc.ICECandidate) {
			if c == nil || events.OnCandidate == nil {
				return
			}
			events.OnCandidate(candidateFromPion(c.ToJSON()))
		})
		pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
			if events.OnStateChange != nil {
				events.OnStateChange(stateFromPion(s))
			}
		})

		if !offering {
			pc.OnDataChannel(func(dc *webrtc.DataChannel) {
				if dc.Label() == dataChannelLabel {
					t.bind(dc)
				}
			})
			return t, nil
		}

		// Unordered, no retransmits.
		ordered := false
		retransmits := uint16(0)
		dc, err := pc.CreateDataChannel(dataChannelLabel, &webrtc.DataChannelInit{
			Ordered:        &ordered,
			MaxRetransmits: &retransmits,
		})
		if err != nil {
			_ = pc.Close()
			return nil, fmt.Errorf("create data channel: %w", err)
		}
		t.bind(dc)
		return t, nil
	}
}

type pionTransport struct {
	pc     *webrtc.PeerConnection
	events TransportEvents

	mu sync.Mutex
	dc *webrtc.DataChannel
}

func (t *pionTransport) bind(dc *webrtc.DataChannel) {
	t.mu.Lock()
	t.dc = dc
	t.mu.Unlock()

	dc.OnOpen(func() {
		if t.events.OnOpen != nil {
			t.events.OnOpen()
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if t.events.OnMessage != nil {
			t.events.OnMessage(msg.Data)
		}
	})
}

func (t *pionTransport) CreateOffer(ctx context.Context) (models.SessionDescription, error) {
	if err := ctx.Err(); err != nil {
		return models.SessionDescription{}, err
	}
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return models.SessionDescription{}, fmt.Errorf("create offer: %w", err)
	}
	if err = t.pc.SetLocalDescription(offer); err != nil {
		return models.SessionDescription{}, fmt.Errorf("set local offer: %w", err)
	}
	return models.SessionDescription{Type: offer.Type.String(), SDP: offer.SDP}, nil
}

func (t *pionTransport) AcceptOffer(ctx context.Context, offer models.SessionDescription) (models.SessionDescription, error) {
	if err := ctx.Err(); err != nil {
		return models.SessionDescription{}, err
	}
	remote := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offer.SDP}
	if err := t.pc.SetRemoteDescription(remote); err != nil {
		return models.SessionDescription{}, fmt.Errorf("set remote offer: %w", err)
	}
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return models.SessionDescription{}, fmt.Errorf("create answer: %w", err)
	}
	if err = t.pc.SetLocalDescription(answer); err != nil {
		return models.SessionDescription{}, fmt.Errorf("set local answer: %w", err)
	}
	return models.SessionDescription{Type: answer.Type.String(), SDP: answer.SDP}, nil
}

func (t *pionTransport) AcceptAnswer(ctx context.Context, answer models.SessionDescription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	remote := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answer.SDP}
	if err := t.pc.SetRemoteDescription(remote); err != nil {
		return fmt.Errorf("set remote answer: %w", err)
	}
	return nil
}

func (t *pionTransport) AddCandidate(candidate models.ICECandidate) error {
	if t.pc.RemoteDescription() == nil {
		return ErrNoRemote
	}
	return t.pc.AddICECandidate(candidateToPion(candidate))
}

func (t *pionTransport) HasRemoteDescription() bool {
	return t.pc.RemoteDescription() != nil
}

func (t *pionTransport) Send(data []byte) error {
	t.mu.Lock()
	dc := t.dc
	t.mu.Unlock()

	if dc == nil || dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrChannelClosed
	}
	return dc.Send(data)
}

func (t *pionTransport) Close() error {
	return t.pc.Close()
}

func iceServers(urls []string) []webrtc.ICEServer {
	if len(urls) == 0 {
		return nil
	}
	return []webrtc.ICEServer{{URLs: urls}}
}

func stateFromPion(s webrtc.PeerConnectionState) TransportState {
	switch s {
	case webrtc.PeerConnectionStateConnecting:
		return TransportConnecting
	case webrtc.PeerConnectionStateConnected:
		return TransportConnected
	case webrtc.PeerConnectionStateDisconnected:
		return TransportDisconnected
	case webrtc.PeerConnectionStateFailed:
		return TransportFailed
	case webrtc.PeerConnectionStateClosed:
		return TransportClosed
	default:
		return TransportNew
	}
}

func candidateFromPion(c webrtc.ICECandidateInit) models.ICECandidate {
	return models.ICECandidate{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	}
}

func candidateToPion(c models.ICECandidate) webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	}
}
