// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import (
	"encoding/binary"
	"slices"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/crypto/blake2b"

	"github.com/MKhiriev/drawer-sync/models"
)

const (
	cursorSaturation = 0.65
	cursorLightness  = 0.55
)

// Projector maps a world position to screen coordinates. ok is false when
// the position is off screen.
type Projector interface {
	Project(world models.Vec3) (screen models.Vec2, ok bool)
}

// CursorColor returns the display color of userID as "#rrggbb". The same
// id always yields the same color.
func CursorColor(userID string) string {
	sum := blake2b.Sum256([]byte(userID))
	hue := float64(binary.BigEndian.Uint16(sum[:2])) / 65536 * 360
	return colorful.Hsl(hue, cursorSaturation, cursorLightness).Hex()
}

func cursorFromPresence(p models.Presence, now time.Time) models.RemoteCursor {
	return models.RemoteCursor{
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		World:         p.World,
		DrawerID:      p.DrawerID,
		CompartmentID: p.CompartmentID,
		Selection:     slices.Clone(p.Selection),
		UpdatedAt:     now,
		Color:         CursorColor(p.UserID),
	}
}

// sortedCursors copies cursors ordered by user id and projects them when a
// projector is set.
func sortedCursors(cursors map[string]models.RemoteCursor, projector Projector) []models.RemoteCursor {
	out := make([]models.RemoteCursor, 0, len(cursors))
	for _, c := range cursors {
		c.Selection = slices.Clone(c.Selection)
		c.Screen = nil
		if projector != nil {
			if screen, ok := projector.Project(c.World); ok {
				c.Screen = &screen
			}
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.RemoteCursor) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return out
}
