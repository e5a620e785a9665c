// Package database defines the stored types of the palette store: named
// swatches a sampled reference color can be saved under and reused later.
package database

import (
	"time"

	"github.com/codyswanson/vcselect/internal/mesh"
)

// StoredSwatch is a named reference color persisted across sessions.
// Selections are never persisted; only colors are.
type StoredSwatch struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`  // normalized, unique
	Label     string     `json:"label"` // the name as the user typed it
	Color     mesh.Color `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
}
