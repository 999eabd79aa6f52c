package models

import (
	"time"

	"github.com/rigforge/rigforge/internal/common/uuid"
)

// BuildPart is one line of a build's part list, stored inside the build's
// parts JSON column.
type BuildPart struct {
	PartID        string   `json:"partId"`
	Quantity      int      `json:"quantity"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`
}

// Build is a named PC configuration assembled from catalog parts.
type Build struct {
	BuildID   uuid.UUID   `db:"build_id"`
	Name      string      `db:"name"`
	Status    string      `db:"status"`
	Tier      string      `db:"tier"`
	Family    string      `db:"family"`
	Image     string      `db:"image"`
	Parts     []BuildPart `db:"parts"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}
