package models

import (
	"time"

	"github.com/rigforge/rigforge/internal/common/uuid"
)

// RowError records one failed row of an ingestion batch, stored inside the
// run's errors JSON column.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ImportRun is one archived ingestion batch with its outcome counts.
type ImportRun struct {
	RunID           uuid.UUID  `db:"run_id"`
	Source          string     `db:"source"`
	DefaultCategory string     `db:"default_category"`
	PayloadHash     string     `db:"payload_hash"`
	Attempted       int        `db:"attempted"`
	Succeeded       int        `db:"succeeded"`
	Failed          int        `db:"failed"`
	Errors          []RowError `db:"errors"`
	StartedAt       time.Time  `db:"started_at"`
	FinishedAt      time.Time  `db:"finished_at"`
}

// ImportPayload is a content-addressed archived batch payload. Data holds
// the canonicalized JSON, snappy-compressed when Compressed is true.
type ImportPayload struct {
	Hash        string    `db:"hash"`
	ContentType string    `db:"content_type"`
	Data        []byte    `db:"data"`
	Compressed  bool      `db:"compressed"`
	CreatedAt   time.Time `db:"created_at"`
}
