package ingest

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/common/apperrors"
)

// Base ingestion error
var (
	ErrIngest apperrors.Error = apperrors.New("ingestion failed").SetStatusCode(http.StatusInternalServerError)
)

// Row-level errors. These never escape the batch runner; they end up in the
// batch summary's error list.
var (
	ErrMissingName apperrors.Error = ErrIngest.New("row has no name").SetStatusCode(http.StatusBadRequest)
	ErrStoreWrite  apperrors.Error = ErrIngest.New("store write failed").SetExpandError(true).SetStatusCode(http.StatusInternalServerError)
)

// Batch-level errors. These reject the whole batch before any row is
// processed.
var (
	ErrEmptyBatch    apperrors.Error = ErrIngest.New("batch has no rows").SetStatusCode(http.StatusBadRequest)
	ErrBatchTooLarge apperrors.Error = ErrIngest.New("too many rows in batch").SetExpandError(true).SetStatusCode(http.StatusBadRequest)
)
