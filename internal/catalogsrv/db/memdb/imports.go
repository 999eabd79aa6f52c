package memdb

import (
	"context"
	"sort"
	"time"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

func (c *Conn) CreateImportRun(ctx context.Context, run *models.ImportRun) apperrors.Error {
	if run == nil {
		return dberror.ErrInvalidInput.Msg("run is required")
	}
	if run.RunID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("run id is required")
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.runs[run.RunID]; ok {
		return dberror.ErrAlreadyExists.Msg("import run already exists")
	}

	stored := cloneRun(run)
	if stored.Errors == nil {
		stored.Errors = []models.RowError{}
	}
	c.s.runs[run.RunID] = stored
	return nil
}

func (c *Conn) GetImportRun(ctx context.Context, runID uuid.UUID) (*models.ImportRun, apperrors.Error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	run, ok := c.s.runs[runID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("import run not found")
	}
	return cloneRun(run), nil
}

func (c *Conn) ListImportRuns(ctx context.Context, limit int) ([]*models.ImportRun, apperrors.Error) {
	if limit <= 0 {
		limit = 50
	}

	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	result := make([]*models.ImportRun, 0, len(c.s.runs))
	for _, run := range c.s.runs {
		result = append(result, cloneRun(run))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (c *Conn) PutImportPayload(ctx context.Context, payload *models.ImportPayload) apperrors.Error {
	if payload == nil {
		return dberror.ErrInvalidInput.Msg("payload is required")
	}
	if payload.Hash == "" {
		return dberror.ErrInvalidInput.Msg("hash cannot be empty")
	}
	if len(payload.Hash) < 16 {
		return dberror.ErrInvalidInput.Msg("hash must be at least 16 characters long")
	}
	if len(payload.Data) == 0 {
		return dberror.ErrInvalidInput.Msg("data cannot be nil")
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.payloads[payload.Hash]; ok {
		return dberror.ErrAlreadyExists.Msg("payload already archived")
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	data := make([]byte, len(payload.Data))
	copy(data, payload.Data)

	c.s.payloads[payload.Hash] = &models.ImportPayload{
		Hash:        payload.Hash,
		ContentType: contentType,
		Data:        data,
		Compressed:  false,
		CreatedAt:   time.Now().UTC(),
	}
	return nil
}

func (c *Conn) GetImportPayload(ctx context.Context, hash string) (*models.ImportPayload, apperrors.Error) {
	if hash == "" {
		return nil, dberror.ErrInvalidInput.Msg("hash cannot be empty")
	}

	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	payload, ok := c.s.payloads[hash]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("payload not found")
	}

	out := *payload
	out.Data = make([]byte, len(payload.Data))
	copy(out.Data, payload.Data)
	return &out, nil
}
