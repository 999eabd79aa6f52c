package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

func TestCreateAndGetImportRun(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	runID := uuid.New()
	run := &models.ImportRun{
		RunID:           runID,
		Source:          "newegg",
		DefaultCategory: "cpu",
		PayloadHash:     "abcdef0123456789abcdef0123456789",
		Attempted:       5,
		Succeeded:       4,
		Failed:          1,
		Errors:          []models.RowError{{Index: 3, Message: "missing name"}},
		StartedAt:       time.Now().UTC().Add(-time.Second),
		FinishedAt:      time.Now().UTC(),
	}

	err := DB(ctx).CreateImportRun(ctx, run)
	require.NoError(t, err)

	err = DB(ctx).CreateImportRun(ctx, run)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	got, err := DB(ctx).GetImportRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "newegg", got.Source)
	assert.Equal(t, 5, got.Attempted)
	assert.Equal(t, 4, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 3, got.Errors[0].Index)
	assert.Equal(t, "missing name", got.Errors[0].Message)

	_, err = DB(ctx).GetImportRun(ctx, uuid.New())
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestCreateImportRunValidation(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	err := DB(ctx).CreateImportRun(ctx, &models.ImportRun{})
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)
}

func TestListImportRuns(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		run := &models.ImportRun{
			RunID:     uuid.New(),
			Source:    "batch",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, DB(ctx).CreateImportRun(ctx, run))
	}

	runs, err := DB(ctx).ListImportRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt), "newest first")

	runs, err = DB(ctx).ListImportRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestPutAndGetImportPayload(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	payload := &models.ImportPayload{
		Hash: "0123456789abcdef0123456789abcdef",
		Data: []byte(`{"rows":[{"name":"Ryzen 5 5600"}]}`),
	}

	err := DB(ctx).PutImportPayload(ctx, payload)
	require.NoError(t, err)

	err = DB(ctx).PutImportPayload(ctx, payload)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	got, err := DB(ctx).GetImportPayload(ctx, payload.Hash)
	require.NoError(t, err)
	assert.Equal(t, payload.Hash, got.Hash)
	assert.Equal(t, "application/json", got.ContentType)
	assert.JSONEq(t, `{"rows":[{"name":"Ryzen 5 5600"}]}`, string(got.Data))

	_, err = DB(ctx).GetImportPayload(ctx, "ffffffffffffffff")
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestPutImportPayloadValidation(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	err := DB(ctx).PutImportPayload(ctx, &models.ImportPayload{Hash: "", Data: []byte("x")})
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)

	err = DB(ctx).PutImportPayload(ctx, &models.ImportPayload{Hash: "tooshort", Data: []byte("x")})
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)

	err = DB(ctx).PutImportPayload(ctx, &models.ImportPayload{Hash: "0123456789abcdef"})
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)
}
