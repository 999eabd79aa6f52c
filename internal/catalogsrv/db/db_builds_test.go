package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

func sampleBuild() *models.Build {
	return &models.Build{
		BuildID: uuid.New(),
		Name:    "Mid-range Gaming",
		Status:  "draft",
		Tier:    "mid",
		Family:  "gaming",
		Parts: []models.BuildPart{
			{PartID: "ryzen-5-5600", Quantity: 1},
			{PartID: "rtx-4070", Quantity: 1, PriceOverride: floatPtr(499.00)},
		},
	}
}

func TestCreateAndGetBuild(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	build := sampleBuild()
	err := DB(ctx).CreateBuild(ctx, build)
	require.NoError(t, err)

	err = DB(ctx).CreateBuild(ctx, build)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	got, err := DB(ctx).GetBuild(ctx, build.BuildID)
	require.NoError(t, err)
	assert.Equal(t, "Mid-range Gaming", got.Name)
	assert.Equal(t, "draft", got.Status)
	require.Len(t, got.Parts, 2)
	require.NotNil(t, got.Parts[1].PriceOverride)
	assert.Equal(t, 499.00, *got.Parts[1].PriceOverride)

	_, err = DB(ctx).GetBuild(ctx, uuid.New())
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestCreateBuildValidation(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	err := DB(ctx).CreateBuild(ctx, &models.Build{Name: "no id"})
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)

	err = DB(ctx).CreateBuild(ctx, &models.Build{BuildID: uuid.New()})
	assert.ErrorIs(t, err, dberror.ErrInvalidInput)
}

func TestUpdateBuild(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	build := sampleBuild()
	require.NoError(t, DB(ctx).CreateBuild(ctx, build))

	build.Name = "Mid-range Gaming v2"
	build.Status = "approved"
	err := DB(ctx).UpdateBuild(ctx, build)
	require.NoError(t, err)

	got, err := DB(ctx).GetBuild(ctx, build.BuildID)
	require.NoError(t, err)
	assert.Equal(t, "Mid-range Gaming v2", got.Name)
	assert.Equal(t, "approved", got.Status)

	missing := sampleBuild()
	err = DB(ctx).UpdateBuild(ctx, missing)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestSetBuildParts(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	build := sampleBuild()
	require.NoError(t, DB(ctx).CreateBuild(ctx, build))

	err := DB(ctx).SetBuildParts(ctx, build.BuildID, []models.BuildPart{
		{PartID: "samsung-980-pro", Quantity: 2},
	})
	require.NoError(t, err)

	got, err := DB(ctx).GetBuild(ctx, build.BuildID)
	require.NoError(t, err)
	require.Len(t, got.Parts, 1)
	assert.Equal(t, "samsung-980-pro", got.Parts[0].PartID)
	assert.Equal(t, 2, got.Parts[0].Quantity)

	err = DB(ctx).SetBuildParts(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestDeleteBuild(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	build := sampleBuild()
	require.NoError(t, DB(ctx).CreateBuild(ctx, build))

	err := DB(ctx).DeleteBuild(ctx, build.BuildID)
	require.NoError(t, err)

	_, err = DB(ctx).GetBuild(ctx, build.BuildID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	err = DB(ctx).DeleteBuild(ctx, build.BuildID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestListBuilds(t *testing.T) {
	ctx := newDb()
	defer DB(ctx).Close(ctx)

	first := sampleBuild()
	require.NoError(t, DB(ctx).CreateBuild(ctx, first))

	second := sampleBuild()
	second.Name = "Budget Office"
	require.NoError(t, DB(ctx).CreateBuild(ctx, second))

	builds, err := DB(ctx).ListBuilds(ctx)
	require.NoError(t, err)
	require.Len(t, builds, 2)
}
