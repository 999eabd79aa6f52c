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

func (c *Conn) CreateBuild(ctx context.Context, build *models.Build) apperrors.Error {
	if build == nil {
		return dberror.ErrInvalidInput.Msg("build is required")
	}
	if build.BuildID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("build id is required")
	}
	if build.Name == "" {
		return dberror.ErrInvalidInput.Msg("build name is required")
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.builds[build.BuildID]; ok {
		return dberror.ErrAlreadyExists.Msg("build already exists")
	}

	now := time.Now().UTC()
	stored := cloneBuild(build)
	if stored.Parts == nil {
		stored.Parts = []models.BuildPart{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	c.s.builds[build.BuildID] = stored
	return nil
}

func (c *Conn) GetBuild(ctx context.Context, buildID uuid.UUID) (*models.Build, apperrors.Error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	build, ok := c.s.builds[buildID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("build not found")
	}
	return cloneBuild(build), nil
}

func (c *Conn) ListBuilds(ctx context.Context) ([]*models.Build, apperrors.Error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	result := make([]*models.Build, 0, len(c.s.builds))
	for _, build := range c.s.builds {
		result = append(result, cloneBuild(build))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (c *Conn) UpdateBuild(ctx context.Context, build *models.Build) apperrors.Error {
	if build == nil {
		return dberror.ErrInvalidInput.Msg("build is required")
	}
	if build.BuildID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("build id is required")
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	existing, ok := c.s.builds[build.BuildID]
	if !ok {
		return dberror.ErrNotFound.Msg("build not found")
	}

	existing.Name = build.Name
	existing.Status = build.Status
	existing.Tier = build.Tier
	existing.Family = build.Family
	existing.Image = build.Image
	existing.Parts = cloneBuild(build).Parts
	if existing.Parts == nil {
		existing.Parts = []models.BuildPart{}
	}
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Conn) SetBuildParts(ctx context.Context, buildID uuid.UUID, parts []models.BuildPart) apperrors.Error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	existing, ok := c.s.builds[buildID]
	if !ok {
		return dberror.ErrNotFound.Msg("build not found")
	}

	cloned := make([]models.BuildPart, len(parts))
	for i, p := range parts {
		p.PriceOverride = cloneFloat(p.PriceOverride)
		cloned[i] = p
	}
	existing.Parts = cloned
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Conn) DeleteBuild(ctx context.Context, buildID uuid.UUID) apperrors.Error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.builds[buildID]; !ok {
		return dberror.ErrNotFound.Msg("build not found")
	}
	delete(c.s.builds, buildID)
	return nil
}
