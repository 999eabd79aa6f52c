package memdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
)

// UpsertPart applies the same merge policy as the PostgreSQL backend: direct
// fields always overwrite; name, specs, and image fill only absent values;
// category is overwritten only when the incoming value is "storage"; the
// curation flags are written only when carried; is_deleted is never touched.
func (c *Conn) UpsertPart(ctx context.Context, part *models.PartUpsert) (*models.Part, apperrors.Error) {
	if part == nil {
		return nil, dberror.ErrInvalidInput.Msg("part is required")
	}
	if part.ID == "" {
		return nil, dberror.ErrMissingPartID
	}
	if len(part.ID) > catcommon.PartIDMaxLength {
		return nil, dberror.ErrInvalidInput.Msg("part id too long")
	}
	if part.Price != nil && *part.Price <= 0 {
		return nil, dberror.ErrInvalidInput.Msg("part violates a catalog constraint")
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := c.s.parts[part.ID]
	if !ok {
		stored := &models.Part{
			ID:           part.ID,
			Category:     part.Category,
			Name:         part.Name,
			Price:        cloneFloat(part.Price),
			Vendor:       part.Vendor,
			Availability: part.Availability,
			InStock:      part.InStock,
			Image:        cloneString(part.Image),
			Specs:        cloneSpecs(part.Specs),
			VendorList:   cloneOffers(part.VendorList),
			Approved:     cloneBool(part.Approved),
			Usable:       cloneBool(part.Usable),
			IsDeleted:    false,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if stored.Specs == nil {
			stored.Specs = map[string]any{}
		}
		if stored.VendorList == nil {
			stored.VendorList = []models.VendorOffer{}
		}
		c.s.parts[part.ID] = stored
		return clonePart(stored), nil
	}

	existing.Price = cloneFloat(part.Price)
	existing.Vendor = part.Vendor
	existing.Availability = part.Availability
	existing.InStock = part.InStock
	existing.VendorList = cloneOffers(part.VendorList)
	if existing.VendorList == nil {
		existing.VendorList = []models.VendorOffer{}
	}
	if existing.Name == "" {
		existing.Name = part.Name
	}
	if len(existing.Specs) == 0 {
		existing.Specs = cloneSpecs(part.Specs)
		if existing.Specs == nil {
			existing.Specs = map[string]any{}
		}
	}
	if existing.Image == nil {
		existing.Image = cloneString(part.Image)
	}
	switch {
	case part.Category == catcommon.CategoryStorage:
		existing.Category = part.Category
	case existing.Category == "":
		existing.Category = part.Category
	}
	if part.Approved != nil {
		existing.Approved = cloneBool(part.Approved)
	}
	if part.Usable != nil {
		existing.Usable = cloneBool(part.Usable)
	}
	existing.UpdatedAt = now

	return clonePart(existing), nil
}

// GetPart returns the stored record, including soft-deleted ones.
func (c *Conn) GetPart(ctx context.Context, id string) (*models.Part, apperrors.Error) {
	if id == "" {
		return nil, dberror.ErrMissingPartID
	}

	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	part, ok := c.s.parts[id]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("part not found")
	}
	return clonePart(part), nil
}

func matchesFilter(p *models.Part, filter models.PartFilter) bool {
	if !filter.IncludeDeleted && p.IsDeleted {
		return false
	}
	if filter.Category != "" && p.Category != filter.Category {
		return false
	}
	if filter.Vendor != "" && p.Vendor != filter.Vendor {
		return false
	}
	if filter.Approved != nil && (p.Approved == nil || *p.Approved != *filter.Approved) {
		return false
	}
	if filter.Usable != nil && (p.Usable == nil || *p.Usable != *filter.Usable) {
		return false
	}
	if filter.InStock != nil && p.InStock != *filter.InStock {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.ID), q) {
			return false
		}
	}
	return true
}

// ListParts returns parts matching the filter, ordered by name then id.
func (c *Conn) ListParts(ctx context.Context, filter models.PartFilter) ([]*models.Part, apperrors.Error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	var result []*models.Part
	for _, p := range c.s.parts {
		if matchesFilter(p, filter) {
			result = append(result, clonePart(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdatePart applies an admin edit with the same field semantics as the
// PostgreSQL backend.
func (c *Conn) UpdatePart(ctx context.Context, id string, patch *models.PartPatch) (*models.Part, apperrors.Error) {
	if id == "" {
		return nil, dberror.ErrMissingPartID
	}
	if patch == nil {
		return nil, dberror.ErrInvalidInput.Msg("no fields to update")
	}
	hasField := patch.Name != nil || patch.Category != nil || patch.SetPrice || patch.SetImage ||
		patch.Approved != nil || patch.Usable != nil || patch.Specs != nil
	if !hasField {
		return nil, dberror.ErrInvalidInput.Msg("no fields to update")
	}
	if patch.SetPrice && patch.Price != nil && *patch.Price <= 0 {
		return nil, dberror.ErrInvalidInput.Msg("part violates a catalog constraint")
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	part, ok := c.s.parts[id]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("part not found")
	}

	if patch.Name != nil {
		part.Name = *patch.Name
	}
	if patch.Category != nil {
		part.Category = *patch.Category
	}
	if patch.SetPrice {
		part.Price = cloneFloat(patch.Price)
	}
	if patch.SetImage {
		part.Image = cloneString(patch.Image)
	}
	if patch.Approved != nil {
		part.Approved = cloneBool(patch.Approved)
	}
	if patch.Usable != nil {
		part.Usable = cloneBool(patch.Usable)
	}
	if patch.Specs != nil {
		if part.Specs == nil {
			part.Specs = map[string]any{}
		}
		for k, v := range patch.Specs {
			part.Specs[k] = v
		}
	}
	part.UpdatedAt = time.Now().UTC()

	return clonePart(part), nil
}

// SoftDeletePart marks the part deleted without removing the record.
func (c *Conn) SoftDeletePart(ctx context.Context, id string) apperrors.Error {
	if id == "" {
		return dberror.ErrMissingPartID
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	part, ok := c.s.parts[id]
	if !ok {
		return dberror.ErrNotFound.Msg("part not found")
	}
	part.IsDeleted = true
	part.UpdatedAt = time.Now().UTC()
	return nil
}

// ListCategories returns the distinct categories of live parts with counts.
func (c *Conn) ListCategories(ctx context.Context) ([]models.CategoryCount, apperrors.Error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range c.s.parts {
		if p.IsDeleted {
			continue
		}
		counts[p.Category]++
	}

	result := make([]models.CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, models.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })

	return result, nil
}
