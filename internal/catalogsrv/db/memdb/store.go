// Package memdb is the in-memory catalog store used by tests and dev mode.
// It implements the same manager semantics as the PostgreSQL backend,
// including the merge policy applied by UpsertPart. Records are cloned on
// every read and write so callers can never mutate internal state.
package memdb

import (
	"context"
	"sync"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

// Store holds the catalog in process memory.
type Store struct {
	mu       sync.RWMutex
	parts    map[string]*models.Part
	runs     map[uuid.UUID]*models.ImportRun
	payloads map[string]*models.ImportPayload
	builds   map[uuid.UUID]*models.Build
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		parts:    make(map[string]*models.Part),
		runs:     make(map[uuid.UUID]*models.ImportRun),
		payloads: make(map[string]*models.ImportPayload),
		builds:   make(map[uuid.UUID]*models.Build),
	}
}

// Conn hands out a connection view of the store. Connections are cheap;
// they all share the same underlying maps.
func (s *Store) Conn() *Conn {
	return &Conn{s: s}
}

// Conn is one request's handle on the store.
type Conn struct {
	s *Store
}

// Close is a no-op; the store owns its lifecycle.
func (c *Conn) Close(ctx context.Context) {}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneSpecs(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func cloneOffers(src []models.VendorOffer) []models.VendorOffer {
	if src == nil {
		return nil
	}
	out := make([]models.VendorOffer, len(src))
	for i, o := range src {
		o.Price = cloneFloat(o.Price)
		out[i] = o
	}
	return out
}

func clonePart(p *models.Part) *models.Part {
	out := *p
	out.Price = cloneFloat(p.Price)
	out.Image = cloneString(p.Image)
	out.Approved = cloneBool(p.Approved)
	out.Usable = cloneBool(p.Usable)
	out.Specs = cloneSpecs(p.Specs)
	out.VendorList = cloneOffers(p.VendorList)
	return &out
}

func cloneRun(r *models.ImportRun) *models.ImportRun {
	out := *r
	if r.Errors != nil {
		out.Errors = make([]models.RowError, len(r.Errors))
		copy(out.Errors, r.Errors)
	}
	return &out
}

func cloneBuild(b *models.Build) *models.Build {
	out := *b
	if b.Parts != nil {
		out.Parts = make([]models.BuildPart, len(b.Parts))
		for i, p := range b.Parts {
			p.PriceOverride = cloneFloat(p.PriceOverride)
			out.Parts[i] = p
		}
	}
	return &out
}
