package catalogmanager

import (
	"context"
	"errors"
	"math"

	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/pkg/api"
	"github.com/rs/zerolog/log"
)

// Price expands the part list into priced lines. The effective unit price is
// the line's override when set, else the part's canonical price. Lines whose
// effective price is unknown are flagged and left out of the total, and the
// summary is marked incomplete. Missing parts become unknown-price lines
// rather than errors.
func (bm *buildManager) Price(ctx context.Context) (*api.BuildPrice, apperrors.Error) {
	price := &api.BuildPrice{
		BuildID:  bm.build.BuildID.String(),
		Lines:    make([]api.BuildPriceLine, 0, len(bm.build.Parts)),
		Complete: true,
	}

	for _, bp := range bm.build.Parts {
		line := api.BuildPriceLine{
			PartID:   bp.PartID,
			Quantity: bp.Quantity,
		}

		part, err := db.DB(ctx).GetPart(ctx, bp.PartID)
		if err != nil {
			if !errors.Is(err, dberror.ErrNotFound) {
				log.Ctx(ctx).Error().Err(err).Str("part_id", bp.PartID).Msg("failed to load part for pricing")
				return nil, ErrUnableToLoadObject.Err(err)
			}
			part = nil
		}

		var unit *float64
		switch {
		case bp.PriceOverride != nil:
			unit = bp.PriceOverride
			line.Overridden = true
		case part != nil:
			unit = part.Price
		}

		if part != nil {
			line.Name = part.Name
			if price.Currency == "" {
				price.Currency = partCurrency(part)
			}
		}

		if unit == nil {
			line.PriceUnknown = true
			price.Complete = false
		} else {
			u := *unit
			total := roundCents(u * float64(bp.Quantity))
			line.UnitPrice = &u
			line.LineTotal = &total
			price.Total = roundCents(price.Total + total)
		}

		price.Lines = append(price.Lines, line)
	}

	return price, nil
}

// partCurrency returns the currency tag of the part's first tagged offer.
// Currency is a passthrough, there is no conversion.
func partCurrency(p *models.Part) string {
	for _, offer := range p.VendorList {
		if offer.Currency != "" {
			return offer.Currency
		}
	}
	return ""
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
