package ingest

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
)

// Defaults carries the request-scoped fallbacks applied at assembly time.
type Defaults struct {
	// Source labels where the batch came from ("newegg-scrape", "manual").
	// Used as the vendor fallback before DefaultVendor.
	Source string
	// DefaultVendor is the last-resort vendor label.
	DefaultVendor string
	// PlaceholderImage is stamped on parts whose row had no image.
	PlaceholderImage string
}

var offerKeyPattern = regexp.MustCompile(`^offers\[([0-9]+)\]\.(.+)$`)

// ExtractOffers parses the flattened offer groups of one row
// (offers[0].price, offers[0].vendor, ...) into vendor offers ordered by
// group index. Rows without offer columns return nil.
func ExtractOffers(ctx context.Context, row map[string]string) []models.VendorOffer {
	groups := map[int]map[string]string{}
	for key, value := range row {
		m := offerKeyPattern.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if groups[idx] == nil {
			groups[idx] = map[string]string{}
		}
		groups[idx][m[2]] = value
	}
	if len(groups) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(groups))
	for idx := range groups {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	offers := make([]models.VendorOffer, 0, len(indexes))
	for _, idx := range indexes {
		g := groups[idx]
		offers = append(offers, models.VendorOffer{
			Vendor:       firstSet(g, "vendor", "seller", "merchant"),
			Price:        ParsePrice(ctx, firstSet(g, "price", "sale_price")),
			Currency:     firstSet(g, "currency"),
			Availability: firstSet(g, "availability", "stock_status", "stock"),
			Image:        firstSet(g, "image", "image_url"),
			BuyLink:      firstSet(g, "url", "link", "buy_link"),
		})
	}
	return offers
}

func firstSet(m map[string]string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(m[key]); v != "" {
			return v
		}
	}
	return ""
}

// AssembleRecord combines the resolved category, normalized fields,
// extracted specs, and offer list into one store-ready upsert record. The
// canonical price is the lowest offer price, falling back to the top-level
// price; a row without offer columns gets a single offer synthesized from
// its top-level fields.
func AssembleRecord(category string, f *Fields, specs map[string]any, offers []models.VendorOffer, d Defaults) *models.PartUpsert {
	availability, inStock := ResolveAvailability(f.Availability, offerAvailabilities(offers))

	vendor := f.Vendor
	if vendor == "" {
		vendor = d.Source
	}
	if vendor == "" {
		vendor = d.DefaultVendor
	}

	if len(offers) == 0 {
		offers = []models.VendorOffer{{
			Vendor:       vendor,
			Price:        f.Price,
			Currency:     f.Currency,
			Availability: f.Availability,
			Image:        f.Image,
			BuyLink:      f.BuyLink,
		}}
	}
	for i := range offers {
		if offers[i].Vendor == "" {
			offers[i].Vendor = vendor
		}
	}

	price := lowestOfferPrice(offers)
	if price == nil {
		price = f.Price
	}

	image := f.Image
	if image == "" {
		image = d.PlaceholderImage
	}
	var imagePtr *string
	if image != "" {
		imagePtr = &image
	}

	return &models.PartUpsert{
		ID:           f.ID,
		Category:     category,
		Name:         f.Name,
		Price:        price,
		Vendor:       vendor,
		Availability: availability,
		InStock:      inStock,
		Image:        imagePtr,
		Specs:        specs,
		VendorList:   offers,
		Approved:     f.Approved,
		Usable:       f.Usable,
	}
}

func offerAvailabilities(offers []models.VendorOffer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.Availability)
	}
	return out
}

func lowestOfferPrice(offers []models.VendorOffer) *float64 {
	var lowest *float64
	for _, o := range offers {
		if o.Price == nil {
			continue
		}
		if lowest == nil || *o.Price < *lowest {
			v := *o.Price
			lowest = &v
		}
	}
	return lowest
}
