package ingest

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/common/apperrors"
)

// fieldAliases maps each canonical field to its ordered candidate columns
// (normalized keys). The first candidate with a non-blank value wins. New
// source vocabularies extend the lists, nothing else.
var fieldAliases = map[string][]string{
	"name":         {"name", "title", "product_name", "model", "offers[0].name"},
	"price":        {"price", "current_price", "price_usd", "sale_price", "offers[0].price"},
	"currency":     {"currency", "currency_code", "offers[0].currency"},
	"availability": {"availability", "stock_status", "stock", "in_stock", "offers[0].availability"},
	"vendor":       {"vendor", "seller", "merchant", "retailer", "store", "offers[0].vendor", "offers[0].seller"},
	"image":        {"image", "image_url", "img", "thumbnail", "offers[0].image"},
	"buy_link":     {"buy_link", "buy_url", "product_url", "url", "link", "offers[0].url", "offers[0].link"},
	"id":           {"id", "slug", "sku", "part_id", "identifier"},
	"approved":     {"approved", "is_approved"},
	"usable":       {"usable", "is_usable", "enabled"},
}

// Fields is one row's canonical top-level fields after alias resolution.
type Fields struct {
	ID           string
	Name         string
	PriceRaw     string
	Price        *float64
	Currency     string
	Availability string
	Vendor       string
	Image        string
	BuyLink      string
	Approved     *bool
	Usable       *bool
}

// resolveField returns the first non-blank alias match for a canonical field.
func resolveField(row map[string]string, field string) string {
	for _, key := range fieldAliases[field] {
		if v := strings.TrimSpace(row[key]); v != "" {
			return v
		}
	}
	return ""
}

// NormalizeFields resolves the canonical fields of one normalized row. Name
// is the only hard requirement; everything else degrades to its zero value.
func NormalizeFields(ctx context.Context, row map[string]string) (*Fields, apperrors.Error) {
	name := resolveField(row, "name")
	if name == "" {
		return nil, ErrMissingName
	}

	f := &Fields{
		Name:         name,
		PriceRaw:     resolveField(row, "price"),
		Currency:     resolveField(row, "currency"),
		Availability: resolveField(row, "availability"),
		Vendor:       resolveField(row, "vendor"),
		Image:        resolveField(row, "image"),
		BuyLink:      resolveField(row, "buy_link"),
	}
	f.Price = ParsePrice(ctx, f.PriceRaw)
	f.ID = DeriveID(resolveField(row, "id"), f.BuyLink, f.Name)

	if raw := resolveField(row, "approved"); raw != "" {
		if f.Approved = ParseFlag(raw); f.Approved == nil {
			log.Ctx(ctx).Warn().Str("value", raw).Msg("unrecognized approved flag, leaving unset")
		}
	}
	if raw := resolveField(row, "usable"); raw != "" {
		if f.Usable = ParseFlag(raw); f.Usable == nil {
			log.Ctx(ctx).Warn().Str("value", raw).Msg("unrecognized usable flag, leaving unset")
		}
	}
	return f, nil
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// ParsePrice cleans a raw price string and parses it as a decimal. Unknown
// stays null: empty input, unparsable text, and negative amounts all yield
// nil. Zero also yields nil since the catalog stores null, never zero.
func ParsePrice(ctx context.Context, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		log.Ctx(ctx).Warn().Str("price", raw).Msg("malformed price, storing null")
		return nil
	}
	if v == 0 {
		return nil
	}
	return &v
}

// ParseFlag parses a boolean token. Unrecognized values return nil so the
// caller can tell "not supplied" from an explicit false.
func ParseFlag(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y":
		v := true
		return &v
	case "false", "0", "no", "n":
		v := false
		return &v
	}
	return nil
}

var urlScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// DeriveID picks the part identifier: an explicit id column verbatim
// (trimmed, capped at the id length bound), else a slug of the buy link with
// its scheme stripped, else a slug of the name. The same source item always
// lands on the same identifier.
func DeriveID(explicit, buyLink, name string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		if len(v) > catcommon.PartIDMaxLength {
			v = v[:catcommon.PartIDMaxLength]
		}
		return v
	}
	if v := strings.TrimSpace(buyLink); v != "" {
		return Slugify(urlScheme.ReplaceAllString(v, ""))
	}
	return Slugify(name)
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input, collapses every run of non-alphanumerics to
// a single dash, trims dashes from both ends, and caps the result at 64
// characters.
func Slugify(s string) string {
	s = nonAlnumRun.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > catcommon.PartIDMaxLength {
		s = strings.Trim(s[:catcommon.PartIDMaxLength], "-")
	}
	return s
}
