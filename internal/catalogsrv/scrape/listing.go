package scrape

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rigforge/rigforge/internal/catalogsrv/config"
)

// Listing is one scraped product listing. The scraper service is loose about
// shape, so everything beyond the canonical fields lands in Specs, Offers,
// or Rest and is flattened into row columns as-is.
type Listing struct {
	ID           string           `mapstructure:"id"`
	Name         string           `mapstructure:"name"`
	Category     string           `mapstructure:"category"`
	Price        any              `mapstructure:"price"`
	Currency     string           `mapstructure:"currency"`
	Availability string           `mapstructure:"availability"`
	Vendor       string           `mapstructure:"vendor"`
	Image        string           `mapstructure:"image"`
	BuyLink      string           `mapstructure:"buy_link"`
	Specs        map[string]any   `mapstructure:"specs"`
	Offers       []map[string]any `mapstructure:"offers"`
	Rest         map[string]any   `mapstructure:",remain"`
}

func decodeListing(m map[string]any) (*Listing, error) {
	var l Listing
	if err := mapstructure.Decode(m, &l); err != nil {
		return nil, errors.Wrap(err, "decode listing")
	}
	return &l, nil
}

// Row flattens the listing into the ingestion row shape: raw column name to
// raw string value, offers under `offers[i].key` paths. Canonical fields are
// written first and win any column collision with specs or leftovers.
func (l *Listing) Row() map[string]string {
	row := map[string]string{}
	put := func(k, v string) {
		if v == "" {
			return
		}
		if _, ok := row[k]; ok {
			return
		}
		row[k] = v
	}

	put("id", l.ID)
	put("name", l.Name)
	put("category", l.Category)
	put("price", stringifyValue(l.Price))
	put("currency", l.Currency)
	put("availability", l.Availability)
	put("vendor", l.Vendor)
	put("image", l.Image)
	put("buy_link", l.BuyLink)

	for i, offer := range l.Offers {
		if !config.AllowUntaggedCurrency && offerUntagged(offer) {
			continue
		}
		for k, v := range offer {
			put(fmt.Sprintf("offers[%d].%s", i, k), stringifyValue(v))
		}
	}
	for k, v := range l.Specs {
		put(k, stringifyValue(v))
	}
	for k, v := range l.Rest {
		put(k, stringifyValue(v))
	}

	return row
}

func offerUntagged(offer map[string]any) bool {
	if stringifyValue(offer["price"]) == "" {
		return false
	}
	return stringifyValue(offer["currency"]) == ""
}

// stringifyValue renders a decoded JSON value as a raw column string.
// Composite values are re-encoded as JSON; the pipeline treats columns it
// does not recognize as opaque strings.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
