// Package models defines the persistence models for the catalog service.
// JSON-typed columns are decoded into typed fields at the manager boundary.
package models

import (
	"time"
)

// VendorOffer is one vendor's listing of a part, stored inside the part's
// vendor_list JSON column.
type VendorOffer struct {
	Vendor       string   `json:"vendor"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Image        string   `json:"image,omitempty"`
	BuyLink      string   `json:"buyLink,omitempty"`
}

// Part is the canonical catalog record. Approved and Usable stay nil until
// a source row or an admin explicitly sets them; Price is nil when unknown.
type Part struct {
	ID           string         `db:"id"`
	Category     string         `db:"category"`
	Name         string         `db:"name"`
	Price        *float64       `db:"price"`
	Vendor       string         `db:"vendor"`
	Availability string         `db:"availability"`
	InStock      bool           `db:"in_stock"`
	Image        *string        `db:"image"`
	Specs        map[string]any `db:"specs"`
	VendorList   []VendorOffer  `db:"vendor_list"`
	Approved     *bool          `db:"approved"`
	Usable       *bool          `db:"usable"`
	IsDeleted    bool           `db:"is_deleted"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// PartUpsert carries one ingested record into the store. The store applies
// the merge policy: price, vendor, availability, in-stock, and the offer
// list always overwrite; name, specs, and image only fill absent values;
// category overwrites only when the new value is "storage"; approved and
// usable are written only when non-nil.
type PartUpsert struct {
	ID           string
	Category     string
	Name         string
	Price        *float64
	Vendor       string
	Availability string
	InStock      bool
	Image        *string
	Specs        map[string]any
	VendorList   []VendorOffer
	Approved     *bool
	Usable       *bool
}

// PartPatch is an admin edit. Nil fields are untouched. SetPrice and
// SetImage distinguish an explicit clear from an omitted field.
type PartPatch struct {
	Name     *string
	Category *string
	Price    *float64
	SetPrice bool
	Image    *string
	SetImage bool
	Approved *bool
	Usable   *bool
	Specs    map[string]any
}

// PartFilter selects parts for listing. Zero values do not filter.
type PartFilter struct {
	Category       string
	Vendor         string
	Approved       *bool
	Usable         *bool
	InStock        *bool
	Query          string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// CategoryCount is one entry of the category index.
type CategoryCount struct {
	Category string `db:"category"`
	Count    int    `db:"count"`
}
