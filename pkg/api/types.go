// Package api defines the wire types exchanged between the rigforge service
// and its clients.
package api

import "time"

// VendorOffer is one vendor's listing of a part.
type VendorOffer struct {
	Vendor       string   `json:"vendor"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Image        string   `json:"image,omitempty"`
	BuyLink      string   `json:"buyLink,omitempty"`
}

// Part is the canonical catalog record. Price is null when unknown, never
// zero. Approved and Usable are tri-state: omitted until a source row or an
// admin explicitly sets them.
type Part struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Name         string         `json:"name"`
	Price        *float64       `json:"price"`
	Vendor       string         `json:"vendor,omitempty"`
	Availability string         `json:"availability,omitempty"`
	InStock      bool           `json:"inStock"`
	Image        *string        `json:"image"`
	Specs        map[string]any `json:"specs,omitempty"`
	VendorList   []VendorOffer  `json:"vendorList,omitempty"`
	Approved     *bool          `json:"approved,omitempty"`
	Usable       *bool          `json:"usable,omitempty"`
	IsDeleted    bool           `json:"isDeleted"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// PartList is the paged response shape for part listings.
type PartList struct {
	Parts []Part `json:"parts"`
	Total int    `json:"total"`
}

// CategoryCount is one entry of the category index.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ImportRequest is the body of POST /imports. Rows are raw column-name to
// raw-value maps straight from the source.
type ImportRequest struct {
	Source          string              `json:"source,omitempty"`
	DefaultCategory string              `json:"defaultCategory,omitempty"`
	Rows            []map[string]string `json:"rows"`
}

// RowError records a single failed row within an otherwise accepted batch.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ImportSummary reports the outcome of one ingestion batch. Attempted counts
// every received row, including failed ones.
type ImportSummary struct {
	RunID     string     `json:"runId,omitempty"`
	Source    string     `json:"source,omitempty"`
	Attempted int        `json:"attempted"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors"`
}

// ImportRun is one archived ingestion run.
type ImportRun struct {
	RunID           string     `json:"runId"`
	Source          string     `json:"source"`
	DefaultCategory string     `json:"defaultCategory,omitempty"`
	PayloadHash     string     `json:"payloadHash,omitempty"`
	Attempted       int        `json:"attempted"`
	Succeeded       int        `json:"succeeded"`
	Failed          int        `json:"failed"`
	Errors          []RowError `json:"errors,omitempty"`
	StartedAt       time.Time  `json:"startedAt"`
	FinishedAt      time.Time  `json:"finishedAt"`
}

// ScrapeRequest is the body of POST /imports/scrape.
type ScrapeRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	MaxPages int    `json:"maxPages,omitempty"`
}

// Version reports the running server build.
type Version struct {
	Server     string `json:"server"`
	APIVersion string `json:"apiVersion"`
}
