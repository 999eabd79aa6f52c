package api

import "time"

// BuildStatus is the curation state of a build.
type BuildStatus string

const (
	BuildStatusDraft     BuildStatus = "draft"
	BuildStatusApproved  BuildStatus = "approved"
	BuildStatusPublished BuildStatus = "published"
)

// BuildPart is one line of a build's part list.
type BuildPart struct {
	PartID        string   `json:"partId"`
	Quantity      int      `json:"quantity"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`
}

// Build is a named PC configuration assembled from catalog parts.
type Build struct {
	BuildID   string      `json:"buildId"`
	Name      string      `json:"name"`
	Status    BuildStatus `json:"status"`
	Tier      string      `json:"tier,omitempty"`
	Family    string      `json:"family,omitempty"`
	Image     string      `json:"image,omitempty"`
	Parts     []BuildPart `json:"parts"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// BuildPriceLine is the priced expansion of one build part.
type BuildPriceLine struct {
	PartID       string   `json:"partId"`
	Name         string   `json:"name"`
	Quantity     int      `json:"quantity"`
	UnitPrice    *float64 `json:"unitPrice"`
	LineTotal    *float64 `json:"lineTotal"`
	Overridden   bool     `json:"overridden,omitempty"`
	PriceUnknown bool     `json:"priceUnknown,omitempty"`
}

// BuildPrice is the priced summary of a build. Lines with unknown prices are
// flagged and excluded from the total.
type BuildPrice struct {
	BuildID  string           `json:"buildId"`
	Currency string           `json:"currency,omitempty"`
	Lines    []BuildPriceLine `json:"lines"`
	Total    float64          `json:"total"`
	Complete bool             `json:"complete"`
}

// CompatIssue is one finding of the build compatibility check.
type CompatIssue struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

// CompatReport is the result of checking a build's part list.
type CompatReport struct {
	BuildID string        `json:"buildId"`
	Issues  []CompatIssue `json:"issues"`
	Clean   bool          `json:"clean"`
}
