package catcommon

import "strings"

// Category labels used across the catalog. Ingestion may produce labels
// outside this set; these are the ones the rest of the system gives meaning
// to.
const (
	CategoryCPU         = "cpu"
	CategoryGPU         = "gpu"
	CategoryMotherboard = "motherboard"
	CategoryMemory      = "memory"
	CategoryStorage     = "storage"
	CategoryPSU         = "psu"
	CategoryCase        = "case"
	CategoryCooler      = "cooler"
	CategoryMonitor     = "monitor"
	CategoryUnknown     = "unknown"
)

var knownCategories = map[string]bool{
	CategoryCPU:         true,
	CategoryGPU:         true,
	CategoryMotherboard: true,
	CategoryMemory:      true,
	CategoryStorage:     true,
	CategoryPSU:         true,
	CategoryCase:        true,
	CategoryCooler:      true,
	CategoryMonitor:     true,
}

// IsKnownCategory reports whether the label is one the system reasons
// about. Unknown labels are stored as-is.
func IsKnownCategory(label string) bool {
	return knownCategories[strings.ToLower(strings.TrimSpace(label))]
}

// PartIDMaxLength bounds derived part identifiers.
const PartIDMaxLength = 64
