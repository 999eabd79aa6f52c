package ingest

import (
	"strings"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
)

// categoryRule is one entry in the ordered resolution table. Rules run in
// order against the normalized row; the first to return ok decides the
// category. New source formats get a new table entry, not new control flow.
type categoryRule struct {
	name    string
	resolve func(row map[string]string, batchDefault string) (string, bool)
}

var categoryRules = []categoryRule{
	{name: "explicit_column", resolve: explicitCategory},
	{name: "storage_signature", resolve: storageSignatureCategory},
	{name: "batch_default", resolve: batchDefaultCategory},
	{name: "storage_heuristic", resolve: storageHeuristicCategory},
}

// explicitCategoryKeys name the category outright when non-empty.
var explicitCategoryKeys = []string{"category", "part_type", "component_type", "product_category"}

// storageSignature is the column set of the storage export format. A row
// carrying all four self-classifies as storage even when the batch requested
// a different default, since storage exports are the usual source of
// mislabeled batches.
var storageSignature = []string{"capacity", "type", "form_factor", "interface"}

// Column groups for the fallback heuristic.
var (
	capacityLikeKeys   = []string{"capacity", "capacity_gb", "drive_capacity"}
	driveTypeLikeKeys  = []string{"type", "storage_type", "drive_type", "rpm"}
	formFactorLikeKeys = []string{"form_factor", "formfactor"}
	interfaceLikeKeys  = []string{"interface", "interface_type", "bus_type"}
)

// ResolveCategory decides the canonical category for one row. The row must
// already have normalized keys.
func ResolveCategory(row map[string]string, batchDefault string) string {
	for _, rule := range categoryRules {
		if category, ok := rule.resolve(row, batchDefault); ok {
			return category
		}
	}
	return catcommon.CategoryUnknown
}

func explicitCategory(row map[string]string, _ string) (string, bool) {
	for _, key := range explicitCategoryKeys {
		if v := strings.TrimSpace(row[key]); v != "" {
			return strings.ToLower(v), true
		}
	}
	// "type" doubles as the storage drive-type column, so it only counts as
	// a category when its value is a recognized category label.
	if v := strings.TrimSpace(row["type"]); v != "" && catcommon.IsKnownCategory(v) {
		return strings.ToLower(v), true
	}
	return "", false
}

func storageSignatureCategory(row map[string]string, _ string) (string, bool) {
	for _, key := range storageSignature {
		if _, ok := row[key]; !ok {
			return "", false
		}
	}
	return catcommon.CategoryStorage, true
}

func batchDefaultCategory(_ map[string]string, batchDefault string) (string, bool) {
	if v := strings.TrimSpace(batchDefault); v != "" {
		return strings.ToLower(v), true
	}
	return "", false
}

func storageHeuristicCategory(row map[string]string, _ string) (string, bool) {
	if !anyKeySet(row, capacityLikeKeys) {
		return "", false
	}
	if anyKeySet(row, driveTypeLikeKeys) || anyKeySet(row, formFactorLikeKeys) || anyKeySet(row, interfaceLikeKeys) {
		return catcommon.CategoryStorage, true
	}
	return "", false
}

func anyKeySet(row map[string]string, keys []string) bool {
	for _, key := range keys {
		if strings.TrimSpace(row[key]) != "" {
			return true
		}
	}
	return false
}
