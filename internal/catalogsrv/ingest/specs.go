package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
)

// specAliases maps spec source columns the same way fieldAliases maps the
// top-level fields.
var specAliases = map[string][]string{
	"cores":        {"cores", "core_count", "cpu_cores"},
	"threads":      {"threads", "thread_count"},
	"socket":       {"socket", "socket_type", "cpu_socket"},
	"tdp":          {"tdp", "thermal_design_power"},
	"capacity":     {"capacity", "capacity_gb", "drive_capacity"},
	"type":         {"type", "storage_type", "drive_type"},
	"rpm":          {"rpm", "spindle_speed"},
	"cache":        {"cache", "cache_mb", "cache_size", "buffer_size"},
	"form_factor":  {"form_factor", "formfactor"},
	"interface":    {"interface", "interface_type", "bus_type"},
	"price_per_gb": {"price_per_gb", "price_gb", "price_per_gigabyte"},
	"rating_count": {"rating_count", "ratings", "num_ratings", "review_count"},
}

func resolveSpec(row map[string]string, key string) string {
	for _, alias := range specAliases[key] {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
	}
	return ""
}

var (
	capacityPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([TtGg][Bb])?`)
	rpmPattern      = regexp.MustCompile(`([0-9]{3,6})\s*[Rr][Pp][Mm]`)
	decimalPattern  = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	nonDigitChars   = regexp.MustCompile(`[^0-9]`)
)

// ExtractSpecs pulls the structured technical attributes out of one
// normalized row. Every extraction is independent: a missing or unparsable
// column omits its key rather than inventing a default. Storage rows get the
// storage-specific keys on top of the general ones.
func ExtractSpecs(row map[string]string, category string) map[string]any {
	specs := map[string]any{}

	for _, key := range []string{"cores", "threads", "socket", "tdp"} {
		if v := resolveSpec(row, key); v != "" {
			specs[key] = v
		}
	}

	if category != catcommon.CategoryStorage {
		return specs
	}

	if raw := resolveSpec(row, "capacity"); raw != "" {
		specs["capacityRaw"] = raw
		if gb, ok := parseCapacityGb(raw); ok {
			specs["capacityGb"] = gb
		}
	}

	typeRaw := resolveSpec(row, "type")
	if typeRaw != "" {
		specs["storageType"] = classifyStorageType(typeRaw)
	}
	if rpm, ok := parseRpm(resolveSpec(row, "rpm")); ok {
		specs["rpm"] = rpm
	} else if rpm, ok := parseRpm(typeRaw); ok {
		specs["rpm"] = rpm
	}

	if raw := resolveSpec(row, "cache"); raw != "" {
		if m := decimalPattern.FindString(raw); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				specs["cacheMb"] = v
			}
		}
	}

	if v := resolveSpec(row, "form_factor"); v != "" {
		specs["formFactor"] = v
	}
	if v := resolveSpec(row, "interface"); v != "" {
		specs["interface"] = v
		specs["isNvme"] = strings.Contains(strings.ToLower(v), "pcie")
	}

	if raw := resolveSpec(row, "price_per_gb"); raw != "" {
		cleaned := nonPriceChars.ReplaceAllString(raw, "")
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			specs["pricePerGb"] = v
		}
	}
	if raw := resolveSpec(row, "rating_count"); raw != "" {
		digits := nonDigitChars.ReplaceAllString(raw, "")
		if v, err := strconv.Atoi(digits); err == nil {
			specs["ratingCount"] = v
		}
	}

	return specs
}

// parseCapacityGb converts a capacity string to gigabytes. A TB unit
// multiplies by 1024; a missing unit is taken as GB already.
func parseCapacityGb(raw string) (float64, bool) {
	m := capacityPattern.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(m[2], "tb") {
		v *= 1024
	}
	return v, true
}

// classifyStorageType buckets the drive-type column: ssd and hybrid by
// substring, an RPM figure means hdd, anything else passes through
// lowercased.
func classifyStorageType(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, "ssd"):
		return "ssd"
	case strings.Contains(lower, "hybrid"):
		return "hybrid"
	case rpmPattern.MatchString(raw):
		return "hdd"
	}
	return lower
}

func parseRpm(raw string) (int, bool) {
	m := rpmPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
