package ingest

import (
	"sort"
	"strings"
)

// NormalizeKey canonicalizes a column name for alias matching: trimmed,
// lowercased, with every run of spaces and slashes collapsed to a single
// underscore. Bracket and dot paths ("offers[0].price") pass through so
// flattened nested columns stay addressable.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(key))
	pendingSep := false
	for _, r := range key {
		if r == ' ' || r == '/' || r == '\t' {
			pendingSep = true
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeRow returns a copy of the row with normalized keys. When two
// source columns collapse to the same key, the one that sorts first keeps
// the slot unless its value is blank, so the result does not depend on map
// iteration order.
func NormalizeRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if existing, ok := out[nk]; ok && strings.TrimSpace(existing) != "" {
			continue
		}
		out[nk] = row[k]
	}
	return out
}

// BindHeader pairs the tokenized header with one tokenized data row,
// producing a normalized column-name → raw-value map. Short rows leave
// trailing columns unbound; extra cells are dropped.
func BindHeader(header, row []string) map[string]string {
	out := make(map[string]string, len(header))
	for i, col := range header {
		if i >= len(row) {
			break
		}
		key := NormalizeKey(col)
		if key == "" {
			continue
		}
		if existing, ok := out[key]; ok && strings.TrimSpace(existing) != "" {
			continue
		}
		out[key] = row[i]
	}
	return out
}

// RowsFromCSV tokenizes a whole CSV document into bound row maps. The first
// non-empty line is the header; blank lines are skipped. A UTF-8 byte order
// mark on the first line is dropped.
func RowsFromCSV(data string) []map[string]string {
	data = strings.TrimPrefix(data, "\ufeff")

	var header []string
	var rows []map[string]string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := TokenizeLine(line)
		if header == nil {
			header = fields
			continue
		}
		rows = append(rows, BindHeader(header, fields))
	}
	return rows
}
