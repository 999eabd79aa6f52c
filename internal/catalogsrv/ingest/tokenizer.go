// Package ingest converts heterogeneous external part listings into canonical
// catalog records and merges them into the store without touching
// administrator-set curation state. The pipeline runs per row:
// tokenize/bind (CSV only) → resolve category → normalize fields → extract
// specs → resolve availability → assemble → upsert. Rows fail one at a time;
// a batch always produces a summary.
package ingest

import "strings"

// TokenizeLine splits one comma-separated line into its fields. A field may
// be wrapped in double quotes; inside a quoted field a doubled quote is one
// literal quote and commas are literal. Malformed quoting never fails: the
// remainder of the line becomes part of the current field and the result is
// returned as-is.
func TokenizeLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case inQuotes:
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				cur.WriteByte(ch)
			}
		case ch == '"' && cur.Len() == 0:
			inQuotes = true
		case ch == ',':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, cur.String())

	return fields
}
