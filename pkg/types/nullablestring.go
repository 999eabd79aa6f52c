package types

import "encoding/json"

// NullableString is a string that distinguishes three states in JSON:
// absent from the payload (Present=false), explicit null (Present=true,
// Valid=false), and a concrete value. Partial-update requests rely on the
// distinction to tell "leave unchanged" apart from "clear".
type NullableString struct {
	Value   string
	Valid   bool // Valid is false when the value is null
	Present bool // Present is true when the field appeared in the payload
}

// String returns the value, or the empty string when null.
func (ns NullableString) String() string {
	if ns.Valid {
		return ns.Value
	}
	return ""
}

// IsNil reports whether the value is null or empty.
func (ns NullableString) IsNil() bool {
	return !ns.Valid || ns.Value == ""
}

// Set assigns a value and marks it present and valid.
func (ns *NullableString) Set(value string) {
	ns.Value = value
	ns.Valid = true
	ns.Present = true
}

// MarshalJSON renders the value, or null when invalid.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.Value)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON is only invoked for fields that appear in the payload, so
// Present is always true afterwards. A JSON null leaves Valid false.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Present = true
	if len(data) == 0 || string(data) == "null" {
		ns.Value = ""
		ns.Valid = false
		return nil
	}
	ns.Valid = true
	return json.Unmarshal(data, &ns.Value)
}

// NullableStringFrom returns a present, valid NullableString holding s.
func NullableStringFrom(s string) NullableString {
	return NullableString{Value: s, Valid: true, Present: true}
}

// NullString returns a present, null NullableString.
func NullString() NullableString {
	return NullableString{Present: true}
}

var _ json.Marshaler = &NullableString{}
var _ json.Unmarshaler = &NullableString{}
var _ Nullable = &NullableString{}
