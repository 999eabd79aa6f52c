package types

import "encoding/json"

// NullableFloat64 is a float64 with the same three-state JSON semantics as
// NullableString. Prices use it so a partial update can carry an explicit
// null meaning "price unknown" without colliding with "field not sent".
type NullableFloat64 struct {
	Value   float64
	Valid   bool
	Present bool
}

// Float64 returns the value, or zero when null.
func (nf NullableFloat64) Float64() float64 {
	if nf.Valid {
		return nf.Value
	}
	return 0
}

// Ptr returns the value as a pointer, or nil when null.
func (nf NullableFloat64) Ptr() *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Value
	return &v
}

// IsNil reports whether the value is null.
func (nf NullableFloat64) IsNil() bool {
	return !nf.Valid
}

// Set assigns a value and marks it present and valid.
func (nf *NullableFloat64) Set(value float64) {
	nf.Value = value
	nf.Valid = true
	nf.Present = true
}

// MarshalJSON renders the number, or null when invalid.
func (nf NullableFloat64) MarshalJSON() ([]byte, error) {
	if nf.Valid {
		return json.Marshal(nf.Value)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON marks the field present; a JSON null leaves Valid false.
func (nf *NullableFloat64) UnmarshalJSON(data []byte) error {
	nf.Present = true
	if len(data) == 0 || string(data) == "null" {
		nf.Value = 0
		nf.Valid = false
		return nil
	}
	nf.Valid = true
	return json.Unmarshal(data, &nf.Value)
}

// NullableFloat64From returns a present, valid NullableFloat64 holding v.
func NullableFloat64From(v float64) NullableFloat64 {
	return NullableFloat64{Value: v, Valid: true, Present: true}
}

// NullFloat64 returns a present, null NullableFloat64.
func NullFloat64() NullableFloat64 {
	return NullableFloat64{Present: true}
}

var _ json.Marshaler = &NullableFloat64{}
var _ json.Unmarshaler = &NullableFloat64{}
var _ Nullable = &NullableFloat64{}
