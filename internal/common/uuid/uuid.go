// Package uuid wraps github.com/google/uuid with UUIDv7 as the default so
// generated ids sort by creation time. Run and build identifiers use it;
// part ids are deterministic slugs and do not.
package uuid

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UUID is aliased from github.com/google/uuid.UUID.
type UUID = uuid.UUID

// Nil is the zero UUID value.
var Nil = uuid.Nil

// New returns a new UUIDv7, falling back to UUIDv4 if the time-ordered
// generator fails.
func New() UUID {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return u
}

// NewRandom returns a new UUIDv7 and any generation error.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID string.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a UUID string and panics on failure.
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// Timestamp extracts the creation time embedded in a UUIDv7.
func Timestamp(u UUID) time.Time {
	millis := binary.BigEndian.Uint64(u[0:8]) >> 16
	if millis > uint64(1<<63-1) {
		return time.UnixMilli(1<<63 - 1)
	}
	return time.UnixMilli(int64(millis))
}

// NullUUID is a UUID that may be absent, for nullable database columns.
type NullUUID struct {
	UUID  UUID
	Valid bool
}

// Scan implements sql.Scanner.
func (n *NullUUID) Scan(src any) error {
	if src == nil {
		n.UUID, n.Valid = Nil, false
		return nil
	}
	switch v := src.(type) {
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		n.UUID, n.Valid = u, true
	case []byte:
		u, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		n.UUID, n.Valid = u, true
	default:
		return fmt.Errorf("uuid: cannot scan %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (n NullUUID) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.UUID.String(), nil
}
