package uuid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIsTimeOrdered(t *testing.T) {
	a := New()
	b := New()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 7, int(a.Version()))

	ts := Timestamp(a)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestNullUUIDRoundTrip(t *testing.T) {
	u := New()

	var n NullUUID
	err := n.Scan(u.String())
	assert.NoError(t, err)
	assert.True(t, n.Valid)
	assert.Equal(t, u, n.UUID)

	v, err := n.Value()
	assert.NoError(t, err)
	assert.Equal(t, u.String(), v)

	err = n.Scan(nil)
	assert.NoError(t, err)
	assert.False(t, n.Valid)
	v, err = n.Value()
	assert.NoError(t, err)
	assert.Nil(t, v)
}
