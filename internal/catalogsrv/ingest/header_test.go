package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"  Price  ", "price"},
		{"Form Factor", "form_factor"},
		{"price / GB", "price_gb"},
		{"Price/GB", "price_gb"},
		{"offers[0].Price", "offers[0].price"},
		{"Buy  Link", "buy_link"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), "NormalizeKey(%q)", tt.in)
	}
}

func TestNormalizeRowDeterministicCollisions(t *testing.T) {
	// "Price" and "price" collapse to the same key. The winner must not
	// depend on map iteration order: lexically first key wins unless its
	// value is blank.
	for i := 0; i < 20; i++ {
		row := NormalizeRow(map[string]string{
			"Price": "100",
			"price": "200",
			"name":  "x",
		})
		assert.Equal(t, "100", row["price"])
	}

	row := NormalizeRow(map[string]string{
		"Price": "   ",
		"price": "200",
	})
	assert.Equal(t, "200", row["price"])
}

func TestBindHeader(t *testing.T) {
	header := []string{"Name", "Price", "Form Factor"}

	row := BindHeader(header, []string{"WD Blue", "54.99", "3.5"})
	assert.Equal(t, "WD Blue", row["name"])
	assert.Equal(t, "54.99", row["price"])
	assert.Equal(t, "3.5", row["form_factor"])

	// Short row leaves trailing columns unbound.
	row = BindHeader(header, []string{"WD Blue"})
	assert.Equal(t, "WD Blue", row["name"])
	_, ok := row["price"]
	assert.False(t, ok)

	// Extra cells beyond the header are dropped.
	row = BindHeader(header, []string{"WD Blue", "54.99", "3.5", "extra"})
	assert.Len(t, row, 3)
}

func TestRowsFromCSV(t *testing.T) {
	csv := "Name,Price,Availability\r\n" +
		"\"Seagate, 2TB\",\"89.99\",In Stock\r\n" +
		"\r\n" +
		"WD Blue,54.99,Out of stock\r\n"

	rows := RowsFromCSV(csv)
	require.Len(t, rows, 2)
	assert.Equal(t, "Seagate, 2TB", rows[0]["name"])
	assert.Equal(t, "89.99", rows[0]["price"])
	assert.Equal(t, "In Stock", rows[0]["availability"])
	assert.Equal(t, "WD Blue", rows[1]["name"])
}

func TestRowsFromCSVStripsByteOrderMark(t *testing.T) {
	rows := RowsFromCSV("\uFEFFName,Price\nX,1")
	require.Len(t, rows, 1)
	assert.Equal(t, "X", rows[0]["name"])
}

func TestRowsFromCSVHeaderOnly(t *testing.T) {
	assert.Empty(t, RowsFromCSV("Name,Price\n"))
	assert.Empty(t, RowsFromCSV(""))
}
