package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, maxPages int) *Client {
	c := New(Options{
		BaseURL:           baseURL,
		UserAgent:         "rigforge-test/0",
		Timeout:           5 * time.Second,
		RequestsPerMinute: 600000,
		MaxPages:          maxPages,
	})
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchListingsWrapped(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "rigforge-test/0", r.Header.Get("User-Agent"))
		assert.Equal(t, "ssd", r.URL.Query().Get("q"))
		assert.Equal(t, "storage", r.URL.Query().Get("category"))

		if r.URL.Query().Get("page") != "1" {
			w.Write([]byte(`{"listings":[]}`))
			return
		}
		w.Write([]byte(`{"listings":[
			{"name":"SN850X 1TB","price":89.99,"category":"storage",
			 "specs":{"capacity":"1 TB","interface":"PCIe 4.0 x4"},
			 "offers":[{"vendor":"newegg","price":89.99,"availability":"In stock"}]},
			{"name":"870 EVO 1TB","price":"79.99"}
		]}`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL, 5).FetchListings(context.Background(), "ssd", "storage", 0)
	require.Nil(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "SN850X 1TB", rows[0]["name"])
	assert.Equal(t, "89.99", rows[0]["price"])
	assert.Equal(t, "1 TB", rows[0]["capacity"])
	assert.Equal(t, "newegg", rows[0]["offers[0].vendor"])
	assert.Equal(t, "In stock", rows[0]["offers[0].availability"])
	assert.Equal(t, "79.99", rows[1]["price"])

	// page 1 with rows, page 2 empty, then stop
	assert.Equal(t, int32(2), requests.Load())
}

func TestFetchListingsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"name":"Ryzen 5 7600","price":229.99}]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL, 5).FetchListings(context.Background(), "ryzen", "", 0)
	require.Nil(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ryzen 5 7600", rows[0]["name"])
}

func TestFetchListingsRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL, 1).FetchListings(context.Background(), "gpu", "", 0)
	require.Nil(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int32(2), requests.Load())
}

func TestFetchListingsClientErrorDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).FetchListings(context.Background(), "gpu", "", 0)
	require.ErrorIs(t, err, ErrScrapeUpstream)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchListingsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).FetchListings(context.Background(), "gpu", "", 0)
	assert.ErrorIs(t, err, ErrScrapeDecode)
}

func TestFetchListingsMissingListingsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).FetchListings(context.Background(), "gpu", "", 0)
	assert.ErrorIs(t, err, ErrScrapeDecode)
}

func TestFetchListingsPageClamp(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`[{"name":"endless"}]`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL, 2).FetchListings(context.Background(), "gpu", "", 10)
	require.Nil(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int32(2), requests.Load())

	requests.Store(0)
	rows, err = newTestClient(srv.URL, 5).FetchListings(context.Background(), "gpu", "", 1)
	require.Nil(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchListingsNotConfigured(t *testing.T) {
	_, err := New(Options{}).FetchListings(context.Background(), "gpu", "", 0)
	assert.ErrorIs(t, err, ErrScraperNotConfigured)
}

func TestFetchListingsEmptyQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).FetchListings(context.Background(), "   ", "", 0)
	assert.ErrorIs(t, err, ErrScrapeRequest)
}
