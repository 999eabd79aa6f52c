// Package scrape is the client for the external scraping service. It fetches
// listing pages, tolerates the service's loose response shapes, and flattens
// listings into the ingestion pipeline's row format.
package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	jsonitor "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// Client talks to the scraper service. One client serializes its requests
// through a politeness rate limit, so handlers share a single instance.
type Client struct {
	hc         *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxPages   int
	retryDelay time.Duration
}

// Options configures a scrape client. Zero values fall back to the same
// defaults the config loader applies.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxPages          int
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	return &Client{
		hc:         &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		maxPages:   opts.MaxPages,
		retryDelay: 1 * time.Second,
	}
}

// NewFromConfig builds a client from the loaded scraper configuration.
func NewFromConfig() *Client {
	sc := config.Config().Scraper
	return New(Options{
		BaseURL:           sc.BaseURL,
		UserAgent:         sc.UserAgent,
		Timeout:           sc.GetRequestTimeoutOrDefault(),
		RequestsPerMinute: sc.RequestsPerMinute,
		MaxPages:          sc.MaxPages,
	})
}

// Configured reports whether a scraper endpoint is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// FetchListings queries the scraper and returns the flattened rows of every
// fetched page. maxPages bounds the fan-in for this call and is clamped to
// the configured page limit; zero means the configured limit. Fetching stops
// early at the first empty page.
func (c *Client) FetchListings(ctx context.Context, query, category string, maxPages int) ([]map[string]string, apperrors.Error) {
	if !c.Configured() {
		return nil, ErrScraperNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrScrapeRequest.Msg("query is required")
	}

	pages := c.maxPages
	if maxPages > 0 && maxPages < pages {
		pages = maxPages
	}

	var rows []map[string]string
	for page := 1; page <= pages; page++ {
		listings, err := c.fetchPage(ctx, query, category, page)
		if err != nil {
			return nil, err
		}
		if len(listings) == 0 {
			break
		}
		for _, l := range listings {
			rows = append(rows, l.Row())
		}
	}

	log.Ctx(ctx).Info().Str("query", query).Int("rows", len(rows)).Msg("scrape finished")
	return rows, nil
}

func (c *Client) fetchPage(ctx context.Context, query, category string, page int) ([]*Listing, apperrors.Error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, ErrScrape.Err(err)
	}

	u, err := url.Parse(c.baseURL + "/listings")
	if err != nil {
		return nil, ErrScraperNotConfigured.Err(err)
	}
	q := u.Query()
	q.Set("q", query)
	if category != "" {
		q.Set("category", category)
	}
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	var body []byte
	rerr := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return retry.Unrecoverable(errors.Wrap(err, "build scrape request"))
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return errors.Wrapf(err, "scrape page %d", page)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrapf(err, "read scrape page %d", page)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return errors.Errorf("scraper returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.Unrecoverable(errors.Errorf("scraper returned status %d", resp.StatusCode))
		}
		body = data
		return nil
	}, retry.Attempts(3), retry.Delay(c.retryDelay), retry.DelayType(retry.BackOffDelay), retry.Context(ctx))
	if rerr != nil {
		log.Ctx(ctx).Error().Err(rerr).Int("page", page).Msg("scrape request failed")
		return nil, ErrScrapeUpstream.Err(rerr)
	}

	return decodeListings(body)
}

// decodeListings accepts both response shapes the scraper is known to
// produce: a wrapped object with a listings array, or a bare array.
func decodeListings(body []byte) ([]*Listing, apperrors.Error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrScrapeDecode
	}

	root := gjson.ParseBytes(body)
	arr := root
	if root.IsObject() {
		arr = root.Get("listings")
		if !arr.Exists() {
			return nil, ErrScrapeDecode.Msg("response has no listings array")
		}
	}
	if !arr.IsArray() {
		return nil, ErrScrapeDecode.Msg("listings is not an array")
	}

	var listings []*Listing
	var derr error
	arr.ForEach(func(_, item gjson.Result) bool {
		m := map[string]any{}
		if err := json.Unmarshal([]byte(item.Raw), &m); err != nil {
			derr = errors.Wrap(err, "decode listing object")
			return false
		}
		l, err := decodeListing(m)
		if err != nil {
			derr = err
			return false
		}
		listings = append(listings, l)
		return true
	})
	if derr != nil {
		return nil, ErrScrapeDecode.Err(derr)
	}
	return listings, nil
}
