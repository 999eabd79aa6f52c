package scrape

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/common/apperrors"
)

var (
	ErrScrape apperrors.Error = apperrors.New("scrape failed").SetStatusCode(http.StatusBadGateway)

	ErrScraperNotConfigured apperrors.Error = ErrScrape.New("scraper service is not configured").SetStatusCode(http.StatusServiceUnavailable)
	ErrScrapeRequest        apperrors.Error = ErrScrape.New("invalid scrape request").SetStatusCode(http.StatusBadRequest)
	ErrScrapeUpstream       apperrors.Error = ErrScrape.New("scraper service request failed").SetExpandError(true).SetStatusCode(http.StatusBadGateway)
	ErrScrapeDecode         apperrors.Error = ErrScrape.New("scraper service returned an unreadable response").SetExpandError(true).SetStatusCode(http.StatusBadGateway)
)
