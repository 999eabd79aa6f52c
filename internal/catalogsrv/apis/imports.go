package apis

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/h2non/filetype"
	jsonitor "github.com/json-iterator/go"
	goerrors "github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/catalogsrv/ingest"
	"github.com/rigforge/rigforge/internal/catalogsrv/scrape"
	"github.com/rigforge/rigforge/internal/common/httpx"
	"github.com/rigforge/rigforge/internal/common/uuid"
	"github.com/rigforge/rigforge/pkg/api"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// scrapeSource labels catalog writes produced by the scrape import path.
const scrapeSource = "scraper"

// importRequestSchema is the shape POST /imports accepts. Row values must
// already be strings; the pipeline owns all further interpretation.
const importRequestSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"source": {"type": "string", "maxLength": 128},
		"defaultCategory": {"type": "string", "maxLength": 64},
		"rows": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			}
		}
	},
	"required": ["rows"],
	"additionalProperties": false
}`

var importRequestSchema = jsonschema.MustCompileString("imports.json", importRequestSchemaJSON)

// importRows handles POST /imports: a JSON batch of raw rows.
func importRows(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	if r.Body == nil {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}
	if !gjson.ValidBytes(body) {
		return nil, httpx.ErrInvalidRequest("unable to parse request")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, httpx.ErrUnableToParseReqData()
	}
	if err := importRequestSchema.Validate(doc); err != nil {
		return nil, ErrInvalidRows.Err(goerrors.Wrap(err, "import request"))
	}

	var req api.ImportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, httpx.ErrUnableToParseReqData()
	}

	summary, aerr := ingest.NewRunnerFromConfig().Run(ctx, ingest.ImportRequest{
		Source:          req.Source,
		DefaultCategory: req.DefaultCategory,
		Rows:            req.Rows,
	})
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   summaryToAPI(req.Source, summary),
	}, nil
}

// importCSV handles POST /imports/csv: a raw CSV document in the body with
// source and defaultCategory as query parameters. Binary uploads are
// rejected by content sniffing before any row is parsed.
func importCSV(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	if r.Body == nil {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}
	if kind, _ := filetype.Match(body); kind != filetype.Unknown {
		return nil, httpx.ErrUnsupportedMedia("expected CSV text, got " + kind.MIME.Value)
	}

	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		source = "csv"
	}
	defaultCategory := strings.TrimSpace(r.URL.Query().Get("defaultCategory"))

	rows := ingest.RowsFromCSV(string(body))

	summary, aerr := ingest.NewRunnerFromConfig().Run(ctx, ingest.ImportRequest{
		Source:          source,
		DefaultCategory: defaultCategory,
		Rows:            rows,
	})
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   summaryToAPI(source, summary),
	}, nil
}

// importScrape handles POST /imports/scrape: fetches listings from the
// configured scraping service and feeds them through the same batch path as
// uploaded rows.
func importScrape(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &api.ScrapeRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}

	rows, aerr := scrape.NewFromConfig().FetchListings(ctx, req.Query, req.Category, req.MaxPages)
	if aerr != nil {
		return nil, aerr
	}

	summary, aerr := ingest.NewRunnerFromConfig().Run(ctx, ingest.ImportRequest{
		Source:          scrapeSource,
		DefaultCategory: req.Category,
		Rows:            rows,
	})
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   summaryToAPI(scrapeSource, summary),
	}, nil
}

func listImportRuns(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, httpx.ErrInvalidRequest("limit must be a non-negative integer")
		}
		limit = n
	}

	runs, aerr := db.DB(ctx).ListImportRuns(ctx, limit)
	if aerr != nil {
		return nil, aerr
	}

	result := make([]api.ImportRun, 0, len(runs))
	for _, run := range runs {
		result = append(result, runToAPI(run))
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   result,
	}, nil
}

func getImportRun(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		return nil, httpx.ErrInvalidRequest("invalid run id")
	}

	run, aerr := db.DB(ctx).GetImportRun(ctx, runID)
	if aerr != nil {
		if errors.Is(aerr, dberror.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, aerr
	}

	rsp := runToAPI(run)
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &rsp,
	}, nil
}

func summaryToAPI(source string, s *ingest.Summary) *api.ImportSummary {
	out := &api.ImportSummary{
		RunID:     s.RunID.String(),
		Source:    source,
		Attempted: s.Attempted,
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
		Errors:    []api.RowError{},
	}
	for _, re := range s.Errors {
		out.Errors = append(out.Errors, api.RowError{Index: re.Index, Message: re.Message})
	}
	return out
}

func runToAPI(run *models.ImportRun) api.ImportRun {
	out := api.ImportRun{
		RunID:           run.RunID.String(),
		Source:          run.Source,
		DefaultCategory: run.DefaultCategory,
		PayloadHash:     run.PayloadHash,
		Attempted:       run.Attempted,
		Succeeded:       run.Succeeded,
		Failed:          run.Failed,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
	for _, re := range run.Errors {
		out.Errors = append(out.Errors, api.RowError{Index: re.Index, Message: re.Message})
	}
	return out
}
