package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/sjson"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// ImportRequest is one ingestion batch.
type ImportRequest struct {
	// Source labels where the batch came from; it is recorded on the run
	// and used as the vendor fallback.
	Source string
	// DefaultCategory applies to rows that cannot classify themselves.
	DefaultCategory string
	// Rows are the raw column-name to raw-value maps, one per source row.
	Rows []map[string]string
}

// Summary is the outcome of one batch. Attempted always equals the number
// of rows received, even when every row failed.
type Summary struct {
	RunID     uuid.UUID         `json:"runId"`
	Attempted int               `json:"attempted"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    []models.RowError `json:"errors"`
}

// RunnerOptions bound one Runner. The zero value is not usable directly;
// NewRunner fills the row limit.
type RunnerOptions struct {
	MaxRows          int
	DefaultVendor    string
	PlaceholderImage string
	ArchivePayloads  bool
}

// Runner drives the ingestion pipeline over one batch at a time. Rows are
// processed sequentially in input order; a row failure never aborts the
// batch.
type Runner struct {
	opts RunnerOptions
}

func NewRunner(opts RunnerOptions) *Runner {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 200
	}
	return &Runner{opts: opts}
}

// NewRunnerFromConfig builds a Runner from the loaded service configuration.
func NewRunnerFromConfig() *Runner {
	imp := config.Config().Import
	return NewRunner(RunnerOptions{
		MaxRows:          imp.MaxBatchRows,
		DefaultVendor:    imp.DefaultVendor,
		PlaceholderImage: imp.PlaceholderImage,
		ArchivePayloads:  imp.ArchivePayloads,
	})
}

// Run processes one batch. Empty and oversized batches are rejected before
// any row is touched. The summary is returned even when rows failed; only
// batch-level rejection returns an error.
func (r *Runner) Run(ctx context.Context, req ImportRequest) (*Summary, apperrors.Error) {
	if len(req.Rows) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(req.Rows) > r.opts.MaxRows {
		return nil, ErrBatchTooLarge.Msg(fmt.Sprintf("batch has %d rows, limit is %d", len(req.Rows), r.opts.MaxRows))
	}
	if db.DB(ctx) == nil {
		return nil, ErrIngest.Msg("no database connection in context")
	}

	runID := uuid.New()
	startedAt := time.Now().UTC()
	payloadHash := r.archivePayload(ctx, req)

	defaults := Defaults{
		Source:           req.Source,
		DefaultVendor:    r.opts.DefaultVendor,
		PlaceholderImage: r.opts.PlaceholderImage,
	}
	summary := &Summary{
		RunID:     runID,
		Attempted: len(req.Rows),
		Errors:    []models.RowError{},
	}
	for i, raw := range req.Rows {
		if err := r.processRow(ctx, raw, req.DefaultCategory, defaults); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, models.RowError{Index: i, Message: err.Error()})
			log.Ctx(ctx).Debug().Int("row", i).Err(err).Msg("row failed")
			continue
		}
		summary.Succeeded++
	}

	run := &models.ImportRun{
		RunID:           runID,
		Source:          req.Source,
		DefaultCategory: req.DefaultCategory,
		PayloadHash:     payloadHash,
		Attempted:       summary.Attempted,
		Succeeded:       summary.Succeeded,
		Failed:          summary.Failed,
		Errors:          summary.Errors,
		StartedAt:       startedAt,
		FinishedAt:      time.Now().UTC(),
	}
	if err := db.DB(ctx).CreateImportRun(ctx, run); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("run_id", runID.String()).Msg("unable to record import run")
	}

	log.Ctx(ctx).Info().
		Str("run_id", runID.String()).
		Str("source", req.Source).
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("import batch finished")
	return summary, nil
}

// processRow runs the per-row pipeline: normalize keys, resolve category,
// normalize fields, extract specs and offers, assemble, write.
func (r *Runner) processRow(ctx context.Context, raw map[string]string, defaultCategory string, d Defaults) apperrors.Error {
	row := NormalizeRow(raw)
	category := ResolveCategory(row, defaultCategory)
	f, err := NormalizeFields(ctx, row)
	if err != nil {
		return err
	}
	specs := ExtractSpecs(row, category)
	offers := ExtractOffers(ctx, row)
	rec := AssembleRecord(category, f, specs, offers, d)
	return WriteRecord(ctx, rec)
}

// WriteRecord hands an assembled record to the store, which owns the merge
// policy. Store failures surface as ErrStoreWrite so a failed write reads
// like any other row failure in the summary.
func WriteRecord(ctx context.Context, rec *models.PartUpsert) apperrors.Error {
	store := db.DB(ctx)
	if store == nil {
		return ErrStoreWrite.Msg("no database connection in context")
	}
	if _, err := store.UpsertPart(ctx, rec); err != nil {
		return ErrStoreWrite.Err(err)
	}
	return nil
}

// archivePayload canonicalizes the batch payload, stamps the request
// metadata, and stores it content-addressed by SHA-512. Best effort: any
// failure logs a warning and the import continues without a payload
// reference. A duplicate hash means the identical payload is already
// archived.
func (r *Runner) archivePayload(ctx context.Context, req ImportRequest) string {
	if !r.opts.ArchivePayloads {
		return ""
	}

	body, merr := json.Marshal(map[string]any{"rows": req.Rows})
	if merr != nil {
		log.Ctx(ctx).Warn().Err(merr).Msg("unable to encode import payload")
		return ""
	}
	if req.Source != "" {
		if stamped, err := sjson.SetBytes(body, "source", req.Source); err == nil {
			body = stamped
		}
	}
	if req.DefaultCategory != "" {
		if stamped, err := sjson.SetBytes(body, "defaultCategory", req.DefaultCategory); err == nil {
			body = stamped
		}
	}

	canonical, merr := catcommon.NormalizeJSON(body)
	if merr != nil {
		log.Ctx(ctx).Warn().Err(merr).Msg("unable to canonicalize import payload")
		return ""
	}
	hash := catcommon.HexEncodedSHA512(canonical)

	payload := &models.ImportPayload{
		Hash:        hash,
		ContentType: "application/json",
		Data:        canonical,
	}
	if err := db.DB(ctx).PutImportPayload(ctx, payload); err != nil && !errors.Is(err, dberror.ErrAlreadyExists) {
		log.Ctx(ctx).Warn().Err(err).Msg("unable to archive import payload")
	}
	return hash
}
