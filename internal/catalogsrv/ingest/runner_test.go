package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
)

func newRunnerCtx(t *testing.T) context.Context {
	t.Helper()
	config.TestInit()
	db.Init()
	ctx, err := db.ConnCtx(context.Background())
	require.NoError(t, err)
	return ctx
}

func testRunner() *Runner {
	return NewRunner(RunnerOptions{
		DefaultVendor:    "catalog-import",
		PlaceholderImage: "https://placehold.test/none.png",
		ArchivePayloads:  true,
	})
}

func TestRunEndToEnd(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	summary, err := testRunner().Run(ctx, ImportRequest{
		Source:          "unit-test",
		DefaultCategory: "memory",
		Rows: []map[string]string{
			{"name": "Test RAM 16GB", "price": "$49.99", "availability": "In stock"},
		},
	})
	require.Nil(t, err)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Errors)

	part, gerr := db.DB(ctx).GetPart(ctx, "test-ram-16gb")
	require.Nil(t, gerr)
	assert.Equal(t, "memory", part.Category)
	assert.Equal(t, "Test RAM 16GB", part.Name)
	require.NotNil(t, part.Price)
	assert.InDelta(t, 49.99, *part.Price, 0.0001)
	assert.True(t, part.InStock)
	assert.Equal(t, "unit-test", part.Vendor)
	require.NotNil(t, part.Image)
	assert.Equal(t, "https://placehold.test/none.png", *part.Image)
	require.Len(t, part.VendorList, 1)
	assert.False(t, part.IsDeleted)
	assert.Nil(t, part.Approved)
	assert.Nil(t, part.Usable)
}

func TestRunBatchIsolation(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	rows := []map[string]string{
		{"name": "Part A", "price": "10"},
		{"name": "Part B", "price": "20"},
		{"name": "Part C", "price": "30"},
		{"price": "40"}, // no name
		{"name": "Part E", "price": "50"},
	}
	summary, err := testRunner().Run(ctx, ImportRequest{Source: "unit-test", DefaultCategory: "cpu", Rows: rows})
	require.Nil(t, err)

	assert.Equal(t, 5, summary.Attempted)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 3, summary.Errors[0].Index)
	assert.Contains(t, summary.Errors[0].Message, "no name")

	// The rows after the failed one were still written.
	part, gerr := db.DB(ctx).GetPart(ctx, "part-e")
	require.Nil(t, gerr)
	assert.Equal(t, "Part E", part.Name)
}

func TestRunIdempotent(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	req := ImportRequest{
		Source:          "unit-test",
		DefaultCategory: "storage",
		Rows: []map[string]string{
			{
				"name": "Seagate BarraCuda 2TB", "price": "89.99",
				"capacity": "2 TB", "type": "7200 RPM",
				"form_factor": "3.5", "interface": "SATA III",
				"availability": "In Stock",
			},
		},
	}
	r := testRunner()

	first, err := r.Run(ctx, req)
	require.Nil(t, err)
	require.Equal(t, 1, first.Succeeded)
	before, gerr := db.DB(ctx).GetPart(ctx, "seagate-barracuda-2tb")
	require.Nil(t, gerr)

	second, err := r.Run(ctx, req)
	require.Nil(t, err)
	assert.Equal(t, first.Succeeded, second.Succeeded)
	after, gerr := db.DB(ctx).GetPart(ctx, "seagate-barracuda-2tb")
	require.Nil(t, gerr)

	// Only the update timestamp may differ between the two runs.
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	before.UpdatedAt = after.UpdatedAt
	assert.Equal(t, before, after)
}

func TestRunPreservesCuration(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	req := ImportRequest{
		Source: "unit-test",
		Rows: []map[string]string{
			{"name": "Test SSD", "price": "100", "category": "storage"},
		},
	}
	r := testRunner()
	_, err := r.Run(ctx, req)
	require.Nil(t, err)

	approved := true
	usable := false
	_, uerr := db.DB(ctx).UpdatePart(ctx, "test-ssd", &models.PartPatch{Approved: &approved, Usable: &usable})
	require.Nil(t, uerr)

	// Re-ingesting the same row must not disturb the admin's flags.
	_, err = r.Run(ctx, req)
	require.Nil(t, err)

	part, gerr := db.DB(ctx).GetPart(ctx, "test-ssd")
	require.Nil(t, gerr)
	require.NotNil(t, part.Approved)
	assert.True(t, *part.Approved)
	require.NotNil(t, part.Usable)
	assert.False(t, *part.Usable)
}

func TestRunSuppliedFlagsAreWritten(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	_, err := testRunner().Run(ctx, ImportRequest{
		Source: "unit-test",
		Rows: []map[string]string{
			{"name": "Flagged Part", "category": "cpu", "approved": "yes", "usable": "no"},
		},
	})
	require.Nil(t, err)

	part, gerr := db.DB(ctx).GetPart(ctx, "flagged-part")
	require.Nil(t, gerr)
	require.NotNil(t, part.Approved)
	assert.True(t, *part.Approved)
	require.NotNil(t, part.Usable)
	assert.False(t, *part.Usable)
}

func TestRunStorageSignatureBeatsDefault(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	_, err := testRunner().Run(ctx, ImportRequest{
		Source:          "unit-test",
		DefaultCategory: "cpu",
		Rows: []map[string]string{
			{
				"name": "Samsung 990 Pro 2TB", "price": "169.99",
				"capacity": "2 TB", "type": "SSD",
				"form_factor": "M.2", "interface": "PCIe 4.0",
			},
		},
	})
	require.Nil(t, err)

	part, gerr := db.DB(ctx).GetPart(ctx, "samsung-990-pro-2tb")
	require.Nil(t, gerr)
	assert.Equal(t, "storage", part.Category)
	assert.Equal(t, 2048.0, part.Specs["capacityGb"])
	assert.Equal(t, "ssd", part.Specs["storageType"])
	assert.Equal(t, true, part.Specs["isNvme"])
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	_, err := testRunner().Run(ctx, ImportRequest{Source: "unit-test"})
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	runs, lerr := db.DB(ctx).ListImportRuns(ctx, 10)
	require.Nil(t, lerr)
	assert.Empty(t, runs)
}

func TestRunRejectsOversizedBatch(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	r := NewRunner(RunnerOptions{MaxRows: 2})
	rows := make([]map[string]string, 3)
	for i := range rows {
		rows[i] = map[string]string{"name": fmt.Sprintf("Part %d", i)}
	}
	_, err := r.Run(ctx, ImportRequest{Source: "unit-test", Rows: rows})
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	// Nothing was processed before the rejection.
	parts, lerr := db.DB(ctx).ListParts(ctx, models.PartFilter{})
	require.Nil(t, lerr)
	assert.Empty(t, parts)
	runs, lerr := db.DB(ctx).ListImportRuns(ctx, 10)
	require.Nil(t, lerr)
	assert.Empty(t, runs)
}

func TestRunRecordsImportRun(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	summary, err := testRunner().Run(ctx, ImportRequest{
		Source:          "unit-test",
		DefaultCategory: "gpu",
		Rows: []map[string]string{
			{"name": "RTX 4070", "price": "549.99"},
			{"price": "100"}, // fails, no name
		},
	})
	require.Nil(t, err)

	run, gerr := db.DB(ctx).GetImportRun(ctx, summary.RunID)
	require.Nil(t, gerr)
	assert.Equal(t, "unit-test", run.Source)
	assert.Equal(t, "gpu", run.DefaultCategory)
	assert.Equal(t, 2, run.Attempted)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
	require.Len(t, run.Errors, 1)
	assert.Equal(t, 1, run.Errors[0].Index)
	require.NotEmpty(t, run.PayloadHash)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	payload, perr := db.DB(ctx).GetImportPayload(ctx, run.PayloadHash)
	require.Nil(t, perr)
	assert.Equal(t, "unit-test", gjson.GetBytes(payload.Data, "source").String())
	assert.Equal(t, "RTX 4070", gjson.GetBytes(payload.Data, "rows.0.name").String())
}

func TestRunCSVRoundTrip(t *testing.T) {
	ctx := newRunnerCtx(t)
	defer db.DB(ctx).Close(ctx)

	csv := "Name,Price,Capacity,Type,Form Factor,Interface,Availability\n" +
		"\"WD Blue, 1TB\",54.99,1 TB,5400 RPM,3.5,SATA III,In Stock\n"
	rows := RowsFromCSV(csv)
	require.Len(t, rows, 1)

	summary, err := testRunner().Run(ctx, ImportRequest{Source: "csv-upload", Rows: rows})
	require.Nil(t, err)
	assert.Equal(t, 1, summary.Succeeded)

	part, gerr := db.DB(ctx).GetPart(ctx, "wd-blue-1tb")
	require.Nil(t, gerr)
	assert.Equal(t, "storage", part.Category)
	assert.Equal(t, 1024.0, part.Specs["capacityGb"])
	assert.Equal(t, "hdd", part.Specs["storageType"])
	assert.Equal(t, 5400.0, toFloat(part.Specs["rpm"]))
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return -1
}
