package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	export "github.com/attestia/jobcore/pkg/jobs/export"
	inmemory "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/inmemory"
	factory "github.com/attestia/jobcore/pkg/jobs/test"
)

type exportedRow struct {
	JobID   string `parquet:"name=job_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind    string `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	EventID string `parquet:"name=event_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemID  string `parquet:"name=item_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Outcome string `parquet:"name=outcome, type=BYTE_ARRAY, convertedtype=UTF8"`
	Error   string `parquet:"name=error, type=BYTE_ARRAY, convertedtype=UTF8"`
	Detail  string `parquet:"name=detail, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func newExporter(t *testing.T, registry *inmemory.Registry, compression string) *export.ResultsExporter {
	t.Helper()
	return export.NewResultsExporter(registry, &config.ExportConfig{
		OutputDir:   t.TempDir(),
		Compression: compression,
	})
}

// finishedJob stores a completed job with one success and one failure.
func finishedJob(t *testing.T, registry *inmemory.Registry) *model.Job {
	t.Helper()
	job := factory.NewTestJob(factory.NewTestItems(2), 2)
	assert.NoError(t, registry.SaveJob(context.Background(), job))
	assert.NoError(t, job.MarkAsProcessing())
	assert.NoError(t, job.ApplyBatchResults([]model.ItemResult{
		{ItemID: "item-1", Outcome: model.ItemOutcomeSuccess, Detail: "cert-1"},
		{ItemID: "item-2", Outcome: model.ItemOutcomeFailure, Error: "rejected"},
	}))
	assert.NoError(t, job.MarkAsCompleted())
	assert.NoError(t, registry.UpdateJob(context.Background(), job))
	return job
}

func TestExportWritesReadableParquet(t *testing.T) {
	registry := inmemory.NewRegistry()
	exporter := newExporter(t, registry, "snappy")
	job := finishedJob(t, registry)

	path, err := exporter.Export(context.Background(), job.ID)
	assert.NoError(t, err)
	assert.Equal(t, "job-"+job.ID+"-results.parquet", filepath.Base(path))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	source := buffer.NewBufferFileFromBytes(data)
	pr, err := reader.NewParquetReader(source, new(exportedRow), 1)
	assert.NoError(t, err)
	defer pr.ReadStop()

	assert.Equal(t, int64(2), pr.GetNumRows())

	rows := make([]exportedRow, 2)
	assert.NoError(t, pr.Read(&rows))
	assert.Equal(t, job.ID, rows[0].JobID)
	assert.Equal(t, "item-1", rows[0].ItemID)
	assert.Equal(t, "SUCCESS", rows[0].Outcome)
	assert.Equal(t, "cert-1", rows[0].Detail)
	assert.Equal(t, "item-2", rows[1].ItemID)
	assert.Equal(t, "FAILURE", rows[1].Outcome)
	assert.Equal(t, "rejected", rows[1].Error)
}

func TestExportRejectsRunningJob(t *testing.T) {
	registry := inmemory.NewRegistry()
	exporter := newExporter(t, registry, "snappy")

	job := factory.NewTestJob(factory.NewTestItems(1), 1)
	assert.NoError(t, registry.SaveJob(context.Background(), job))

	_, err := exporter.Export(context.Background(), job.ID)
	assert.ErrorIs(t, err, model.ErrInvalidJobState)
}

func TestExportUnknownJob(t *testing.T) {
	registry := inmemory.NewRegistry()
	exporter := newExporter(t, registry, "snappy")

	_, err := exporter.Export(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestExportEmptyResults(t *testing.T) {
	registry := inmemory.NewRegistry()
	exporter := newExporter(t, registry, "none")

	// A cancelled job with no processed items still exports an empty file.
	job := factory.NewTestJob(factory.NewTestItems(2), 2)
	assert.NoError(t, registry.SaveJob(context.Background(), job))
	assert.NoError(t, job.MarkAsProcessing())
	assert.NoError(t, job.MarkAsCancelled())
	assert.NoError(t, registry.UpdateJob(context.Background(), job))

	path, err := exporter.Export(context.Background(), job.ID)
	assert.NoError(t, err)

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportRejectsUnknownCompression(t *testing.T) {
	registry := inmemory.NewRegistry()
	exporter := newExporter(t, registry, "zstd")
	job := finishedJob(t, registry)

	_, err := exporter.Export(context.Background(), job.ID)
	assert.Error(t, err)
}
