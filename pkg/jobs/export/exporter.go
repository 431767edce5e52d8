// Package export writes a job's per-item results to Parquet files for
// downstream reporting.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	repository "github.com/attestia/jobcore/pkg/jobs/core/domain/repository"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const moduleName = "results_exporter"

// resultRow is the Parquet schema for one exported item result.
type resultRow struct {
	JobID   string `parquet:"name=job_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind    string `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	EventID string `parquet:"name=event_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemID  string `parquet:"name=item_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Outcome string `parquet:"name=outcome, type=BYTE_ARRAY, convertedtype=UTF8"`
	Error   string `parquet:"name=error, type=BYTE_ARRAY, convertedtype=UTF8"`
	Detail  string `parquet:"name=detail, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ResultsExporter writes the item results of finished jobs to Parquet files
// under the configured output directory.
type ResultsExporter struct {
	registry repository.JobRegistry
	cfg      *config.ExportConfig
}

// NewResultsExporter creates a ResultsExporter.
func NewResultsExporter(registry repository.JobRegistry, cfg *config.ExportConfig) *ResultsExporter {
	return &ResultsExporter{registry: registry, cfg: cfg}
}

// Export writes the job's item results to a Parquet file and returns its
// path. Only terminal jobs can be exported; partial results of failed or
// cancelled jobs are included.
func (e *ResultsExporter) Export(ctx context.Context, jobID string) (string, error) {
	job, err := e.registry.FindJobByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	if !job.Status.IsTerminal() {
		return "", fmt.Errorf("%w: job '%s' is %s, only finished jobs can be exported",
			model.ErrInvalidJobState, jobID, job.Status)
	}

	codec, err := compressionCodec(e.cfg.Compression)
	if err != nil {
		return "", exception.NewBatchError(moduleName, "invalid export compression", err, false)
	}

	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return "", exception.NewBatchError(moduleName, "failed to create export directory", err, false)
	}
	path := filepath.Join(e.cfg.OutputDir, fmt.Sprintf("job-%s-results.parquet", job.ID))

	f, err := os.Create(path)
	if err != nil {
		return "", exception.NewBatchError(moduleName, fmt.Sprintf("failed to create export file '%s'", path), err, false)
	}

	if err := e.writeResults(f, job, codec); err != nil {
		result := multierror.Append(err, f.Close())
		if rmErr := os.Remove(path); rmErr != nil {
			result = multierror.Append(result, rmErr)
		}
		return "", exception.NewBatchError(moduleName, fmt.Sprintf("failed to export results of job '%s'", job.ID), result.ErrorOrNil(), false)
	}
	if err := f.Close(); err != nil {
		return "", exception.NewBatchError(moduleName, fmt.Sprintf("failed to finalize export file '%s'", path), err, false)
	}

	logger.Infof("Exported %d item results of job '%s' to %s", len(job.ItemResults), job.ID, path)
	return path, nil
}

func (e *ResultsExporter) writeResults(f *os.File, job *model.Job, codec parquet.CompressionCodec) error {
	rowGroupSize := int64(len(job.ItemResults))
	if rowGroupSize == 0 {
		rowGroupSize = 1
	}
	pw, err := writer.NewParquetWriterFromWriter(f, new(resultRow), rowGroupSize)
	if err != nil {
		return err
	}
	pw.CompressionType = codec

	for _, r := range job.ItemResults {
		row := resultRow{
			JobID:   job.ID,
			Kind:    string(job.Kind),
			EventID: job.Target.EventID,
			ItemID:  r.ItemID,
			Outcome: string(r.Outcome),
			Error:   r.Error,
			Detail:  r.Detail,
		}
		if err := pw.Write(row); err != nil {
			return err
		}
	}
	return pw.WriteStop()
}

func compressionCodec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "none":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return parquet.CompressionCodec_UNCOMPRESSED, fmt.Errorf("unsupported compression type: %s", name)
	}
}
