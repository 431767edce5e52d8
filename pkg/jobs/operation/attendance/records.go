package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
)

const ModuleScanRecordSource = "http_scan_record_source"

// HTTPScanRecordSource fetches a device batch's uploaded scan records from
// the attendance service at submission time.
type HTTPScanRecordSource struct {
	cfg    *config.ServiceConfig
	client *http.Client
}

var _ port.ScanRecordSource = (*HTTPScanRecordSource)(nil)

// NewHTTPScanRecordSource creates an HTTPScanRecordSource from the
// collaborator configuration.
func NewHTTPScanRecordSource(cfg *config.ServiceConfig) (*HTTPScanRecordSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("attendance service base URL is not configured")
	}
	timeout := 10 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &HTTPScanRecordSource{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type scanRecordPayload struct {
	ScanID     string            `json:"scan_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// FetchScanRecords implements port.ScanRecordSource.
func (s *HTTPScanRecordSource) FetchScanRecords(ctx context.Context, deviceID, batchID string) ([]model.WorkItem, error) {
	url := fmt.Sprintf("%s/v1/devices/%s/batches/%s/scans", s.cfg.BaseURL, deviceID, batchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, exception.NewBatchError(ModuleScanRecordSource, "failed to build scan records request", err, false)
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, exception.NewBatchError(ModuleScanRecordSource,
			fmt.Sprintf("failed to fetch scans for device '%s' batch '%s'", deviceID, batchID), err, false)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.NewBatchError(ModuleScanRecordSource, "failed to read scan records response", err, false)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, exception.NewBatchErrorf(ModuleScanRecordSource,
			"scan records request for device '%s' batch '%s' returned status %d: %s",
			deviceID, batchID, resp.StatusCode, summarize(body))
	}

	var payload []scanRecordPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, exception.NewBatchError(ModuleScanRecordSource, "failed to decode scan records response", err, false)
	}

	items := make([]model.WorkItem, len(payload))
	for i, rec := range payload {
		items[i] = model.WorkItem{ID: rec.ScanID, Attributes: rec.Attributes}
	}
	return items, nil
}
