package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	configbinder "github.com/attestia/jobcore/pkg/jobs/support/util/configbinder"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const ModuleHTTPApplier = "http_attendance_applier"

// HTTPApplier applies scan records through the platform's attendance service
// REST API.
type HTTPApplier struct {
	cfg    *config.ServiceConfig
	client *http.Client
}

var _ Applier = (*HTTPApplier)(nil)

// NewHTTPApplier creates an HTTPApplier from the collaborator configuration.
func NewHTTPApplier(cfg *config.ServiceConfig) (*HTTPApplier, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("attendance service base URL is not configured")
	}
	timeout := 10 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &HTTPApplier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type applyRequest struct {
	EventID       string            `json:"event_id"`
	DeviceID      string            `json:"device_id"`
	BatchID       string            `json:"batch_id"`
	ScanID        string            `json:"scan_id"`
	ParticipantID string            `json:"participant_id"`
	ScannedAt     string            `json:"scanned_at,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// scanAttributes are the typed fields expected in a scan record's attribute
// map.
type scanAttributes struct {
	ParticipantID string `yaml:"participant_id"`
	ScannedAt     string `yaml:"scanned_at"`
}

// bindScanAttributes decodes a record's loosely typed attribute map. A scan
// without a participant reference cannot be applied and is rejected as an
// item-level failure.
func bindScanAttributes(record model.WorkItem) (scanAttributes, error) {
	props := make(map[string]interface{}, len(record.Attributes))
	for k, v := range record.Attributes {
		props[k] = v
	}
	var attrs scanAttributes
	if err := configbinder.BindProperties(props, &attrs); err != nil {
		return attrs, fmt.Errorf("scan '%s' has malformed attributes: %w", record.ID, err)
	}
	if attrs.ParticipantID == "" {
		return attrs, fmt.Errorf("scan '%s' is missing a participant reference", record.ID)
	}
	return attrs, nil
}

type applyResponse struct {
	RecordID string `json:"record_id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// ApplyScan implements Applier. Transport failures and 5xx responses are
// systemic; a 4xx response rejects this scan record only.
func (a *HTTPApplier) ApplyScan(ctx context.Context, target model.TargetRef, record model.WorkItem) (string, error) {
	attrs, err := bindScanAttributes(record)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(applyRequest{
		EventID:       target.EventID,
		DeviceID:      target.DeviceID,
		BatchID:       target.BatchID,
		ScanID:        record.ID,
		ParticipantID: attrs.ParticipantID,
		ScannedAt:     attrs.ScannedAt,
		Attributes:    record.Attributes,
	})
	if err != nil {
		return "", exception.NewBatchError(ModuleHTTPApplier, "failed to encode scan apply request", err, false)
	}

	url := a.cfg.BaseURL + "/v1/attendance/records"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", exception.NewBatchError(ModuleHTTPApplier, "failed to build scan apply request", err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", exception.NewSystemicError(ModuleHTTPApplier, "attendance service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exception.NewSystemicError(ModuleHTTPApplier, "failed to read attendance service response", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return "", exception.NewSystemicError(ModuleHTTPApplier,
			fmt.Sprintf("attendance service error (status %d): %s", resp.StatusCode, summarize(body)), nil)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("scan '%s' rejected (status %d): %s", record.ID, resp.StatusCode, summarize(body))
	}

	var out applyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", exception.NewBatchError(ModuleHTTPApplier, "failed to decode scan apply response", err, false)
	}

	logger.Debugf("Applied scan '%s' as attendance record '%s'", record.ID, out.RecordID)
	return out.RecordID, nil
}

// summarize extracts a short error message from a collaborator response body.
func summarize(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		return er.Message
	}
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
