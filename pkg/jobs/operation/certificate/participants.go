package certificate

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

const ModuleParticipantSource = "http_participant_source"

// HTTPParticipantSource fetches an event's participants from the attendance
// service at submission time.
type HTTPParticipantSource struct {
	cfg    *config.ServiceConfig
	client *http.Client
}

var _ port.ParticipantSource = (*HTTPParticipantSource)(nil)

// NewHTTPParticipantSource creates an HTTPParticipantSource from the
// collaborator configuration.
func NewHTTPParticipantSource(cfg *config.ServiceConfig) (*HTTPParticipantSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("attendance service base URL is not configured")
	}
	timeout := 10 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &HTTPParticipantSource{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type participantPayload struct {
	ID                string            `json:"id"`
	AttendancePercent float64           `json:"attendance_percent"`
	Attributes        map[string]string `json:"attributes,omitempty"`
}

// FetchParticipants implements port.ParticipantSource.
func (s *HTTPParticipantSource) FetchParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	url := fmt.Sprintf("%s/v1/events/%s/participants", s.cfg.BaseURL, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, exception.NewBatchError(ModuleParticipantSource, "failed to build participants request", err, false)
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, exception.NewBatchError(ModuleParticipantSource,
			fmt.Sprintf("failed to fetch participants for event '%s'", eventID), err, false)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.NewBatchError(ModuleParticipantSource, "failed to read participants response", err, false)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, exception.NewBatchErrorf(ModuleParticipantSource,
			"participants request for event '%s' returned status %d: %s", eventID, resp.StatusCode, summarize(body))
	}

	var payload []participantPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, exception.NewBatchError(ModuleParticipantSource, "failed to decode participants response", err, false)
	}

	participants := make([]model.Participant, len(payload))
	for i, p := range payload {
		participants[i] = model.Participant{
			ID:                p.ID,
			AttendancePercent: p.AttendancePercent,
			Attributes:        p.Attributes,
		}
	}
	return participants, nil
}
