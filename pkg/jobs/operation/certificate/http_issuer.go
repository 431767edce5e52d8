package certificate

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
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"
)

const ModuleHTTPIssuer = "http_certificate_issuer"

// HTTPIssuer issues certificates through the platform's certificate service
// REST API.
type HTTPIssuer struct {
	cfg    *config.ServiceConfig
	client *http.Client
}

var _ Issuer = (*HTTPIssuer)(nil)

// NewHTTPIssuer creates an HTTPIssuer from the collaborator configuration.
func NewHTTPIssuer(cfg *config.ServiceConfig) (*HTTPIssuer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("certificate service base URL is not configured")
	}
	timeout := 10 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &HTTPIssuer{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type issueRequest struct {
	EventID         string            `json:"event_id"`
	ParticipantID   string            `json:"participant_id"`
	TemplateID      string            `json:"template_id"`
	CertificateType string            `json:"certificate_type,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

type issueResponse struct {
	CertificateID string `json:"certificate_id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// IssueCertificate implements Issuer. Transport failures and 5xx responses
// are systemic; a 4xx response is a rejection of this participant only.
func (i *HTTPIssuer) IssueCertificate(ctx context.Context, target model.TargetRef, participant model.WorkItem) (string, error) {
	payload, err := json.Marshal(issueRequest{
		EventID:         target.EventID,
		ParticipantID:   participant.ID,
		TemplateID:      target.TemplateID,
		CertificateType: target.CertificateType,
		Attributes:      participant.Attributes,
	})
	if err != nil {
		return "", exception.NewBatchError(ModuleHTTPIssuer, "failed to encode issuance request", err, false)
	}

	url := i.cfg.BaseURL + "/v1/certificates"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", exception.NewBatchError(ModuleHTTPIssuer, "failed to build issuance request", err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	if i.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+i.cfg.APIKey)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return "", exception.NewSystemicError(ModuleHTTPIssuer, "certificate service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exception.NewSystemicError(ModuleHTTPIssuer, "failed to read certificate service response", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return "", exception.NewSystemicError(ModuleHTTPIssuer,
			fmt.Sprintf("certificate service error (status %d): %s", resp.StatusCode, summarize(body)), nil)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("issuance rejected for participant '%s' (status %d): %s",
			participant.ID, resp.StatusCode, summarize(body))
	}

	var out issueResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", exception.NewBatchError(ModuleHTTPIssuer, "failed to decode issuance response", err, false)
	}
	if out.CertificateID == "" {
		return "", fmt.Errorf("certificate service returned no certificate ID for participant '%s'", participant.ID)
	}

	logger.Debugf("Issued certificate '%s' for participant '%s'", out.CertificateID, participant.ID)
	return out.CertificateID, nil
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
