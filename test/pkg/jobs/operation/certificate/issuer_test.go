package certificate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	certificate "github.com/attestia/jobcore/pkg/jobs/operation/certificate"
	exception "github.com/attestia/jobcore/pkg/jobs/support/util/exception"
)

var issuerTarget = model.TargetRef{EventID: "evt-1", TemplateID: "tpl-1", CertificateType: "attendance"}

func newIssuer(t *testing.T, handler http.HandlerFunc) *certificate.HTTPIssuer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	issuer, err := certificate.NewHTTPIssuer(&config.ServiceConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	assert.NoError(t, err)
	return issuer
}

func TestIssueCertificate(t *testing.T) {
	issuer := newIssuer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/certificates", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "evt-1", req["event_id"])
		assert.Equal(t, "p-1", req["participant_id"])
		assert.Equal(t, "tpl-1", req["template_id"])

		_ = json.NewEncoder(w).Encode(map[string]string{"certificate_id": "cert-42"})
	})

	id, err := issuer.IssueCertificate(context.Background(), issuerTarget, model.WorkItem{ID: "p-1"})
	assert.NoError(t, err)
	assert.Equal(t, "cert-42", id)
}

func TestIssueCertificateRejectionIsItemLevel(t *testing.T) {
	issuer := newIssuer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "participant not registered"})
	})

	_, err := issuer.IssueCertificate(context.Background(), issuerTarget, model.WorkItem{ID: "p-1"})
	assert.Error(t, err)
	assert.False(t, exception.IsSystemic(err))
	assert.Contains(t, err.Error(), "participant not registered")
}

func TestIssueCertificateServerErrorIsSystemic(t *testing.T) {
	issuer := newIssuer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := issuer.IssueCertificate(context.Background(), issuerTarget, model.WorkItem{ID: "p-1"})
	assert.Error(t, err)
	assert.True(t, exception.IsSystemic(err))
}

func TestIssueCertificateUnreachableServiceIsSystemic(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	issuer, err := certificate.NewHTTPIssuer(&config.ServiceConfig{BaseURL: server.URL})
	assert.NoError(t, err)
	server.Close()

	_, err = issuer.IssueCertificate(context.Background(), issuerTarget, model.WorkItem{ID: "p-1"})
	assert.Error(t, err)
	assert.True(t, exception.IsSystemic(err))
}

func TestIssueCertificateEmptyIDIsItemLevel(t *testing.T) {
	issuer := newIssuer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := issuer.IssueCertificate(context.Background(), issuerTarget, model.WorkItem{ID: "p-1"})
	assert.Error(t, err)
	assert.False(t, exception.IsSystemic(err))
}

func TestNewHTTPIssuerRequiresBaseURL(t *testing.T) {
	_, err := certificate.NewHTTPIssuer(&config.ServiceConfig{})
	assert.Error(t, err)
}

func TestFetchParticipants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events/evt-1/participants", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "p-1", "attendance_percent": 95.5, "attributes": map[string]string{"email": "a@example.com"}},
			{"id": "p-2", "attendance_percent": 40},
		})
	}))
	t.Cleanup(server.Close)

	source, err := certificate.NewHTTPParticipantSource(&config.ServiceConfig{BaseURL: server.URL})
	assert.NoError(t, err)

	participants, err := source.FetchParticipants(context.Background(), "evt-1")
	assert.NoError(t, err)
	assert.Len(t, participants, 2)
	assert.Equal(t, "p-1", participants[0].ID)
	assert.Equal(t, 95.5, participants[0].AttendancePercent)
	assert.Equal(t, "a@example.com", participants[0].Attributes["email"])
}

func TestFetchParticipantsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "unknown event"})
	}))
	t.Cleanup(server.Close)

	source, err := certificate.NewHTTPParticipantSource(&config.ServiceConfig{BaseURL: server.URL})
	assert.NoError(t, err)

	_, err = source.FetchParticipants(context.Background(), "evt-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event")
}
