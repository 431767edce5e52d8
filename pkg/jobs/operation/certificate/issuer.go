// Package certificate implements the certificate generation job operation:
// for each eligible participant it requests issuance from the platform's
// certificate service.
package certificate

import (
	"context"

	port "github.com/attestia/jobcore/pkg/jobs/core/application/port"
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// Issuer issues one certificate for one participant. Implementations must
// flag infrastructure failures as systemic errors; participant-specific
// rejections stay item-level.
type Issuer interface {
	// IssueCertificate requests a certificate and returns its ID.
	IssueCertificate(ctx context.Context, target model.TargetRef, participant model.WorkItem) (certificateID string, err error)
}

// Operation adapts an Issuer to the engine's per-item operation port.
type Operation struct {
	issuer Issuer
}

// NewOperation creates the certificate generation operation.
func NewOperation(issuer Issuer) *Operation {
	return &Operation{issuer: issuer}
}

// Kind implements port.ItemOperation.
func (o *Operation) Kind() model.JobKind {
	return model.JobKindCertificateGeneration
}

// Execute implements port.ItemOperation. The issued certificate ID is
// recorded as the item result detail.
func (o *Operation) Execute(ctx context.Context, target model.TargetRef, item model.WorkItem) (string, error) {
	return o.issuer.IssueCertificate(ctx, target, item)
}

var _ port.ItemOperation = (*Operation)(nil)
