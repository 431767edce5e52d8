package model

import (
	"errors"

	"github.com/attestia/jobcore/pkg/jobs/support/util/exception"
)

// ErrInvalidJobState is returned when an operation is attempted against a job
// whose current status does not permit it (e.g. running a non-pending job,
// cancelling a terminal job).
var ErrInvalidJobState = errors.New("invalid job state")

// ErrNothingToRetry is returned when a retry is requested for a job that has
// no failed items.
var ErrNothingToRetry = errors.New("nothing to retry: job has no failed items")

func init() {
	exception.RegisterErrorType("model.ErrInvalidJobState", ErrInvalidJobState)
	exception.RegisterErrorType("model.ErrNothingToRetry", ErrNothingToRetry)
}
