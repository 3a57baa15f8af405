package services

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shipsense/power-estimation/internal/estimation"
	"github.com/shipsense/power-estimation/internal/ingest"
	"github.com/shipsense/power-estimation/internal/models"
)

// toStatus maps domain failures onto gRPC status codes.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, ingest.ErrMissingColumn),
		errors.Is(err, ingest.ErrMalformedCell),
		errors.Is(err, models.ErrShapeMismatch),
		errors.Is(err, models.ErrDuplicateIndex):
		code = codes.InvalidArgument
	case errors.Is(err, ingest.ErrSourceUnreadable):
		code = codes.NotFound
	case errors.Is(err, estimation.ErrArtifactLoad):
		code = codes.FailedPrecondition
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
