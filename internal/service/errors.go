package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitty/internal/middleware"
	"github.com/mmynk/splitty/internal/models"
)

var errAuthRequired = errors.New("authentication required")

// ownerFrom returns the authenticated owner or an Unauthenticated error.
func ownerFrom(ctx context.Context) (string, error) {
	ownerID := middleware.GetOwnerID(ctx)
	if ownerID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return ownerID, nil
}

// toConnectError maps core and storage errors onto Connect codes. Anything
// unrecognized is logged and reported as Internal.
func toConnectError(ctx context.Context, op string, err error) error {
	var (
		connectErr *connect.Error
		validation *models.ValidationError
		notFound   *models.NotFoundError
	)
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, validation)
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, notFound)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	}

	slog.ErrorContext(ctx, op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}
