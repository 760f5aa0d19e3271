package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/internal/apperr"
	"github.com/mmynk/mutualaid/internal/auth"
	"github.com/mmynk/mutualaid/internal/middleware"
)

// Response metadata attached to quota rejections.
const (
	HeaderQuotaLimit = "Quota-Limit"
	HeaderQuotaCount = "Quota-Count"
	HeaderQuotaMax   = "Quota-Max"
)

var errInternal = errors.New("internal error")

// toConnectError maps an engine error to a Connect error. Typed engine
// errors keep their message; anything else is logged and hidden behind
// CodeInternal.
func toConnectError(err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.Error("Unexpected engine error", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}

	cerr := connect.NewError(codeFor(appErr.Kind), errors.New(appErr.Message))
	if appErr.Kind == apperr.KindQuotaExceeded {
		cerr.Meta().Set(HeaderQuotaLimit, appErr.Limit)
		cerr.Meta().Set(HeaderQuotaCount, strconv.Itoa(appErr.Count))
		cerr.Meta().Set(HeaderQuotaMax, strconv.Itoa(appErr.Max))
	}
	return cerr
}

func codeFor(kind apperr.Kind) connect.Code {
	switch kind {
	case apperr.KindValidation:
		return connect.CodeInvalidArgument
	case apperr.KindQuotaExceeded:
		return connect.CodeResourceExhausted
	case apperr.KindAuthorization:
		return connect.CodePermissionDenied
	case apperr.KindStateConflict:
		return connect.CodeFailedPrecondition
	case apperr.KindNotFound:
		return connect.CodeNotFound
	default:
		return connect.CodeInternal
	}
}

// callerID returns the authenticated user ID set by RequireAuth.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
