// AngelaMos | 2026
// errors.go

package rpc

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/middleware"
)

// toAppError maps an error returned by a procedure onto the client-facing
// error taxonomy. Unrecognised errors become opaque internal errors.
func toAppError(err error) *core.AppError {
	if appErr, ok := core.AsAppError(err); ok {
		return appErr
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return core.ValidationError(core.FormatValidationError(err))
	case errors.Is(err, core.ErrInvalidInput):
		return core.ValidationError(err.Error())
	case errors.Is(err, core.ErrNotFound):
		return core.NotFoundError("resource")
	case errors.Is(err, core.ErrDuplicateKey):
		return core.DuplicateError("resource")
	case errors.Is(err, core.ErrForeignKey):
		return core.ForeignKeyError("referenced record does not exist")
	case errors.Is(err, core.ErrUnauthorized):
		return core.UnauthorizedError("")
	case errors.Is(err, core.ErrForbidden):
		return core.ForbiddenError("")
	default:
		return core.InternalError(err)
	}
}

func authorize(ctx context.Context, access Access) error {
	if access == Public {
		return nil
	}

	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		return core.UnauthorizedError("")
	}

	if access == AdminOnly && !caller.IsAdmin() {
		return core.ForbiddenError("admin role required")
	}

	return nil
}

// RequireOwner fails unless the caller is an admin or the user identified
// by ownerUserID.
func RequireOwner(ctx context.Context, ownerUserID int64) error {
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		return core.UnauthorizedError("")
	}

	if !caller.CanActFor(ownerUserID) {
		return core.ForbiddenError("cannot access another user's records")
	}

	return nil
}

// CallerFrom returns the authenticated caller or an unauthorized error.
func CallerFrom(ctx context.Context) (middleware.Caller, error) {
	caller, ok := middleware.GetCaller(ctx)
	if !ok {
		return middleware.Caller{}, core.UnauthorizedError("")
	}
	return caller, nil
}
