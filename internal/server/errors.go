package server

import (
	"errors"
	"net/http"

	"github.com/jordan/portfolio-studio/internal/db"
	"github.com/jordan/portfolio-studio/internal/draft"
	"github.com/jordan/portfolio-studio/internal/export"
	"github.com/jordan/portfolio-studio/internal/publish"
	"github.com/jordan/portfolio-studio/internal/regen"
	"github.com/jordan/portfolio-studio/internal/schemas"
	"github.com/jordan/portfolio-studio/internal/slugs"
)

// HTTPStatus maps domain errors to HTTP status codes. Validation failures
// are 400, availability conflicts 409, upstream failures 502; anything
// unrecognized is a 500.
func HTTPStatus(err error) int {
	var (
		unknownPath   *draft.ErrUnknownPath
		typeMismatch  *draft.ErrTypeMismatch
		outOfRange    *draft.ErrIndexOutOfRange
		badSection    *draft.ErrUnknownSection
		schemaErr     *schemas.ValidationError
		regenInput    *regen.ErrInvalidInput
		regenPending  *regen.ErrRequestPending
		regenFailed   *regen.ErrGenerationFailed
		slugConflict  *slugs.ErrConflict
		notCommit     *slugs.ErrNotCommittable
		draftDirty    *publish.ErrDraftDirty
		opPending     *publish.ErrOperationPending
		saveFailed    *publish.ErrSaveFailed
		publishFailed *publish.ErrPublishFailed
		exportErr     *export.Error
	)

	switch {
	case errors.As(err, &unknownPath),
		errors.As(err, &typeMismatch),
		errors.As(err, &outOfRange),
		errors.As(err, &badSection),
		errors.As(err, &schemaErr),
		errors.As(err, &regenInput):
		return http.StatusBadRequest
	case errors.As(err, &slugConflict),
		errors.As(err, &notCommit),
		errors.As(err, &draftDirty),
		errors.As(err, &opPending),
		errors.As(err, &regenPending):
		return http.StatusConflict
	case errors.As(err, &regenFailed),
		errors.As(err, &saveFailed),
		errors.As(err, &publishFailed),
		errors.As(err, &exportErr):
		return http.StatusBadGateway
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
