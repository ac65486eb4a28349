package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jordan/portfolio-studio/internal/db"
	"github.com/jordan/portfolio-studio/internal/draft"
	"github.com/jordan/portfolio-studio/internal/export"
	"github.com/jordan/portfolio-studio/internal/publish"
	"github.com/jordan/portfolio-studio/internal/regen"
	"github.com/jordan/portfolio-studio/internal/schemas"
	"github.com/jordan/portfolio-studio/internal/slugs"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown path", &draft.ErrUnknownPath{Path: "bogus"}, http.StatusBadRequest},
		{"schema violation", &schemas.ValidationError{}, http.StatusBadRequest},
		{"regen bad input", &regen.ErrInvalidInput{Field: "summary"}, http.StatusBadRequest},
		{"slug conflict", &slugs.ErrConflict{Slug: "taken"}, http.StatusConflict},
		{"not committable", &slugs.ErrNotCommittable{Candidate: "x"}, http.StatusConflict},
		{"draft dirty", &publish.ErrDraftDirty{}, http.StatusConflict},
		{"operation pending", &publish.ErrOperationPending{Operation: "save"}, http.StatusConflict},
		{"regen pending", &regen.ErrRequestPending{Field: "bio"}, http.StatusConflict},
		{"regen failed", &regen.ErrGenerationFailed{Field: "bio", Cause: errors.New("boom")}, http.StatusBadGateway},
		{"save failed", &publish.ErrSaveFailed{Cause: errors.New("boom")}, http.StatusBadGateway},
		{"publish failed", &publish.ErrPublishFailed{Cause: errors.New("boom")}, http.StatusBadGateway},
		{"export failed", &export.Error{Stage: export.StageCapture, Message: "empty"}, http.StatusBadGateway},
		{"not found", db.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", db.ErrNotFound), http.StatusNotFound},
		{"unrecognized", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatusWrappedDomainError(t *testing.T) {
	err := fmt.Errorf("while saving: %w", &publish.ErrSaveFailed{Cause: errors.New("down")})
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(err))
}
