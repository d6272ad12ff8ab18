package validators

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
)

// ParsePathUUID reads a chi route parameter and requires it to be a UUID.
func ParsePathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id in path").
			WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
