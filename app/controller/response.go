package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/repository"
)

// maxRequestBody caps JSON request bodies
const maxRequestBody = 1 << 20

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("❌ Failed to encode response", zap.Error(err))
	}
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case models.IsBuildConfigurationError(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUserStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// resolveUser returns the request's inline user, or loads it from the store when a user id is given
func resolveUser(ctx context.Context, users repository.UserDataRepositoryInterface, req models.BookRequest) (models.UserData, error) {
	if req.UserID == "" {
		return req.User, nil
	}
	if users == nil {
		return models.UserData{}, models.ErrUserStoreUnavailable
	}
	return users.GetByUserID(ctx, req.UserID)
}

// writeError logs err and answers with its mapped status. Client errors carry
// the error text, server errors a generic message.
func writeError(w http.ResponseWriter, log *zap.Logger, handler string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("❌ "+handler+": request failed", zap.Error(err))
		http.Error(w, "Failed to build book", status)
		return
	}
	log.Warn("⚠️  "+handler+": rejected request", zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}
