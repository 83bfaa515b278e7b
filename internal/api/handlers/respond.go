package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/fuego-api/internal/auth"
	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

// writeError maps service errors onto status codes. Everything that is not a
// missing resource or a credential problem is a 412 carrying the message.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	logger := hlog.FromRequest(r)
	switch {
	case errors.Is(err, services.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthenticated):
		logger.Warn().Err(err).Msg(action)
		writeMsg(w, http.StatusUnauthorized, "unauthorized")
	default:
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			logger.Warn().Err(err).Msg(action)
		} else {
			logger.Error().Err(err).Msg(action)
		}
		writeMsg(w, http.StatusPreconditionFailed, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

// decodeOptional accepts an empty body and leaves dst untouched.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Invalid request body")
		writeMsg(w, http.StatusPreconditionFailed, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// identity returns the user bound by the auth middleware.
func identity(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		hlog.FromRequest(r).Error().Msg("Could not retrieve user from context")
		writeMsg(w, http.StatusUnauthorized, "unauthorized")
	}
	return user, ok
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
