package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/fuego-api/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// AuthPayload defines the structure for token requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration. The response includes the digest.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload services.RegisterInput
	if !decode(w, r, &payload) {
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "Failed to register user")
		return
	}

	hlog.FromRequest(r).Info().Int64("user_id", user.ID).Msg("Registered user")
	writeJSON(w, http.StatusOK, user)
}

// Token exchanges email and password for a signed token.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decode(w, r, &payload) {
		return
	}

	token, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, r, err, "Failed authentication attempt")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetMe returns the public profile of the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetSelf(r.Context(), user)
	if err != nil {
		writeError(w, r, err, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteMe handles the permanent deletion of the caller's account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSelf(r.Context(), user); err != nil {
		writeError(w, r, err, "Failed to delete user")
		return
	}
	hlog.FromRequest(r).Info().Int64("user_id", user.ID).Msg("Deleted user")
	w.WriteHeader(http.StatusNoContent)
}

// FindProfile looks users up by email. No match is an empty list.
func (h *UserHandler) FindProfile(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.FindProfiles(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, r, err, "Failed to find profile")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Find looks users up by id, email or name. No match is an empty list.
func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to find users")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
