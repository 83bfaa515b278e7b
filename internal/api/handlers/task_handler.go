package handlers

import (
	"net/http"

	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/services"
)

// TaskHandler handles HTTP requests for the caller's tasks ("clients").
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// GetAll lists the caller's tasks.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), user)
	if err != nil {
		writeError(w, r, err, "Failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a task owned by the caller. Any user_id in the body is ignored.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}
	var payload services.CreateTaskInput
	if !decode(w, r, &payload) {
		return
	}

	task, err := h.service.Create(r.Context(), user, payload)
	if err != nil {
		writeError(w, r, err, "Failed to create task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Get returns one of the caller's tasks, or 404.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	task, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err, "Failed to get task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update patches one of the caller's tasks. It answers 204 whether or not a
// task matched. An empty body is an empty patch.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}
	var patch models.TaskPatch
	if !decodeOptional(w, r, &patch) {
		return
	}
	id, ok := idParam(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.Update(r.Context(), user, id, patch); err != nil {
		writeError(w, r, err, "Failed to update task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes one of the caller's tasks. It answers 204 whether or not a
// task matched.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeError(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
