package handlers

import "net/http"

// Status reports that the API is up.
func Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Fuego API"})
}
