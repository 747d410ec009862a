package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// FormResponse is the structured result every gate path returns. The token is
// present on every submission response, success or failure.
type FormResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CSRFToken string `json:"csrf_token,omitempty"`
}

// SessionResponse carries a freshly issued anti-abuse token to the page
type SessionResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// WriteForm writes a form submission response as JSON
func WriteForm(w http.ResponseWriter, statusCode int, resp FormResponse) {
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
