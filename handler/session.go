package handler

import "net/http"

// FormSession issues the visitor's session cookie and a fresh anti-abuse
// token. The marketing pages call this once at load and stash the token in
// the hidden form field; it stays valid until the next gate response rotates
// it.
// @Summary Issue a form session token
// @Tags Forms
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /form-session [get]
func (h *FormHandler) FormSession(w http.ResponseWriter, r *http.Request) {
	token := h.rotateToken(w, r)
	writeJSON(w, http.StatusOK, SessionResponse{CSRFToken: token})
}
