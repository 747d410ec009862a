package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/StackCodeArtisan/Madeiyesehomecare/config"
	"github.com/StackCodeArtisan/Madeiyesehomecare/model"
	"github.com/StackCodeArtisan/Madeiyesehomecare/security"
	"github.com/StackCodeArtisan/Madeiyesehomecare/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Response messages. Missing-field and honeypot rejections deliberately share
// one text so bot traffic cannot tell which check tripped; token and
// form-age failures share another for the same reason.
const (
	msgInvalidFormat  = "Invalid submission format."
	msgRateLimited    = "Too many requests. Please try later."
	msgSecurityCheck  = "Unable to verify your submission. Please refresh the page and try again."
	msgReviewFields   = "Please review the highlighted fields."
	msgInvalidEmail   = "Please enter a valid email address."
	msgDispatchFailed = "We could not process your request right now. Please try again later."

	msgCareSuccess        = "Request sent successfully."
	msgAppointmentSuccess = "Appointment request sent successfully."
)

// Rejection reason buckets for abuse tracking
const (
	reasonRateLimit       = "rate_limit"
	reasonInvalidFormat   = "invalid_format"
	reasonTokenMismatch   = "token_mismatch"
	reasonTooFast         = "too_fast"
	reasonHoneypot        = "honeypot"
	reasonValidation      = "validation"
	reasonDispatchFailure = "dispatch_failure"
)

const sessionCookieName = "mhc_session"

// Notifier dispatches a validated submission to the care team
type Notifier interface {
	SendCareRequest(ref string, req model.CareRequest) error
	SendAppointment(ref string, req model.AppointmentRequest) error
}

// FormHandler is the submission gate: the authoritative anti-abuse and
// validation checkpoint in front of the notifier. Every response it writes,
// success or rejection, carries a freshly rotated anti-abuse token so the
// client can recover without a page reload.
type FormHandler struct {
	tokens     *security.TokenStore
	limiter    *security.SubmitLimiter
	notifier   Notifier
	tracker    *security.AbuseTracker
	minFormAge time.Duration
	secure     bool
}

// NewFormHandler creates a form handler with dependency injection
func NewFormHandler(
	tokens *security.TokenStore,
	limiter *security.SubmitLimiter,
	notifier Notifier,
	tracker *security.AbuseTracker,
	cfg config.Config,
) *FormHandler {
	return &FormHandler{
		tokens:     tokens,
		limiter:    limiter,
		notifier:   notifier,
		tracker:    tracker,
		minFormAge: time.Duration(cfg.AntiAbuse.MinFormAgeSeconds) * time.Second,
		secure:     cfg.WebServer.Scheme == "https",
	}
}

// requiredField pairs a payload key with its human-readable label, used for
// logging which field blocked a submission.
type requiredField struct {
	key   string
	label string
}

// formSpec parameterizes the gate for one flow. The two lead-capture forms
// are near-identical, so a single gated-submission path handles both.
type formSpec struct {
	name           string
	honeypotField  string
	requiredFields []requiredField
	optionalFields []string
	emailField     string
	successMessage string
	dispatch       func(h *FormHandler, ref string, fields map[string]string) error
}

// handleSubmission runs the gate checks in order, short-circuiting on the
// first failure: rate limit, token, form age, honeypot, field validation,
// then dispatch.
func (h *FormHandler) handleSubmission(w http.ResponseWriter, r *http.Request, spec formSpec) {
	ip := security.ClientIP(r)

	// 1. Rate limit: every attempt consumes a slot, even ones that fail a
	// later check.
	if !h.limiter.Allow(ip) {
		h.tracker.RecordRejection(ip, spec.name, reasonRateLimit)
		h.reject(w, r, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || fields == nil {
		h.tracker.RecordRejection(ip, spec.name, reasonInvalidFormat)
		h.reject(w, r, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	// 2. Anti-abuse token: a mismatch and an expired session produce the
	// same response so callers learn nothing about the mechanism.
	sessionID := h.sessionID(r)
	if !h.tokens.Verify(sessionID, fields[model.TokenField]) {
		log.Warn().Str("ip", ip).Str("form", spec.name).Msg("Submission token mismatch")
		h.tracker.RecordRejection(ip, spec.name, reasonTokenMismatch)
		h.reject(w, r, http.StatusBadRequest, msgSecurityCheck)
		return
	}

	// 3. Form age: submissions that arrive faster than a human could fill
	// the form are scripted.
	if age, ok := h.tokens.Age(sessionID); !ok || age < h.minFormAge {
		log.Warn().Str("ip", ip).Str("form", spec.name).Dur("age", age).Msg("Submission arrived too fast")
		h.tracker.RecordRejection(ip, spec.name, reasonTooFast)
		h.reject(w, r, http.StatusBadRequest, msgSecurityCheck)
		return
	}

	// 4. Honeypot: the response must read exactly like a validation failure.
	if fields[spec.honeypotField] != "" {
		log.Warn().Str("ip", ip).Str("form", spec.name).Msg("Honeypot triggered; dropping submission")
		h.tracker.RecordRejection(ip, spec.name, reasonHoneypot)
		h.reject(w, r, http.StatusBadRequest, msgReviewFields)
		return
	}

	// 5. Field validation: never trust the client-side checks.
	for _, rf := range spec.requiredFields {
		if !utils.FieldPresent(fields[rf.key]) {
			log.Info().Str("ip", ip).Str("form", spec.name).Str("field", rf.label).Msg("Required field missing")
			h.tracker.RecordRejection(ip, spec.name, reasonValidation)
			h.reject(w, r, http.StatusBadRequest, msgReviewFields)
			return
		}
	}
	if spec.emailField != "" {
		if err := utils.ValidateEmail(fields[spec.emailField]); err != nil {
			h.tracker.RecordRejection(ip, spec.name, reasonValidation)
			h.reject(w, r, http.StatusBadRequest, msgInvalidEmail)
			return
		}
	}

	// Sanitize everything that reaches the notifier
	safe := make(map[string]string, len(spec.requiredFields)+len(spec.optionalFields))
	for _, rf := range spec.requiredFields {
		safe[rf.key] = utils.Sanitize(fields[rf.key])
	}
	for _, key := range spec.optionalFields {
		safe[key] = utils.Sanitize(fields[key])
	}

	// 6. Dispatch. Transport internals never reach the caller.
	ref := uuid.NewString()
	if err := spec.dispatch(h, ref, safe); err != nil {
		log.Error().Err(err).Str("form", spec.name).Str("ref", ref).Msg("Notification dispatch failed")
		h.tracker.RecordRejection(ip, spec.name, reasonDispatchFailure)
		h.reject(w, r, http.StatusInternalServerError, msgDispatchFailed)
		return
	}

	log.Info().
		Str("form", spec.name).
		Str("ref", ref).
		Str("name", safe["full_name"]).
		Msg("Submission accepted and dispatched")

	h.respond(w, r, http.StatusOK, true, spec.successMessage)
}

// reject writes a structured failure response with a rotated token
func (h *FormHandler) reject(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respond(w, r, status, false, message)
}

// respond writes the response body and rotates the session token into it.
// Rotation on every path is a hard invariant: it is the only way a client
// recovers a valid token after a failed attempt.
func (h *FormHandler) respond(w http.ResponseWriter, r *http.Request, status int, success bool, message string) {
	token := h.rotateToken(w, r)
	WriteForm(w, status, FormResponse{
		Success:   success,
		Message:   message,
		CSRFToken: token,
	})
}

// sessionID returns the visitor's session cookie value, or "" if absent
func (h *FormHandler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// rotateToken issues a fresh token for the visitor's session, minting the
// session cookie first if the visitor does not have one yet.
func (h *FormHandler) rotateToken(w http.ResponseWriter, r *http.Request) string {
	sessionID := h.sessionID(r)
	if sessionID == "" {
		sessionID = security.NewSessionID()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return h.tokens.Issue(sessionID)
}
