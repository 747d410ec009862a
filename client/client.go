// Package client is the programmatic counterpart of the browser form script:
// it assembles a submission payload, runs the same pre-flight validation,
// guards against double submission, and keeps its anti-abuse token in sync
// with the gate's rotation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"github.com/StackCodeArtisan/Madeiyesehomecare/model"
	"github.com/StackCodeArtisan/Madeiyesehomecare/utils"
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not settled yet. The caller's UI should already have the
// submit control disabled; this is the backstop.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// AlertLevel mirrors the styling class the page applies to the alert region
type AlertLevel string

const (
	LevelInfo    AlertLevel = "info"
	LevelSuccess AlertLevel = "success"
	LevelWarning AlertLevel = "warning"
	LevelDanger  AlertLevel = "danger"
)

// Result is the outcome of one submission attempt, ready to render
type Result struct {
	Success   bool
	Message   string
	Level     AlertLevel
	ResetForm bool // true only on success; the caller also re-clears the honeypot field
}

// FormConfig parameterizes one flow: endpoint, field set, and messages
type FormConfig struct {
	Endpoint             string
	RequiredFields       []string
	EmailField           string
	HoneypotField        string
	MissingFieldsMessage string
	SuccessMessage       string
}

// CareRequestForm returns the configuration for the request-care flow
func CareRequestForm() FormConfig {
	return FormConfig{
		Endpoint:             "/request-care",
		RequiredFields:       []string{"full_name", "phone", "email", "address", "start_date", "care_type"},
		EmailField:           "email",
		HoneypotField:        model.CareHoneypotField,
		MissingFieldsMessage: "Please complete all required fields.",
		SuccessMessage:       "Request sent successfully.",
	}
}

// AppointmentForm returns the configuration for the appointment flow
func AppointmentForm() FormConfig {
	return FormConfig{
		Endpoint:             "/submit-appointment",
		RequiredFields:       []string{"full_name", "email", "phone", "preferred_date", "preferred_time"},
		EmailField:           "email",
		HoneypotField:        model.AppointmentHoneypotField,
		MissingFieldsMessage: "Please complete all required appointment fields.",
		SuccessMessage:       "Appointment request sent successfully.",
	}
}

// gateResponse matches the gate's response body
type gateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CSRFToken string `json:"csrf_token"`
}

// sessionResponse matches the form-session endpoint's body
type sessionResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// FormClient submits one form flow against a base URL. It is safe for
// concurrent use: at most one submission is in flight at a time and extra
// Submit calls return ErrSubmissionInFlight instead of firing a request.
type FormClient struct {
	baseURL string
	form    FormConfig
	http    *http.Client

	// OnStatus, when set, receives progress updates (the "submitting…"
	// info message) before the request is dispatched.
	OnStatus func(level AlertLevel, message string)

	mu       sync.Mutex
	inFlight bool
	token    string
}

// New creates a form client. A nil httpClient gets a cookie-jar-backed
// default so the session cookie survives between FetchToken and Submit.
func New(baseURL string, form FormConfig, httpClient *http.Client) *FormClient {
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Jar: jar}
	}
	return &FormClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		form:    form,
		http:    httpClient,
	}
}

// Token returns the anti-abuse token the client currently holds
func (c *FormClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken overrides the held token; tests and page bootstraps use this
func (c *FormClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// FetchToken performs the page-load round trip: it obtains the session
// cookie and the initial anti-abuse token from the gate.
func (c *FormClient) FetchToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/form-session", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}

	c.SetToken(body.CSRFToken)
	return nil
}

// Submit validates the fields, posts them to the flow's endpoint, and adopts
// whatever token the gate returns. Pre-flight validation failures surface the
// first collected message as a warning and never reach the network. The
// in-flight flag is always cleared once the attempt settles.
func (c *FormClient) Submit(ctx context.Context, fields map[string]string) (Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	c.inFlight = true
	token := c.token
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	if msg, ok := c.preflight(fields); !ok {
		return Result{Message: msg, Level: LevelWarning}, nil
	}

	if c.OnStatus != nil {
		c.OnStatus(LevelInfo, "Submitting your request…")
	}

	payload := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload[model.TokenField] = token

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Message: "Network error. Please try again.", Level: LevelDanger}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.form.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Message: "Network error. Please try again.", Level: LevelDanger}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Message: "Network error. Please try again.", Level: LevelDanger}, err
	}
	defer resp.Body.Close()

	var gr gateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Result{Message: "Network error. Please try again.", Level: LevelDanger}, err
	}

	// Always adopt the rotated token, success or failure, so the next
	// attempt is made with the token the gate currently expects.
	if gr.CSRFToken != "" {
		c.SetToken(gr.CSRFToken)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !gr.Success {
		message := gr.Message
		if message == "" {
			message = "Something went wrong. Please try again."
		}
		return Result{Message: message, Level: LevelDanger}, nil
	}

	message := gr.Message
	if message == "" {
		message = c.form.SuccessMessage
	}
	return Result{Success: true, Message: message, Level: LevelSuccess, ResetForm: true}, nil
}

// preflight mirrors the server's required-field and email-shape checks,
// collecting messages and reporting the first one.
func (c *FormClient) preflight(fields map[string]string) (string, bool) {
	var messages []string

	for _, key := range c.form.RequiredFields {
		if !utils.FieldPresent(fields[key]) {
			messages = append(messages, c.form.MissingFieldsMessage)
			break
		}
	}

	if c.form.EmailField != "" && utils.FieldPresent(fields[c.form.EmailField]) {
		if err := utils.ValidateEmail(fields[c.form.EmailField]); err != nil {
			messages = append(messages, "Please enter a valid email address.")
		}
	}

	if len(messages) > 0 {
		return messages[0], false
	}
	return "", true
}
