package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/StackCodeArtisan/Madeiyesehomecare/config"
	"github.com/StackCodeArtisan/Madeiyesehomecare/handler"
	"github.com/StackCodeArtisan/Madeiyesehomecare/model"
	"github.com/StackCodeArtisan/Madeiyesehomecare/security"

	"github.com/gorilla/mux"
)

type recordingNotifier struct {
	careCalls []model.CareRequest
	apptCalls []model.AppointmentRequest
}

func (rn *recordingNotifier) SendCareRequest(ref string, req model.CareRequest) error {
	rn.careCalls = append(rn.careCalls, req)
	return nil
}

func (rn *recordingNotifier) SendAppointment(ref string, req model.AppointmentRequest) error {
	rn.apptCalls = append(rn.apptCalls, req)
	return nil
}

// newGateServer runs the real gate behind httptest with the form-age
// threshold disabled, so end-to-end tests do not sleep.
func newGateServer(t *testing.T) (*httptest.Server, *recordingNotifier) {
	t.Helper()

	tokens := security.NewTokenStore(time.Hour, nil)
	limiter := security.NewSubmitLimiter(100, 10*time.Minute, nil)
	notifier := &recordingNotifier{}

	cfg := config.Config{
		WebServer: config.WebServerConfig{Scheme: "http", IP: "127.0.0.1", Port: "8080"},
		AntiAbuse: config.AntiAbuseConfig{MinFormAgeSeconds: 0},
	}
	h := handler.NewFormHandler(tokens, limiter, notifier, security.NewAbuseTracker(nil), cfg)

	r := mux.NewRouter()
	r.HandleFunc("/form-session", h.FormSession).Methods("GET")
	r.HandleFunc("/request-care", h.RequestCare).Methods("POST")
	r.HandleFunc("/submit-appointment", h.SubmitAppointment).Methods("POST")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, notifier
}

func TestEndToEnd_CareRequestAccepted(t *testing.T) {
	srv, notifier := newGateServer(t)

	c := New(srv.URL, CareRequestForm(), nil)
	if err := c.FetchToken(context.Background()); err != nil {
		t.Fatalf("FetchToken() error = %v", err)
	}
	initial := c.Token()
	if initial == "" {
		t.Fatal("FetchToken() left token empty")
	}

	res, err := c.Submit(context.Background(), validCareFields())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("submission rejected: %q", res.Message)
	}
	if res.Message != "Request sent successfully." {
		t.Errorf("message = %q, want %q", res.Message, "Request sent successfully.")
	}
	if !res.ResetForm {
		t.Error("success must signal a form reset")
	}
	if c.Token() == initial {
		t.Error("client did not adopt the rotated token")
	}
	if len(notifier.careCalls) != 1 {
		t.Fatalf("notifier received %d care requests, want 1", len(notifier.careCalls))
	}
	if got := notifier.careCalls[0].FullName; got != "Jane Doe" {
		t.Errorf("dispatched full_name = %q, want Jane Doe", got)
	}
}

func TestEndToEnd_HoneypotRejectedLikeValidation(t *testing.T) {
	srv, notifier := newGateServer(t)

	c := New(srv.URL, CareRequestForm(), nil)
	if err := c.FetchToken(context.Background()); err != nil {
		t.Fatalf("FetchToken() error = %v", err)
	}

	fields := validCareFields()
	fields[model.CareHoneypotField] = "x"
	res, err := c.Submit(context.Background(), fields)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Success {
		t.Error("honeypot submission reported success")
	}
	if res.Message != "Please review the highlighted fields." {
		t.Errorf("honeypot message = %q, must match the validation failure text", res.Message)
	}
	if len(notifier.careCalls) != 0 {
		t.Error("honeypot submission reached the notifier")
	}

	// The rotated token from the rejection keeps the client usable: a clean
	// retry goes straight through.
	res, err = c.Submit(context.Background(), validCareFields())
	if err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if !res.Success {
		t.Errorf("retry after rejection failed: %q", res.Message)
	}
}

func TestEndToEnd_AppointmentAccepted(t *testing.T) {
	srv, notifier := newGateServer(t)

	c := New(srv.URL, AppointmentForm(), nil)
	if err := c.FetchToken(context.Background()); err != nil {
		t.Fatalf("FetchToken() error = %v", err)
	}

	res, err := c.Submit(context.Background(), map[string]string{
		"full_name":      "John Smith",
		"email":          "john@example.com",
		"phone":          "555-0101",
		"preferred_date": "2025-07-02",
		"preferred_time": "10:30",
		"reason":         "Initial consultation",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("submission rejected: %q", res.Message)
	}
	if len(notifier.apptCalls) != 1 {
		t.Fatalf("notifier received %d appointments, want 1", len(notifier.apptCalls))
	}
	if got := notifier.apptCalls[0].Reason; got != "Initial consultation" {
		t.Errorf("dispatched reason = %q", got)
	}
}
