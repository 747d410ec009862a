package model

// CareRequest is a validated, sanitized care-request submission ready for
// dispatch to the care team.
type CareRequest struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	StartDate string `json:"start_date"`
	CareType  string `json:"care_type"`
	Notes     string `json:"notes,omitempty"`
}

// AppointmentRequest is a validated, sanitized in-person appointment
// submission ready for dispatch.
type AppointmentRequest struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Reason        string `json:"reason,omitempty"`
}

// Field keys shared by the submission payloads and the anti-abuse gate.
// Honeypot fields carry innocuous names so naive bots fill them in.
const (
	TokenField               = "csrf_token"
	CareHoneypotField        = "service_interest"
	AppointmentHoneypotField = "appointment_guard"
)
