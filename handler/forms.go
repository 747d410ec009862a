package handler

import (
	"net/http"

	"github.com/StackCodeArtisan/Madeiyesehomecare/model"
)

var careRequestSpec = formSpec{
	name:          "care_request",
	honeypotField: model.CareHoneypotField,
	requiredFields: []requiredField{
		{key: "full_name", label: "Full name"},
		{key: "phone", label: "Phone number"},
		{key: "email", label: "Email"},
		{key: "address", label: "Address"},
		{key: "start_date", label: "Preferred start date"},
		{key: "care_type", label: "Care type"},
	},
	optionalFields: []string{"notes"},
	emailField:     "email",
	successMessage: msgCareSuccess,
	dispatch: func(h *FormHandler, ref string, fields map[string]string) error {
		return h.notifier.SendCareRequest(ref, model.CareRequest{
			FullName:  fields["full_name"],
			Phone:     fields["phone"],
			Email:     fields["email"],
			Address:   fields["address"],
			StartDate: fields["start_date"],
			CareType:  fields["care_type"],
			Notes:     fields["notes"],
		})
	},
}

var appointmentSpec = formSpec{
	name:          "appointment",
	honeypotField: model.AppointmentHoneypotField,
	requiredFields: []requiredField{
		{key: "full_name", label: "Full name"},
		{key: "email", label: "Email"},
		{key: "phone", label: "Phone number"},
		{key: "preferred_date", label: "Preferred date"},
		{key: "preferred_time", label: "Preferred time"},
	},
	optionalFields: []string{"reason"},
	emailField:     "email",
	successMessage: msgAppointmentSuccess,
	dispatch: func(h *FormHandler, ref string, fields map[string]string) error {
		return h.notifier.SendAppointment(ref, model.AppointmentRequest{
			FullName:      fields["full_name"],
			Email:         fields["email"],
			Phone:         fields["phone"],
			PreferredDate: fields["preferred_date"],
			PreferredTime: fields["preferred_time"],
			Reason:        fields["reason"],
		})
	},
}

// RequestCare handles care-request form submissions
// @Summary Submit a care request
// @Tags Forms
// @Accept json
// @Produce json
// @Success 200 {object} FormResponse
// @Failure 400 {object} FormResponse
// @Failure 429 {object} FormResponse
// @Router /request-care [post]
func (h *FormHandler) RequestCare(w http.ResponseWriter, r *http.Request) {
	h.handleSubmission(w, r, careRequestSpec)
}

// SubmitAppointment handles appointment booking submissions
// @Summary Submit an appointment request
// @Tags Forms
// @Accept json
// @Produce json
// @Success 200 {object} FormResponse
// @Failure 400 {object} FormResponse
// @Failure 429 {object} FormResponse
// @Router /submit-appointment [post]
func (h *FormHandler) SubmitAppointment(w http.ResponseWriter, r *http.Request) {
	h.handleSubmission(w, r, appointmentSpec)
}
