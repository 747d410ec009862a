package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"time"

	"github.com/StackCodeArtisan/Madeiyesehomecare/config"
	"github.com/StackCodeArtisan/Madeiyesehomecare/model"

	"github.com/rs/zerolog/log"
)

// Notifier formats validated submissions into plain-text emails for the care
// team inbox. Sends are synchronous and never retried here; a transport error
// propagates to the gate, which answers the caller with a generic failure.
type Notifier struct {
	cfg config.SMTPConfig
	now func() time.Time
}

// NewNotifier creates a notifier from SMTP configuration
func NewNotifier(cfg config.SMTPConfig) *Notifier {
	return &Notifier{cfg: cfg, now: time.Now}
}

// SendCareRequest dispatches a new care request to the care team, with
// Reply-To set to the submitter so the team can answer directly.
func (n *Notifier) SendCareRequest(ref string, req model.CareRequest) error {
	subject := fmt.Sprintf("New Care Request from %s", req.FullName)
	return n.send(subject, req.Email, n.careRequestBody(ref, req))
}

// SendAppointment dispatches a new in-person appointment request.
func (n *Notifier) SendAppointment(ref string, req model.AppointmentRequest) error {
	subject := fmt.Sprintf("Appointment Request from %s", req.FullName)
	return n.send(subject, req.Email, n.appointmentBody(ref, req))
}

func (n *Notifier) careRequestBody(ref string, req model.CareRequest) string {
	return fmt.Sprintf(
		"New care request submitted on %s UTC\n\n"+
			"Full Name: %s\n"+
			"Phone: %s\n"+
			"Email: %s\n"+
			"Address: %s\n"+
			"Preferred Start Date: %s\n"+
			"Type of Care: %s\n"+
			"Additional Notes: %s\n"+
			"Reference: %s\n",
		n.now().UTC().Format(time.RFC3339),
		req.FullName, req.Phone, req.Email, req.Address,
		req.StartDate, req.CareType, orNA(req.Notes), ref,
	)
}

func (n *Notifier) appointmentBody(ref string, req model.AppointmentRequest) string {
	return fmt.Sprintf(
		"New in-person appointment request submitted on %s UTC\n\n"+
			"Full Name: %s\n"+
			"Email: %s\n"+
			"Phone: %s\n"+
			"Preferred Date: %s\n"+
			"Preferred Time: %s\n"+
			"Reason: %s\n"+
			"Reference: %s\n",
		n.now().UTC().Format(time.RFC3339),
		req.FullName, req.Email, req.Phone,
		req.PreferredDate, req.PreferredTime, orNA(req.Reason), ref,
	)
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

// send delivers one plain-text email to the configured destination address.
func (n *Notifier) send(subject, replyTo, body string) error {
	if !n.cfg.Enabled {
		log.Warn().Str("subject", subject).Msg("Email service disabled - notification not sent")
		log.Info().Str("body", body).Msg("Notification body (email disabled)")
		return nil
	}

	if n.cfg.Host == "" || n.cfg.Destination == "" {
		return fmt.Errorf("email configuration incomplete: host and destination are required")
	}

	from := fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.FromEmail)

	headers := fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n",
		from, n.cfg.Destination, subject,
	)
	if replyTo != "" {
		headers += fmt.Sprintf("Reply-To: %s\r\n", replyTo)
	}
	headers += "MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n"

	msg := []byte(headers + body + "\r\n")
	addr := fmt.Sprintf("%s:%s", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	var err error
	if n.cfg.UseSSL {
		err = n.sendOverSSL(addr, auth, msg)
	} else {
		// smtp.SendMail upgrades via STARTTLS when the server offers it,
		// which covers the use_tls configuration on port 587
		err = smtp.SendMail(addr, auth, n.cfg.FromEmail, []string{n.cfg.Destination}, msg)
	}
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to send email")
		return err
	}

	log.Info().Str("to", n.cfg.Destination).Str("subject", subject).Msg("Email sent successfully")
	return nil
}

// sendOverSSL handles servers that require implicit TLS (typically port 465),
// which smtp.SendMail cannot negotiate.
func (n *Notifier) sendOverSSL(addr string, auth smtp.Auth, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.Host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if n.cfg.Username != "" {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(n.cfg.FromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(n.cfg.Destination); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
