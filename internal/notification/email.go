package notification

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/protocol"
	"github.com/smukkama/aquasure-server/internal/queue"
	"github.com/smukkama/aquasure-server/pkg/config"
)

var alertTemplate = template.Must(template.New("alert").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
	"split": strings.Split,
	"trim":  strings.TrimSpace,
}).Parse(`
Water Quality Alert ({{upper .Priority}} priority)
====================================================

Project: {{.ProjectName}}
Location: {{.Location}}
Sample: {{.SampleCode}}
Metal: {{.Metal}}
Concentration: {{.Concentration}} mg/L
HMPI: {{printf "%.2f" .HMPIValue}}
Risk Level: {{.RiskLevel}}
Raised At: {{.RaisedAt.Format "2006-01-02 15:04:05 MST"}}
Alert ID: {{.AlertID}}

Recommended actions:
{{- range split .RecommendedAction ";"}}
  - {{trim .}}
{{- end}}

Acknowledge this alert in the AquaSure dashboard once it has been reviewed.

---
AquaSure Notification System
`))

// SendFunc delivers a message; smtp.SendMail by default
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends an email per raised alert
type EmailNotifier struct {
	config *config.SMTPConfig
	log    *logger.Logger
	send   SendFunc
	now    func() time.Time
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		config: cfg,
		log:    log.With("component", "email"),
		send:   smtp.SendMail,
		now:    time.Now,
	}
}

// Configured reports whether SMTP credentials are present
func (e *EmailNotifier) Configured() bool {
	return e.config.Username != "" && e.config.Password != ""
}

// Handle decodes an AlertRaised message and emails it. Undecodable messages
// are poison.
func (e *EmailNotifier) Handle(ctx context.Context, msg kafka.Message) error {
	alert, err := protocol.DecodeAlertRaised(msg.Value)
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPoison, err)
	}
	return e.SendAlert(alert)
}

// SendAlert renders and sends the email for one alert
func (e *EmailNotifier) SendAlert(alert *protocol.AlertRaised) error {
	subject, body, err := Render(alert)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return e.sendEmail(subject, body)
}

// Render builds the subject and plain-text body for an alert
func Render(alert *protocol.AlertRaised) (string, string, error) {
	subject := fmt.Sprintf("[%s] Water quality alert - %s at %s (%s)",
		strings.ToUpper(alert.Priority), alert.Metal, alert.ProjectName, alert.RiskLevel)

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, alert); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	if !e.Configured() {
		e.log.Info("SMTP not configured, skipping email", "subject", subject, "body", body)
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", e.config.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := e.send(addr, auth, e.config.From, recipients(e.config.To), []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.log.Info("email sent", "subject", subject)
	return nil
}

// recipients splits a comma separated address list
func recipients(to string) []string {
	var out []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// TestConnection dials the SMTP server
func (e *EmailNotifier) TestConnection() error {
	if !e.Configured() {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()
	return nil
}
