package utils

import (
	"academy/config"
	"academy/logger"
	"fmt"
	"html"
	"net/http"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailMessage struct {
	To      string
	Name    string
	Subject string
	HTML    string
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(msg EmailMessage) error
}

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridMailer struct {
	key  string
	from *sgmail.Email
}

func NewSendgridMailer(key, fromAddress, fromName string) Mailer {
	return &sendgridMailer{key: key, from: sgmail.NewEmail(fromName, fromAddress)}
}

func (m *sendgridMailer) Send(msg EmailMessage) error {
	v3 := sgmail.NewSingleEmail(m.from, msg.Subject, sgmail.NewEmail(msg.Name, msg.To), "", msg.HTML)

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleMailer logs messages instead of sending them and keeps a copy of
// each, which tests read back.
type ConsoleMailer struct {
	mu   sync.Mutex
	Sent []EmailMessage
}

func (m *ConsoleMailer) Send(msg EmailMessage) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	logger.Log.Info("email (console)", "email", msg.To, "subject", msg.Subject)
	return nil
}

func (m *ConsoleMailer) Messages() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailMessage(nil), m.Sent...)
}

var (
	mailerMu sync.RWMutex
	mailer   Mailer = &ConsoleMailer{}
)

// InitMailer picks sendgrid when an API key is configured.
func InitMailer(cfg *config.Config) {
	if cfg.SendgridAPIKey == "" {
		SetMailer(&ConsoleMailer{})
		return
	}
	SetMailer(NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailSender, cfg.EmailSenderName))
}

func SetMailer(m Mailer) {
	mailerMu.Lock()
	mailer = m
	mailerMu.Unlock()
}

func GetMailer() Mailer {
	mailerMu.RLock()
	defer mailerMu.RUnlock()
	return mailer
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #00004D; padding: 30px; text-align: center;">
      <h1 style="color: #FFFFFF; margin: 0; font-size: 22px;">PRACTITIONER ACADEMY</h1>
    </div>
    <div style="padding: 40px 30px; color: #00004D; line-height: 1.6;">
      <h2 style="margin-top: 0;">%s</h2>
      %s
    </div>
  </div>
</body>
</html>`, title, bodyContent)
}

func sendAsync(msg EmailMessage) {
	go func() {
		if err := GetMailer().Send(msg); err != nil {
			logger.Log.Error("sending email failed", "subject", msg.Subject, "error", err)
		}
	}()
}

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your account has been created. Enroll in a module to start your practitioner path.</p>`, html.EscapeString(name))
	sendAsync(EmailMessage{To: email, Name: name, Subject: "Welcome to Practitioner Academy", HTML: getEmailTemplate("Welcome!", body)})
}

func SendEnrollmentEmail(email, name, moduleTitle string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your payment was received and you are enrolled in <strong>%s</strong>.</p>
<p>Sub-topics unlock one after another as you complete their content.</p>`, html.EscapeString(name), html.EscapeString(moduleTitle))
	sendAsync(EmailMessage{To: email, Name: name, Subject: "Enrollment confirmed: " + moduleTitle, HTML: getEmailTemplate("Enrollment Confirmed", body)})
}

// SendCertificateReadyEmail is synchronous so the caller only records the
// notification once delivery succeeded.
func SendCertificateReadyEmail(email, name, certificateNumber string) error {
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Your certificate is now available to download.</p>
<p>Certificate ID: <strong>%s</strong></p>`, html.EscapeString(name), html.EscapeString(certificateNumber))
	return GetMailer().Send(EmailMessage{To: email, Name: name, Subject: "Your certificate is ready", HTML: getEmailTemplate("Certificate Available", body)})
}
