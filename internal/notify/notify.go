// Package notify delivers staff email notifications over SMTP.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"conciergerie_backend/platform/config"
	"conciergerie_backend/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

var newRequestTemplate = template.Must(template.New("new_request").Parse(`<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2 style="color: #14532d;">Nouvelle demande de devis</h2>
  <p>Une nouvelle demande vient d'arriver sur le portail.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;"><strong>Numéro</strong></td><td>{{.RequestNumber}}</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><strong>Client</strong></td><td>{{.ClientName}}</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><strong>Prestation</strong></td><td>{{.ServiceType}}</td></tr>
  </table>
  <p>Connectez-vous au portail pour la traiter.</p>
</body>
</html>`))

type newRequestData struct {
	RequestNumber string
	ClientName    string
	ServiceType   string
}

// SMTPNotifier sends staff notifications through the company SMTP server.
type SMTPNotifier struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	notifyTo  string
	log       *logger.Logger
}

// New creates the SMTP notifier, or nil when email is not configured so
// callers can skip wiring it.
func New(cfg config.SMTPConfig, log *logger.Logger) *SMTPNotifier {
	if !cfg.IsEmailEnabled() || cfg.GetSMTPHost() == "" || cfg.GetNotifyAddress() == "" {
		return nil
	}
	return &SMTPNotifier{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromEmail: cfg.GetEmailFromAddress(),
		notifyTo:  cfg.GetNotifyAddress(),
		log:       log,
	}
}

// NewRequest notifies the staff address of a new quote request.
func (n *SMTPNotifier) NewRequest(ctx context.Context, requestNumber, clientName, serviceType string) error {
	var body bytes.Buffer
	if err := newRequestTemplate.Execute(&body, newRequestData{
		RequestNumber: requestNumber,
		ClientName:    clientName,
		ServiceType:   serviceType,
	}); err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	subject := fmt.Sprintf("Nouvelle demande de devis %s", requestNumber)
	return n.send(ctx, subject, body.String())
}

func (n *SMTPNotifier) send(ctx context.Context, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat("Portail Conciergerie", n.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(n.notifyTo); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(n.host,
		gomail.WithPort(n.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.username),
		gomail.WithPassword(n.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
