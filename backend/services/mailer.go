package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"coursehub/backend/config"
)

// Mailer sends transactional email. Sends are fire-and-forget: a failure is
// surfaced to the caller but never rolls back already-committed rows.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer returns the SendGrid mailer when an API key is configured and
// a console mailer otherwise, so local setups work without credentials.
func NewMailer(cfg *config.Config, logger *log.Logger) Mailer {
	if cfg.SendGridAPIKey != "" {
		return &SendGridMailer{
			apiKey: cfg.SendGridAPIKey,
			from:   cfg.EmailFrom,
			client: &http.Client{Timeout: 10 * time.Second},
		}
	}
	return &ConsoleMailer{Logger: logger}
}

// SendGrid request format
type sgEmail struct {
	Email string `json:"email"`
}
type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
type sgPersonalization struct {
	To []sgEmail `json:"to"`
}
type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgEmail             `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type SendGridMailer struct {
	apiKey string
	from   string
	client *http.Client
}

func (m *SendGridMailer) Send(to, subject, body string) error {
	payload := sgRequest{
		Personalizations: []sgPersonalization{{To: []sgEmail{{Email: to}}}},
		From:             sgEmail{Email: m.from},
		Subject:          subject,
		Content:          []sgContent{{Type: "text/plain", Value: body}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.sendgrid.com/v3/mail/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// ConsoleMailer writes email to the application log instead of sending it.
type ConsoleMailer struct {
	Logger *log.Logger
}

func (m *ConsoleMailer) Send(to, subject, body string) error {
	m.Logger.Printf("email to=%s subject=%q\n%s", to, subject, body)
	return nil
}
