package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/course-agent-api/internal/config"
)

// Mailer sends transactional HTML emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type mailer struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	senderEmail string
	senderName  string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     cfg.BrevoBaseURL,
		apiKey:      cfg.BrevoAPIKey,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
	}
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

// SendEmail posts the message to the Brevo v3 transactional endpoint.
// Any non-2xx status is an error; the caller decides whether that fails
// the surrounding operation.
func (m *mailer) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	payload := sendRequest{
		Sender:      party{Name: m.senderName, Email: m.senderEmail},
		To:          []party{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
