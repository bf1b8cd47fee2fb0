package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Mailer is the notification collaborator. Send reports delivery as a
// boolean and never fails the caller; every consumer treats false as
// "log and continue".
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) bool
}

// BrevoMailer sends transactional email through the Brevo HTTP API. An
// unconfigured mailer (empty API key) is a no-op that reports failure.
type BrevoMailer struct {
	apiKey     string
	sender     string
	senderName string
	client     *http.Client
}

// NewBrevoMailer constructs a BrevoMailer.
func NewBrevoMailer(apiKey, sender, senderName string) *BrevoMailer {
	return &BrevoMailer{
		apiKey:     apiKey,
		sender:     sender,
		senderName: senderName,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
	TextContent string              `json:"textContent,omitempty"`
}

// Send delivers one email. Failures are logged, never surfaced.
func (m *BrevoMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) bool {
	if m.apiKey == "" {
		log.Printf("[Mail] not configured, skipping %q to %s", subject, to)
		return false
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": m.senderName, "email": m.sender},
		To:          []map[string]string{{"email": to}},
		Subject:     subject,
		HTMLContent: htmlBody,
		TextContent: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Mail] marshal failed: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("[Mail] request build failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		log.Printf("[Mail] send to %s failed: %v", to, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Mail] send to %s returned status %d", to, resp.StatusCode)
		return false
	}
	return true
}

// Message builders shared by the account and order services.

func verificationEmail(code string) (subject, html, text string) {
	subject = "Verify your Ovenfresh account"
	html = fmt.Sprintf(`<p>Welcome to Ovenfresh!</p>
<p>Your verification code is <b>%s</b>. It expires in 30 minutes.</p>`, code)
	text = fmt.Sprintf("Your Ovenfresh verification code is %s. It expires in 30 minutes.", code)
	return subject, html, text
}

func resetEmail(rawToken string) (subject, html, text string) {
	subject = "Reset your Ovenfresh password"
	html = fmt.Sprintf(`<p>A password reset was requested for your account.</p>
<p>Your reset token is <b>%s</b>. It expires in 1 hour. If you did not request this, ignore this email.</p>`, rawToken)
	text = fmt.Sprintf("Your Ovenfresh password reset token is %s. It expires in 1 hour.", rawToken)
	return subject, html, text
}

func passwordChangedEmail() (subject, html, text string) {
	subject = "Your Ovenfresh password was changed"
	html = `<p>Your account password was just changed. If this wasn't you, reset your password immediately.</p>`
	text = "Your Ovenfresh account password was just changed. If this wasn't you, reset your password immediately."
	return subject, html, text
}

func newOrderEmail(orderID, customerName string, total int64, lines []string) (subject, html, text string) {
	subject = fmt.Sprintf("New order %s", orderID)
	var items bytes.Buffer
	for _, line := range lines {
		fmt.Fprintf(&items, "<li>%s</li>", line)
	}
	html = fmt.Sprintf(`<p>New order from %s.</p><ul>%s</ul><p>Total: %s</p>`,
		customerName, items.String(), FormatPrice(total))
	text = fmt.Sprintf("New order %s from %s, total %s", orderID, customerName, FormatPrice(total))
	return subject, html, text
}

// FormatPrice renders a minor-unit amount as a decimal string.
func FormatPrice(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
