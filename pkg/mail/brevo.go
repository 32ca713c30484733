package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foodgo/foodgo-backend/pkg/config"
)

// BrevoSender delivers mail through the Brevo transactional email API.
type BrevoSender struct {
	apiKey string
	url    string
	from   string
	client *http.Client
}

func NewBrevoSender(cfg config.MailConfig) (*BrevoSender, error) {
	if cfg.BrevoAPIKey == "" {
		return nil, fmt.Errorf("brevo api key is required")
	}
	return &BrevoSender{
		apiKey: cfg.BrevoAPIKey,
		url:    cfg.BrevoURL,
		from:   cfg.From,
		client: &http.Client{Timeout: cfg.SendTimeout},
	}, nil
}

type brevoParty struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
	TextContent string       `json:"textContent,omitempty"`
}

func (b *BrevoSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	name, email := splitDisplayAddress(b.from)
	payload := brevoPayload{
		Sender:      brevoParty{Email: email, Name: name},
		To:          []brevoParty{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building brevo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

func splitDisplayAddress(from string) (name, email string) {
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.LastIndex(from, ">"); end > start {
			return strings.TrimSpace(from[:start]), from[start+1 : end]
		}
	}
	return "", from
}
