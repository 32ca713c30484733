// Package mail delivers transactional email. The default sender tries
// SMTP first and falls back to the Brevo HTTP API when SMTP fails or
// is not configured.
package mail

import (
	"context"
	"fmt"
)

// Message is a single transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message to one recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NopSender drops messages. Used in dev when no transport is configured.
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }

// OTPEmail renders the verification code message sent during signup
// and password reset.
func OTPEmail(to, code string, validityMinutes int) Message {
	return Message{
		To:      to,
		Subject: "Your FoodGo verification code",
		HTML: fmt.Sprintf(
			"<p>Your verification code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not request this code, you can ignore this email.</p>",
			code, validityMinutes,
		),
		Text: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, validityMinutes),
	}
}
