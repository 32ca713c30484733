package mail

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/logger"
)

// FallbackSender tries each sender in order and returns nil on the
// first success. All failures are combined when every sender fails.
type FallbackSender struct {
	senders []Sender
	logg    *logger.Logger
}

func NewFallbackSender(logg *logger.Logger, senders ...Sender) *FallbackSender {
	return &FallbackSender{senders: senders, logg: logg}
}

func (f *FallbackSender) Send(ctx context.Context, msg Message) error {
	if len(f.senders) == 0 {
		return fmt.Errorf("no mail senders configured")
	}

	var errs error
	for _, sender := range f.senders {
		err := sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if f.logg != nil {
			f.logg.Warn(f.logg.WithField(ctx, "error", err.Error()), "mail sender failed, trying next")
		}
		errs = multierr.Append(errs, err)
	}
	return fmt.Errorf("all mail senders failed: %w", errs)
}

// NewSenderFromConfig wires the delivery chain for the configured mode:
// SMTP first, Brevo as fallback, a no-op sender when nothing is set.
func NewSenderFromConfig(cfg config.MailConfig, logg *logger.Logger) (Sender, error) {
	var chain []Sender

	if cfg.SMTPHost != "" {
		smtpSender, err := NewSMTPSender(cfg)
		if err != nil {
			return nil, err
		}
		chain = append(chain, smtpSender)
	}
	if cfg.BrevoAPIKey != "" {
		brevoSender, err := NewBrevoSender(cfg)
		if err != nil {
			return nil, err
		}
		chain = append(chain, brevoSender)
	}

	if len(chain) == 0 {
		return NopSender{}, nil
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return NewFallbackSender(logg, chain...), nil
}
