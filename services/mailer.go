package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends account notifications.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// SMTPConfig configures outgoing mail; an empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when SMTP is
// not configured.
func NewMailer(cfg SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{logger: logger}
	}
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		breaker: newCircuitBreaker("smtp"),
		logger:  logger,
	}
}

// newCircuitBreaker trips after at least 5 requests with 60% failures.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// SMTPMailer sends through an SMTP relay behind a circuit breaker.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your CRM account")
	msg.SetBody("text/plain", fmt.Sprintf("Hello %s,\n\nAn account has been created for you. Sign in with this email address and the password your administrator gave you.\n", name))

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	m.logger.Info("welcome mail sent", zap.String("to", to))
	return nil
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.logger.Debug("SMTP not configured, welcome mail skipped", zap.String("to", to))
	return nil
}
