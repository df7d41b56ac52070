package config

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"

	"FoodExpiryTracker/internal/apperr"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailMessage is one outbound HTML email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

type emailSender interface {
	send(ctx context.Context, from mail.Address, msg EmailMessage) error
}

type EmailService struct {
	from   mail.Address
	sender emailSender
	logger *zap.Logger
}

// NewEmailService picks the transport named by MAIL_PROVIDER.
func NewEmailService(config *MailConfig, logger *zap.Logger) (*EmailService, error) {
	var sender emailSender
	switch config.Provider {
	case MailProviderResend:
		client := resend.NewClient(config.ResendAPIKey)
		if config.ResendAPIURL != "" {
			baseURL, err := url.Parse(config.ResendAPIURL)
			if err != nil {
				return nil, fmt.Errorf("%w: RESEND_API_URL: %w", apperr.ErrConfiguration, err)
			}
			client.BaseURL = baseURL
		}
		sender = &resendSender{client: client}
	case MailProviderSMTP:
		sender = &smtpSender{dialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)}
	default:
		return nil, fmt.Errorf("%w: unknown mail provider %q", apperr.ErrConfiguration, config.Provider)
	}

	logger.Info("email service initialized", zap.String("provider", config.Provider))
	return &EmailService{
		from:   mail.Address{Name: config.FromName, Address: config.From},
		sender: sender,
		logger: logger,
	}, nil
}

// SendEmail delivers msg. Failures wrap apperr.ErrTransport.
func (e *EmailService) SendEmail(ctx context.Context, msg EmailMessage) error {
	if err := e.sender.send(ctx, e.from, msg); err != nil {
		return fmt.Errorf("send email to %s: %w: %w", msg.To, apperr.ErrTransport, err)
	}
	e.logger.Info("email sent", zap.String("to", msg.To))
	return nil
}

type resendSender struct {
	client *resend.Client
}

func (s *resendSender) send(ctx context.Context, from mail.Address, msg EmailMessage) error {
	to := mail.Address{Name: msg.ToName, Address: msg.To}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from.String(),
		To:      []string{to.String()},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	return err
}

type smtpSender struct {
	dialer *gomail.Dialer
}

func (s *smtpSender) send(ctx context.Context, from mail.Address, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from.Address, from.Name)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return s.dialer.DialAndSend(m)
}
