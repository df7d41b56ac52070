package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"FoodExpiryTracker/internal/config"
)

const expiryAlertSubject = "Food Expiry Reminder - Items Expiring Today!"

var expiryAlertTemplate = template.Must(template.New("expiry-alert").Parse(`<div style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; color: #333; background-color: #f8f9fa; padding: 20px; border-radius: 8px; max-width: 600px; margin: auto;">
  <h2 style="color: #28a745; text-align: center;">Food Expiry Alert!</h2>
  <p style="font-size: 16px;">Hi <strong>{{.Name}}</strong>,</p>
  <p style="font-size: 16px;">
    Just a friendly reminder from <strong>Food Expiry Tracker</strong>: the following food items in your kitchen are
    <strong style="color: #dc3545;">expiring soon</strong>:
  </p>
  <ul style="background-color: #fff; padding: 15px 20px; border-left: 4px solid #28a745; border-radius: 6px; font-size: 16px;">
    {{- range .Items}}
    <li style="margin-bottom: 8px;">{{.}}</li>
    {{- end}}
  </ul>
  <p style="font-size: 16px;">Please take the time to <strong>consume or discard</strong> them to ensure freshness and avoid waste.</p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #ccc;" />
  <p style="font-size: 14px; color: #555;">Let's build a zero-waste kitchen, one alert at a time!</p>
  <p style="font-size: 14px; color: #555;">Team <strong style="color: #28a745;">Food Expiry Tracker</strong></p>
</div>`))

type emailSender interface {
	SendEmail(ctx context.Context, msg config.EmailMessage) error
}

// EmailMailer renders expiry alerts as HTML and hands them to the email service.
type EmailMailer struct {
	email emailSender
}

func NewEmailMailer(email *config.EmailService) *EmailMailer {
	return &EmailMailer{email: email}
}

func (m *EmailMailer) SendExpiryAlert(ctx context.Context, toEmail, toName string, items []string) error {
	body, err := RenderExpiryAlert(toName, items)
	if err != nil {
		return err
	}
	return m.email.SendEmail(ctx, config.EmailMessage{
		To:      toEmail,
		ToName:  toName,
		Subject: expiryAlertSubject,
		HTML:    body,
	})
}

// RenderExpiryAlert produces the HTML body. Item text is escaped.
func RenderExpiryAlert(name string, items []string) (string, error) {
	var buf bytes.Buffer
	err := expiryAlertTemplate.Execute(&buf, struct {
		Name  string
		Items []string
	}{Name: name, Items: items})
	if err != nil {
		return "", fmt.Errorf("render expiry alert: %w", err)
	}
	return buf.String(), nil
}
