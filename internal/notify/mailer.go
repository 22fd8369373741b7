package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends the workflow emails over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) SendSlotsProposed(ctx context.Context, msg SlotsProposed) error {
	subject := fmt.Sprintf("%s proposed interview times", msg.ProposerName)
	if msg.JobTitle == "" {
		subject = fmt.Sprintf("%s invited you to a coffee chat", msg.ProposerName)
	}

	body, err := renderSlotsProposed(msg)
	if err != nil {
		return fmt.Errorf("render slots proposed email: %w", err)
	}

	return m.send(ctx, msg.StudentEmail, subject, body)
}

func (m *Mailer) SendConfirmation(ctx context.Context, msg Confirmation) error {
	subject := "Your meeting is confirmed"
	if msg.JobTitle != "" {
		subject = fmt.Sprintf("Interview confirmed: %s", msg.JobTitle)
	}

	studentBody, err := renderConfirmation(msg, msg.StudentName, msg.CounterpartName)
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	if err := m.send(ctx, msg.StudentEmail, subject, studentBody); err != nil {
		return err
	}

	counterpartBody, err := renderConfirmation(msg, msg.CounterpartName, msg.StudentName)
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	return m.send(ctx, msg.CounterpartEmail, subject, counterpartBody)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.cfg.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
