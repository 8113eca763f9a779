package services

import (
	"crypto/tls"
	"fmt"

	"github.com/aloysiustan/teachrate-backend/internal/config"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
}

func NewEmailService(config *config.Config) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}

func (s *EmailService) SendPasswordResetEmail(email, resetToken, baseURL string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", baseURL, resetToken)

	subject := "Password Reset Request"
	body := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>We received a request to reset the password for the account associated with <strong>%s</strong>.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>Or copy and paste this link in your browser:</p>
		<p>%s</p>
		<p>This link expires in 1 hour. If you didn't request a reset, ignore this email.</p>
	`, email, resetLink, resetLink)

	return s.SendEmail(email, subject, body)
}
