package services

import (
	"fmt"
	"net/smtp"
	"os"
)

// EmailService sends owner notifications over plain SMTP.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	ownerTo  string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASS"),
		from:     os.Getenv("EMAIL_FROM"),
		ownerTo:  os.Getenv("CONTACT_NOTIFY_TO"),
	}
}

// NotifyContact emails a contact form submission to the shop owner.
// No-op when CONTACT_NOTIFY_TO is unset.
func (s *EmailService) NotifyContact(name, email, message string) error {
	if s.ownerTo == "" {
		return nil
	}
	subject := fmt.Sprintf("New contact message from %s", name)
	body := fmt.Sprintf("From: %s <%s>\r\n\r\n%s", name, email, message)
	return s.SendEmail([]string{s.ownerTo}, subject, body)
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
