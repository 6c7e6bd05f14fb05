package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"rental-backend/internal/config"
)

// EmailSender delivers a notification over SMTP. When SMTP credentials are
// absent the send is logged instead so local setups still work.
type EmailSender struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func NewEmailSender(env config.Env) EmailSender {
	return EmailSender{
		Host:     env.SMTPHost,
		Port:     env.SMTPPort,
		Username: env.SMTPUser,
		Password: env.SMTPPass,
		FromName: env.SMTPFrom,
	}
}

func (s EmailSender) Send(recipient, subject, message string) error {
	if s.Host == "" || s.Username == "" || s.Password == "" {
		log.Printf("[MOCK EMAIL] to:%s subject:%s", recipient, subject)
		return nil
	}

	safe := func(v string) string {
		return strings.ReplaceAll(strings.TrimSpace(v), "\r\n", " ")
	}
	subject = safe(subject)

	from := fmt.Sprintf("%s <%s>", s.FromName, s.Username)
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		message,
	}, "\r\n")

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	return smtp.SendMail(addr, auth, s.Username, []string{recipient}, []byte(msg))
}
