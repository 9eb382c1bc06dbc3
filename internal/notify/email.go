package notify

import (
	"gopkg.in/gomail.v2"
)

// EmailSender delivers reminder emails over SMTP. gomail negotiates STARTTLS
// before authenticating on the standard submission port.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	if from == "" {
		from = username
	}
	return &EmailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a single plain-text message.
func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}
