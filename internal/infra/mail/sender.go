package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/welcome.html
var templatesFS embed.FS

var welcomeTemplate = template.Must(template.ParseFS(templatesFS, "templates/welcome.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		From:        from,
		ProductName: "Leadgen",
		LockDays:    180,
	}
}

func (s *EmailSender) SendWelcome(to string) error {
	m, err := s.welcomeMessage(to)
	if err != nil {
		return err
	}

	if s.Sender != nil {
		if err := gomail.Send(s.Sender, m); err != nil {
			return fmt.Errorf("send welcome email: %w", err)
		}
		return nil
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome email via SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) welcomeMessage(to string) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, WelcomeEmailData{
		Email:       to,
		ProductName: s.ProductName,
		LoginURL:    s.LoginURL,
		LockDays:    s.LockDays,
	}); err != nil {
		return nil, fmt.Errorf("render welcome email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Välkommen till %s", s.ProductName))
	m.SetBody("text/html", body.String())
	return m, nil
}
