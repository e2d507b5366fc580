package mail

import "gopkg.in/gomail.v2"

type WelcomeEmailData struct {
	Email       string
	ProductName string
	LoginURL    string
	LockDays    int
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	ProductName string
	LoginURL    string
	LockDays    int

	// Sender overrides SMTP delivery; nil dials Host for every message.
	Sender gomail.Sender
}
