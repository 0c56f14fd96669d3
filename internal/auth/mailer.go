package auth

import "log"

// Mailer delivers the magic-link email. The transport is an external
// collaborator; the console implementation keeps local development
// working without an email provider, the way the server logs one-time
// codes during tests.
type Mailer interface {
	SendMagicLink(to, link string) error
}

type ConsoleMailer struct {
	Logger *log.Logger
}

func (m ConsoleMailer) SendMagicLink(to, link string) error {
	logger := m.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[auth] magic link for %s: %s", to, link)
	return nil
}
