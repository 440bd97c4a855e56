package mail

import (
	"context"
	"log"
)

// LogMailer : stands in when no SMTP credentials are configured. Logs the
// token so local setups can complete the verification flow by hand.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) SendVerificationEmail(ctx context.Context, email string, name string, token string) error {
	log.Printf("mail disabled: verification token for %s is %s", email, token)
	return nil
}

func (LogMailer) SendPasswordResetEmail(ctx context.Context, email string, name string, token string) error {
	log.Printf("mail disabled: password reset token for %s is %s", email, token)
	return nil
}
