package ports

import "context"

// Mailer : the outbound mail capability. Implementations own template
// rendering and delivery; callers only decide when a message goes out.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email string, name string, token string) error
	SendPasswordResetEmail(ctx context.Context, email string, name string, token string) error
}
