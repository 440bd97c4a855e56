package requestresponse

// RegisterRequest : registration body
type RegisterRequest struct {
	Name     string `json:"name" example:"Jane Doe"`
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LoginRequest : authentication body
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LoginResponse : successful authentication
type LoginResponse struct {
	Message string       `json:"message" example:"Login successful"`
	Token   string       `json:"token,omitempty"`
	User    UserResponse `json:"user"`
}

// UserResponse : public view of a user row
type UserResponse struct {
	ID            string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Name          string `json:"name" example:"Jane Doe"`
	Email         string `json:"email" example:"jane@example.com"`
	EmailVerified bool   `json:"emailVerified" example:"true"`
}

// EmailRequest : body carrying only an email (resend-verification, forgot-password)
type EmailRequest struct {
	Email string `json:"email" example:"jane@example.com"`
}

// ResetPasswordRequest : password reset redemption body
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password" example:"NewP@ssw0rd"`
}

// MessageResponse : generic confirmation; EmailSent reports the mail capability outcome
type MessageResponse struct {
	Message   string `json:"message"`
	EmailSent *bool  `json:"emailSent,omitempty"`
}

// ErrorResponse : standard error envelope
type ErrorResponse struct {
	Error   string `json:"error" example:"Bad Request"`
	Message string `json:"message" example:"invalid email address"`
	Code    int    `json:"code" example:"400"`
}
