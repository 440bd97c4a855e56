package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"file-manager-server/config"
	"file-manager-server/internal/util"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<h2>Welcome to File Manager, {{.Name}}!</h2>
<p>Please verify your email address to start uploading files.</p>
<p><a href="{{.Link}}">Verify Email</a></p>
<p>Or copy this link into your browser: {{.Link}}</p>
<p>This link expires in 24 hours.</p>`))

var resetTemplate = template.Must(template.New("reset").Parse(`<h2>Password Reset</h2>
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. Click the link below to choose a new one.</p>
<p><a href="{{.Link}}">Reset Password</a></p>
<p>This link expires in 1 hour. If you did not request a reset, ignore this email.</p>`))

type templateData struct {
	Name string
	Link string
}

// SMTPMailer : delivers account emails over plain SMTP with AUTH
type SMTPMailer struct {
	cfg     *config.SMTPConfig
	baseURL string
}

func NewSMTPMailer(cfg *config.SMTPConfig, baseURL string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, baseURL: baseURL}
}

func (mailer *SMTPMailer) SendVerificationEmail(ctx context.Context, email string, name string, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", mailer.baseURL, token)
	return mailer.send(email, "Verify your email address", verificationTemplate, templateData{Name: name, Link: link})
}

func (mailer *SMTPMailer) SendPasswordResetEmail(ctx context.Context, email string, name string, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", mailer.baseURL, token)
	return mailer.send(email, "Reset your password", resetTemplate, templateData{Name: name, Link: link})
}

func (mailer *SMTPMailer) send(to string, subject string, tmpl *template.Template, data templateData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return util.LogError("rendering email template failed", err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		mailer.cfg.From, to, subject, body.String())

	addr := fmt.Sprintf("%s:%s", mailer.cfg.Host, mailer.cfg.Port)
	auth := smtp.PlainAuth("", mailer.cfg.Username, mailer.cfg.Password, mailer.cfg.Host)

	if err := smtp.SendMail(addr, auth, mailer.cfg.From, []string{to}, []byte(msg)); err != nil {
		return util.LogError("sending email failed", err)
	}
	return nil
}
