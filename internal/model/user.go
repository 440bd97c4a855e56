package model

import "time"

type User struct {
	ID                  string     `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	EmailVerified       bool       `db:"email_verified" json:"emailVerified"`
	VerificationToken   *string    `db:"verification_token" json:"-"`
	VerificationExpires *time.Time `db:"verification_expires" json:"-"`
	ResetToken          *string    `db:"reset_token" json:"-"`
	ResetExpires        *time.Time `db:"reset_expires" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}
