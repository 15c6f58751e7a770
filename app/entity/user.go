package entity

import (
	"database/sql"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User carries both local-credential and Google-provisioned accounts.
// PasswordHash is null for accounts created through OAuth. OTP and
// OTPCreatedAt are always set or cleared together.
type User struct {
	ID           uint64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash sql.NullString
	IsVerified   bool
	OTP          sql.NullString
	OTPCreatedAt sql.NullTime
	ResetToken   sql.NullString
	RefreshToken sql.NullString
	Role         string
	Avatar       sql.NullString
	GoogleID     sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
