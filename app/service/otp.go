package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/config"
)

var (
	ErrOTPNotFound = errors.New("no otp found")
	ErrOTPMismatch = errors.New("wrong otp")
	ErrOTPExpired  = errors.New("otp expired")
)

// OTPManager generates and checks the short numeric codes mailed to users
// for email verification and password reset.
type OTPManager struct {
	cfg config.OTPConfig
}

func NewOTPManager(cfg config.OTPConfig) *OTPManager {
	return &OTPManager{cfg: cfg}
}

// Generate returns a uniformly random numeric code of the configured
// length. Leading zeros are kept: the code is a string, not a number.
func (m *OTPManager) Generate() (string, error) {
	digits := m.cfg.Digits
	if digits < 6 {
		digits = 6
	}

	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// Check validates a supplied code against the one stored on the user.
// The returned cleared flag tells the caller to persist cleared OTP
// fields: it is true on success and on expiry, never on mismatch, so a
// mistyped code does not burn the stored one.
func (m *OTPManager) Check(user *entity.User, supplied string, now time.Time) (cleared bool, err error) {
	if !user.OTP.Valid || !user.OTPCreatedAt.Valid {
		return false, ErrOTPNotFound
	}

	if user.OTP.String != supplied {
		return false, ErrOTPMismatch
	}

	if now.Sub(user.OTPCreatedAt.Time) > m.cfg.TTL {
		clearOTP(user)
		return true, ErrOTPExpired
	}

	clearOTP(user)
	return true, nil
}

func clearOTP(user *entity.User) {
	user.OTP.Valid = false
	user.OTP.String = ""
	user.OTPCreatedAt.Valid = false
	user.OTPCreatedAt.Time = time.Time{}
}
