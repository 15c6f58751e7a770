package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrEmailNotVerified   = errors.New("provider email not verified")
	ErrResetTokenMismatch = errors.New("reset token does not match the stored one")
	ErrMailDelivery       = errors.New("failed to deliver mail")
)

// GoogleProfile is the identity assertion extracted from Google's userinfo
// endpoint. EmailVerified comes from Google, not from us.
type GoogleProfile struct {
	Sub           string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Picture       string
}

// AuthService drives the session lifecycle: signup with OTP verification,
// password and Google login, refresh, logout and the password-reset flow.
// One refresh token is stored per user, so each login supersedes the
// previous session. Access tokens stay valid until natural expiry; logout
// does not blacklist them.
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *TokenService
	otp      *OTPManager
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(
	userRepo *repository.UserRepository,
	tokens *TokenService,
	otp *OTPManager,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		otp:      otp,
		mailer:   mailer,
		cfg:      cfg,
	}
}

func (s *AuthService) Signup(ctx context.Context, firstName, lastName, email, password string) (*dto.SignupResult, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	otp, err := s.otp.Generate()
	if err != nil {
		return nil, err
	}

	if err = s.deliverOTP(ctx, email, otp); err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: sql.NullString{String: string(hashedPassword), Valid: true},
		IsVerified:   false,
		OTP:          sql.NullString{String: otp, Valid: true},
		OTPCreatedAt: sql.NullTime{Time: now, Valid: true},
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return &dto.SignupResult{User: user}, nil
}

// VerifyEmail consumes the signup OTP and opens the first session. Expiry
// clears the stored OTP even though verification fails; a mismatch leaves
// it in place for another attempt.
func (s *AuthService) VerifyEmail(ctx context.Context, email, suppliedOTP string) (*dto.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	cleared, checkErr := s.otp.Check(user, suppliedOTP, time.Now())
	if checkErr != nil {
		if cleared {
			if err = s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return nil, checkErr
	}

	user.IsVerified = true
	return s.openSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// OAuth-only accounts have no password hash to compare against.
	if !user.PasswordHash.Valid {
		return nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}

	return s.openSession(ctx, user)
}

// AuthGoogle signs a user in from a Google identity assertion, creating
// the record on first sight. OTP verification is skipped: Google already
// verified the address.
func (s *AuthService) AuthGoogle(ctx context.Context, profile GoogleProfile) (*dto.AuthResult, error) {
	if !profile.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	user, err := s.userRepo.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		now := time.Now()
		user = &entity.User{
			Email:      profile.Email,
			FirstName:  profile.GivenName,
			LastName:   profile.FamilyName,
			IsVerified: true,
			Role:       entity.RoleUser,
			Avatar:     sql.NullString{String: profile.Picture, Valid: profile.Picture != ""},
			GoogleID:   sql.NullString{String: profile.Sub, Valid: profile.Sub != ""},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err = s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		logrus.WithField("email", profile.Email).Info("User provisioned from Google sign-in")
	}

	return s.openSession(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

// RefreshAccessToken exchanges a refresh token for a new access token.
// The supplied token must match the one stored for the user, so a token
// from a superseded session fails even with a valid signature. The
// refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*dto.RefreshResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if !user.RefreshToken.Valid || user.RefreshToken.String != refreshToken {
		return nil, ErrInvalidToken
	}

	accessToken, err := s.tokens.SignAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.JWT.AccessTokenTTL.Seconds()),
	}, nil
}

// SendResetOTP issues a reset OTP together with a signed reset token
// stored on the user record. A later request overwrites both, which
// invalidates the earlier token through the stored-match check.
func (s *AuthService) SendResetOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	otp, err := s.otp.Generate()
	if err != nil {
		return err
	}

	resetToken, err := s.tokens.SignResetToken(email)
	if err != nil {
		return err
	}

	if err = s.deliverOTP(ctx, email, otp); err != nil {
		return err
	}

	now := time.Now()
	user.OTP = sql.NullString{String: otp, Valid: true}
	user.OTPCreatedAt = sql.NullTime{Time: now, Valid: true}
	user.ResetToken = sql.NullString{String: resetToken, Valid: true}

	return s.userRepo.Update(ctx, user)
}

// VerifyResetOTP consumes the OTP and hands back the reset token issued
// by SendResetOTP.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, suppliedOTP string) (*dto.VerifyResetOTPResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	cleared, checkErr := s.otp.Check(user, suppliedOTP, time.Now())
	if checkErr != nil {
		if cleared {
			if err = s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return nil, checkErr
	}

	if !user.ResetToken.Valid {
		return nil, ErrInvalidToken
	}

	if err = s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &dto.VerifyResetOTPResult{ResetToken: user.ResetToken.String}, nil
}

// ResetPassword requires the token to both verify cryptographically and
// match the value still stored on the user record: a token superseded by
// a newer reset request is refusable even though its signature holds.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.VerifyResetToken(resetToken)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !user.ResetToken.Valid || user.ResetToken.String != resetToken {
		return ErrResetTokenMismatch
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = sql.NullString{String: string(hashedPassword), Valid: true}
	user.ResetToken = sql.NullString{Valid: false}
	// Force re-login everywhere after a password reset.
	user.RefreshToken = sql.NullString{Valid: false}

	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) Profile(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) UpdateAvatar(ctx context.Context, userID uint64, avatarURL string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.Avatar = sql.NullString{String: avatarURL, Valid: true}
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*SessionClaims, error) {
	return s.tokens.VerifyAccessToken(tokenString)
}

func (s *AuthService) openSession(ctx context.Context, user *entity.User) (*dto.AuthResult, error) {
	accessToken, err := s.tokens.SignAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.SignRefreshToken(user)
	if err != nil {
		return nil, err
	}

	user.RefreshToken = sql.NullString{String: refreshToken, Valid: true}
	if err = s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &dto.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) deliverOTP(ctx context.Context, email, otp string) error {
	subject, body := otpEmailBody(otp, int(s.cfg.OTP.TTL.Minutes()))
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		if !s.cfg.OTP.PersistOnMailFailure {
			return ErrMailDelivery
		}
		logrus.WithError(err).WithField("email", email).Warn("OTP mail delivery failed, persisting OTP anyway")
	}
	return nil
}
