package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

const (
	findUserByEmailQuery = `(?s)SELECT id, email, first_name, last_name, password_hash, is_verified, otp, otp_created_at,\s+reset_token, refresh_token, role, avatar, google_id, created_at, updated_at\s+FROM users WHERE email = \?`
	findUserByIDQuery    = `(?s)SELECT id, email, first_name, last_name, password_hash, is_verified, otp, otp_created_at,\s+reset_token, refresh_token, role, avatar, google_id, created_at, updated_at\s+FROM users WHERE id = \?`
	insertUserQuery      = `(?s)INSERT INTO users \(email, first_name, last_name, password_hash, is_verified, otp, otp_created_at, role, avatar, google_id, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?, \?, \?, \?\)`
	updateUserQuery      = `(?s)UPDATE users SET\s+email = \?,\s+first_name = \?,\s+last_name = \?,\s+password_hash = \?,\s+is_verified = \?,\s+otp = \?,\s+otp_created_at = \?,\s+reset_token = \?,\s+refresh_token = \?,\s+role = \?,\s+avatar = \?,\s+google_id = \?,\s+updated_at = \?\s+WHERE id = \?`
	clearRefreshQuery    = `(?s)UPDATE users SET refresh_token = NULL, updated_at = \? WHERE id = \?`
)

var userColumns = []string{
	"id",
	"email",
	"first_name",
	"last_name",
	"password_hash",
	"is_verified",
	"otp",
	"otp_created_at",
	"reset_token",
	"refresh_token",
	"role",
	"avatar",
	"google_id",
	"created_at",
	"updated_at",
}

type recordedMail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer captures outgoing mail instead of sending it.
type recordingMailer struct {
	sent []recordedMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, recordedMail{To: to, Subject: subject, Body: html})
	return nil
}

type authFixture struct {
	svc    *service.AuthService
	tokens *service.TokenService
	mock   sqlmock.Sqlmock
	mailer *recordingMailer
	cfg    *config.Config
}

func newAuthFixture(t *testing.T) (*authFixture, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	cfg := &config.Config{
		FrontendURL: "http://localhost:5173",
		JWT:         testJWTConfig(),
		OTP:         testOTPConfig(),
		Mail:        config.MailConfig{DevMode: true},
	}
	mailer := &recordingMailer{}
	tokens := service.NewTokenService(cfg.JWT)
	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		tokens,
		service.NewOTPManager(cfg.OTP),
		mailer,
		cfg,
	)

	fixture := &authFixture{svc: svc, tokens: tokens, mock: mock, mailer: mailer, cfg: cfg}
	return fixture, func() { _ = db.Close() }
}

func storedUserRow(user *entity.User) []driver.Value {
	return []driver.Value{
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsVerified,
		user.OTP,
		user.OTPCreatedAt,
		user.ResetToken,
		user.RefreshToken,
		user.Role,
		user.Avatar,
		user.GoogleID,
		user.CreatedAt,
		user.UpdatedAt,
	}
}

func hashPassword(t *testing.T, password string) sql.NullString {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return sql.NullString{String: string(hash), Valid: true}
}

func TestAuthService_Signup(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnError(sql.ErrNoRows)
	fixture.mock.ExpectExec(insertUserQuery).
		WithArgs(
			"jane@example.com",
			"Jane",
			"Doe",
			sqlmock.AnyArg(),
			false,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			entity.RoleUser,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result, err := fixture.svc.Signup(context.Background(), "Jane", "Doe", "jane@example.com", "secret123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if result.User.ID != 1 || result.User.IsVerified {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if !result.User.OTP.Valid || len(result.User.OTP.String) != 6 {
		t.Fatalf("expected a 6-digit otp on the user, got %+v", result.User.OTP)
	}

	if len(fixture.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(fixture.mailer.sent))
	}
	if fixture.mailer.sent[0].To != "jane@example.com" {
		t.Fatalf("mail sent to %q", fixture.mailer.sent[0].To)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	existing := &entity.User{ID: 1, Email: "jane@example.com", Role: entity.RoleUser}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(existing)...))

	_, err := fixture.svc.Signup(context.Background(), "Jane", "Doe", "jane@example.com", "secret123")
	if !errors.Is(err, service.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Signup_MailFailureRespectsPolicy(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	fixture.cfg.OTP.PersistOnMailFailure = false
	fixture.mailer.err = errors.New("smtp down")

	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := fixture.svc.Signup(context.Background(), "Jane", "Doe", "jane@example.com", "secret123")
	if !errors.Is(err, service.ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		FirstName:    "Jane",
		LastName:     "Doe",
		PasswordHash: hashPassword(t, "secret123"),
		OTP:          sql.NullString{String: "123456", Valid: true},
		OTPCreatedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Role:         entity.RoleUser,
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))
	fixture.mock.ExpectExec(updateUserQuery).
		WithArgs(
			user.Email,
			user.FirstName,
			user.LastName,
			user.PasswordHash,
			true,
			sql.NullString{},
			sql.NullTime{},
			sql.NullString{},
			sqlmock.AnyArg(),
			user.Role,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			user.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := fixture.svc.VerifyEmail(context.Background(), "jane@example.com", "123456")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.User.IsVerified {
		t.Fatal("expected user to be verified")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a session to be opened")
	}

	claims, err := fixture.tokens.VerifyAccessToken(result.AccessToken)
	if err != nil || claims.UserID != 1 {
		t.Fatalf("issued access token does not verify: %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_VerifyEmail_WrongOTPKeepsCode(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		OTP:          sql.NullString{String: "123456", Valid: true},
		OTPCreatedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Role:         entity.RoleUser,
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	// No update expected: a mismatch must not touch the stored code.
	_, err := fixture.svc.VerifyEmail(context.Background(), "jane@example.com", "000000")
	if !errors.Is(err, service.ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_VerifyEmail_ExpiredOTPCleared(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		OTP:          sql.NullString{String: "123456", Valid: true},
		OTPCreatedAt: sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
		Role:         entity.RoleUser,
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))
	fixture.mock.ExpectExec(updateUserQuery).
		WithArgs(
			user.Email,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			false,
			sql.NullString{},
			sql.NullTime{},
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			user.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := fixture.svc.VerifyEmail(context.Background(), "jane@example.com", "123456")
	if !errors.Is(err, service.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		IsVerified:   true,
		Role:         entity.RoleUser,
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	_, err := fixture.svc.Login(context.Background(), "jane@example.com", "wrong")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := fixture.svc.Login(context.Background(), "nobody@example.com", "secret123")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Login_UnverifiedAccount(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		IsVerified:   false,
		Role:         entity.RoleUser,
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	_, err := fixture.svc.Login(context.Background(), "jane@example.com", "secret123")
	if !errors.Is(err, service.ErrAccountNotVerified) {
		t.Fatalf("expected ErrAccountNotVerified, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:         1,
		Email:      "jane@example.com",
		IsVerified: true,
		Role:       entity.RoleUser,
		GoogleID:   sql.NullString{String: "google-sub", Valid: true},
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	_, err := fixture.svc.Login(context.Background(), "jane@example.com", "anything")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for password-less account, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_AuthGoogle_ProvisionsUser(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnError(sql.ErrNoRows)
	fixture.mock.ExpectExec(insertUserQuery).
		WithArgs(
			"jane@example.com",
			"Jane",
			"Doe",
			sql.NullString{},
			true,
			sql.NullString{},
			sql.NullTime{},
			entity.RoleUser,
			sql.NullString{String: "http://pic", Valid: true},
			sql.NullString{String: "google-sub", Valid: true},
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	fixture.mock.ExpectExec(updateUserQuery).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), uint64(1),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := fixture.svc.AuthGoogle(context.Background(), service.GoogleProfile{
		Sub:           "google-sub",
		Email:         "jane@example.com",
		EmailVerified: true,
		GivenName:     "Jane",
		FamilyName:    "Doe",
		Picture:       "http://pic",
	})
	if err != nil {
		t.Fatalf("google auth failed: %v", err)
	}
	if !result.User.IsVerified || result.AccessToken == "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_AuthGoogle_UnverifiedEmail(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	_, err := fixture.svc.AuthGoogle(context.Background(), service.GoogleProfile{
		Email:         "jane@example.com",
		EmailVerified: false,
	})
	if !errors.Is(err, service.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestAuthService_RefreshAccessToken(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{ID: 1, Email: "jane@example.com", IsVerified: true, Role: entity.RoleUser}
	refreshToken, err := fixture.tokens.SignRefreshToken(user)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	user.RefreshToken = sql.NullString{String: refreshToken, Valid: true}

	fixture.mock.ExpectQuery(findUserByIDQuery).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	result, err := fixture.svc.RefreshAccessToken(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected a new access token")
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_RefreshAccessToken_SupersededToken(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{ID: 1, Email: "jane@example.com", IsVerified: true, Role: entity.RoleUser}
	oldToken, err := fixture.tokens.SignRefreshToken(user)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	// The stored token belongs to a newer session.
	user.RefreshToken = sql.NullString{String: "another-session-token", Valid: true}

	fixture.mock.ExpectQuery(findUserByIDQuery).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	_, err = fixture.svc.RefreshAccessToken(context.Background(), oldToken)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for superseded token, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	fixture.mock.ExpectExec(clearRefreshQuery).
		WithArgs(sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := fixture.svc.Logout(context.Background(), 1); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "old-password"),
		IsVerified:   true,
		Role:         entity.RoleUser,
	}

	// Request the reset OTP.
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))
	fixture.mock.ExpectExec(updateUserQuery).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), uint64(1),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := fixture.svc.SendResetOTP(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("send reset otp failed: %v", err)
	}
	if len(fixture.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(fixture.mailer.sent))
	}

	// The service stored the OTP and a signed reset token on the user;
	// replay that state for the verify step.
	resetToken, err := fixture.tokens.SignResetToken("jane@example.com")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	user.OTP = sql.NullString{String: "123456", Valid: true}
	user.OTPCreatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	user.ResetToken = sql.NullString{String: resetToken, Valid: true}

	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))
	fixture.mock.ExpectExec(updateUserQuery).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), uint64(1),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	verifyResult, err := fixture.svc.VerifyResetOTP(context.Background(), "jane@example.com", "123456")
	if err != nil {
		t.Fatalf("verify reset otp failed: %v", err)
	}
	if verifyResult.ResetToken != resetToken {
		t.Fatal("expected the stored reset token to be returned")
	}

	// Reset the password with the returned token.
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))
	fixture.mock.ExpectExec(updateUserQuery).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sql.NullString{},
			sql.NullString{}, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), uint64(1),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := fixture.svc.ResetPassword(context.Background(), resetToken, "new-password"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_ResetPassword_SupersededToken(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	oldToken, err := fixture.tokens.SignResetToken("jane@example.com")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	user := &entity.User{
		ID:         1,
		Email:      "jane@example.com",
		IsVerified: true,
		Role:       entity.RoleUser,
		ResetToken: sql.NullString{String: "a-newer-token", Valid: true},
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	err = fixture.svc.ResetPassword(context.Background(), oldToken, "new-password")
	if !errors.Is(err, service.ErrResetTokenMismatch) {
		t.Fatalf("expected ErrResetTokenMismatch, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthService_VerifyResetOTP_NoPendingReset(t *testing.T) {
	fixture, cleanup := newAuthFixture(t)
	defer cleanup()

	// An OTP exists but no reset token was stored alongside it.
	user := &entity.User{
		ID:           1,
		Email:        "jane@example.com",
		OTP:          sql.NullString{String: "123456", Valid: true},
		OTPCreatedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Role:         entity.RoleUser,
	}
	fixture.mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(storedUserRow(user)...))

	_, err := fixture.svc.VerifyResetOTP(context.Background(), "jane@example.com", "123456")
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if err := fixture.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
