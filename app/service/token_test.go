package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		InviteSecret:    "invite-secret",
		ResetSecret:     "reset-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		InviteTokenTTL:  7 * 24 * time.Hour,
		ResetTokenTTL:   15 * time.Minute,
	}
}

func testUser() *entity.User {
	return &entity.User{
		ID:    1,
		Email: "jane@example.com",
		Role:  entity.RoleUser,
	}
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	tokens := service.NewTokenService(testJWTConfig())

	signed, err := tokens.SignAccessToken(testUser())
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := tokens.VerifyAccessToken(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != 1 || claims.Email != "jane@example.com" || claims.Role != entity.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_SecretsAreNotInterchangeable(t *testing.T) {
	tokens := service.NewTokenService(testJWTConfig())

	refresh, err := tokens.SignRefreshToken(testUser())
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := tokens.VerifyAccessToken(refresh); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token on access secret, got %v", err)
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	tokens := service.NewTokenService(cfg)

	signed, err := tokens.SignAccessToken(testUser())
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := tokens.VerifyAccessToken(signed); !errors.Is(err, service.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_RejectsNonHMACAlgorithm(t *testing.T) {
	tokens := service.NewTokenService(testJWTConfig())

	// alg=none tokens must never verify, whatever their payload says.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &service.SessionClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := tokens.VerifyAccessToken(signed); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_GarbageToken(t *testing.T) {
	tokens := service.NewTokenService(testJWTConfig())

	if _, err := tokens.VerifyAccessToken("not-a-jwt"); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_InviteTokenRoundTrip(t *testing.T) {
	tokens := service.NewTokenService(testJWTConfig())

	signed, err := tokens.SignInviteToken(42)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := tokens.VerifyInviteToken(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.GroupID != 42 {
		t.Fatalf("expected group 42, got %d", claims.GroupID)
	}
}

func TestTokenService_ResetTokenRoundTrip(t *testing.T) {
	tokens := service.NewTokenService(testJWTConfig())

	signed, err := tokens.SignResetToken("jane@example.com")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := tokens.VerifyResetToken(signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Email != "jane@example.com" {
		t.Fatalf("unexpected email: %q", claims.Email)
	}
}
