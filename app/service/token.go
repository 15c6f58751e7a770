package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

// SessionClaims is the claim shape shared by access and refresh tokens.
type SessionClaims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// InviteClaims carries only the group id. An invite token grants nothing
// beyond the right to redeem membership in that group.
type InviteClaims struct {
	GroupID uint64 `json:"group_id"`
	jwt.RegisteredClaims
}

type ResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the four bearer token categories, each
// under its own secret and TTL so one kind can never pass as another.
type TokenService struct {
	cfg config.JWTConfig
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

func (s *TokenService) SignAccessToken(user *entity.User) (string, error) {
	return s.signSession(user, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
}

func (s *TokenService) SignRefreshToken(user *entity.User) (string, error) {
	return s.signSession(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
}

func (s *TokenService) SignInviteToken(groupID uint64) (string, error) {
	claims := &InviteClaims{
		GroupID: groupID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.InviteTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.InviteSecret))
}

func (s *TokenService) SignResetToken(email string) (string, error) {
	claims := &ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.ResetTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.ResetSecret))
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.verify(tokenString, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.verify(tokenString, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) VerifyInviteToken(tokenString string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	if err := s.verify(tokenString, claims, s.cfg.InviteSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) VerifyResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.verify(tokenString, claims, s.cfg.ResetSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) signSession(user *entity.User, secret string, ttl time.Duration) (string, error) {
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// verify distinguishes expiry from any other defect so callers can return
// distinct 401 responses.
func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
