package dto

import "github.com/vibast-solutions/ms-go-contacts/app/entity"

type SignupResult struct {
	User *entity.User
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type RefreshResult struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   int64
}

type VerifyResetOTPResult struct {
	ResetToken string
}

type InviteResult struct {
	Token     string
	InviteURL string
}

type RedeemInviteResult struct {
	GroupID   uint64
	GroupName string
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
}
