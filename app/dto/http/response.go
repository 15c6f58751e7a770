package http

import "github.com/vibast-solutions/ms-go-contacts/app/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID         uint64 `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Avatar     string `json:"avatar,omitempty"`
	IsVerified bool   `json:"is_verified"`
	Role       string `json:"role"`
}

func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Avatar:     user.Avatar.String,
		IsVerified: user.IsVerified,
		Role:       user.Role,
	}
}

func NewUserResponses(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

type SignupResponse struct {
	UserID  uint64 `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

type RefreshTokenResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

type VerifyResetOTPResponse struct {
	ResetToken string `json:"reset_token"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type ContactResponse struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Age   int    `json:"age"`
}

func NewContactResponse(contact *entity.Contact) ContactResponse {
	return ContactResponse{
		ID:    contact.ID,
		Name:  contact.Name,
		Email: contact.Email,
		Phone: contact.Phone,
		Age:   contact.Age,
	}
}

type ContactPageResponse struct {
	Contacts   []ContactResponse `json:"contacts"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

type GroupResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

func NewGroupResponse(group *entity.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Icon:        group.Icon,
	}
}

type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type MembersResponse struct {
	Members []UserResponse `json:"members"`
}

type InviteResponse struct {
	Token     string `json:"token"`
	InviteURL string `json:"invite_url"`
}

type ValidateInviteResponse struct {
	GroupID uint64 `json:"group_id"`
}

type RedeemInviteResponse struct {
	GroupID   uint64 `json:"group_id"`
	GroupName string `json:"group_name"`
	Message   string `json:"message"`
}

type DocumentResponse struct {
	ID       uint64 `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileExt  string `json:"file_ext"`
	SenderID uint64 `json:"sender_id"`
}

func NewDocumentResponse(doc *entity.Document) DocumentResponse {
	return DocumentResponse{
		ID:       doc.ID,
		URL:      doc.URL,
		FileName: doc.FileName,
		FileExt:  doc.FileExt,
		SenderID: doc.SenderID,
	}
}

type DocumentPageResponse struct {
	Documents  []DocumentResponse `json:"documents"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

type UserPageResponse struct {
	Users      []UserResponse `json:"users"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}
