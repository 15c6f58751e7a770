package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/config"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrAlreadyMember    = errors.New("user already present in group")
	ErrNotMember        = errors.New("user is not a member of the group")
	ErrAdminCannotLeave = errors.New("admin cannot leave the group")
	ErrUsersNotFound    = errors.New("some users are not found")
)

type GroupService struct {
	groupRepo      *repository.GroupRepository
	membershipRepo *repository.MembershipRepository
	documentRepo   *repository.DocumentRepository
	userRepo       *repository.UserRepository
	tokens         *TokenService
	cfg            *config.Config
}

func NewGroupService(
	groupRepo *repository.GroupRepository,
	membershipRepo *repository.MembershipRepository,
	documentRepo *repository.DocumentRepository,
	userRepo *repository.UserRepository,
	tokens *TokenService,
	cfg *config.Config,
) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		documentRepo:   documentRepo,
		userRepo:       userRepo,
		tokens:         tokens,
		cfg:            cfg,
	}
}

// Create makes a group and enrolls the creator as its first member.
func (s *GroupService) Create(ctx context.Context, creatorID uint64, name, description, icon string) (*entity.Group, error) {
	now := time.Now()
	group := &entity.Group{
		Name:        name,
		Description: description,
		Icon:        icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	if _, err := s.membershipRepo.InsertIfAbsent(ctx, creatorID, group.ID); err != nil {
		return nil, err
	}

	return group, nil
}

func (s *GroupService) Detail(ctx context.Context, groupID uint64) (*entity.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID uint64, page, limit int) ([]*entity.Group, error) {
	return s.groupRepo.ListByMember(ctx, userID, (page-1)*limit, limit)
}

// ListAll enumerates every group, newest first, for the admin surface.
// Admins manage groups they are not members of, so ListForUser is not
// enough there.
func (s *GroupService) ListAll(ctx context.Context, page, limit int) ([]*entity.Group, error) {
	return s.groupRepo.ListAll(ctx, (page-1)*limit, limit)
}

func (s *GroupService) Members(ctx context.Context, groupID uint64) ([]*entity.User, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.membershipRepo.Members(ctx, groupID)
}

// AddMembers enrolls the given users. Every id must refer to an existing
// user; users already in the group are skipped.
func (s *GroupService) AddMembers(ctx context.Context, groupID uint64, userIDs []uint64) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	for _, id := range userIDs {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUsersNotFound
		}
	}

	for _, id := range userIDs {
		if _, err := s.membershipRepo.InsertIfAbsent(ctx, id, groupID); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMembers takes users out of a group along with the documents they
// sent to it. Every id must refer to an existing user; the acting admin
// cannot remove themselves.
func (s *GroupService) RemoveMembers(ctx context.Context, actorID, groupID uint64, userIDs []uint64) error {
	for _, id := range userIDs {
		if id == actorID {
			return ErrAdminCannotLeave
		}
	}

	for _, id := range userIDs {
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUsersNotFound
		}
	}

	for _, id := range userIDs {
		if _, err := s.membershipRepo.Delete(ctx, id, groupID); err != nil {
			return err
		}
		if err := s.documentRepo.DeleteByGroupAndSender(ctx, groupID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *GroupService) Leave(ctx context.Context, user *entity.User, groupID uint64) error {
	if user.Role == entity.RoleAdmin {
		return ErrAdminCannotLeave
	}

	deleted, err := s.membershipRepo.Delete(ctx, user.ID, groupID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotMember
	}

	return s.documentRepo.DeleteByGroupAndSender(ctx, groupID, user.ID)
}

// DeleteGroup removes the group and cascades memberships and documents.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID uint64) error {
	if err := s.membershipRepo.DeleteByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.documentRepo.DeleteByGroup(ctx, groupID); err != nil {
		return err
	}
	return s.groupRepo.Delete(ctx, groupID)
}

// GenerateInvite signs an invite token scoped to the group and returns it
// with a shareable URL. Invites are valid until expiry; regenerating does
// not revoke previously issued tokens.
func (s *GroupService) GenerateInvite(ctx context.Context, groupID uint64) (*dto.InviteResult, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	token, err := s.tokens.SignInviteToken(groupID)
	if err != nil {
		return nil, err
	}

	return &dto.InviteResult{
		Token:     token,
		InviteURL: s.cfg.FrontendURL + "/invite/" + token,
	}, nil
}

// ValidateInvite is side-effect-free; clients use it to preview an invite
// before committing.
func (s *GroupService) ValidateInvite(token string) (uint64, error) {
	claims, err := s.tokens.VerifyInviteToken(token)
	if err != nil {
		return 0, err
	}
	return claims.GroupID, nil
}

// RedeemInvite turns a valid invite token into a membership. Redemption
// is deliberately not idempotent: redeeming twice is a conflict, not a
// no-op. The membership insert is atomic, so concurrent redemptions for
// the same pair cannot both succeed.
func (s *GroupService) RedeemInvite(ctx context.Context, userID uint64, token string) (*dto.RedeemInviteResult, error) {
	claims, err := s.tokens.VerifyInviteToken(token)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(ctx, claims.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	inserted, err := s.membershipRepo.InsertIfAbsent(ctx, userID, group.ID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyMember
	}

	return &dto.RedeemInviteResult{
		GroupID:   group.ID,
		GroupName: group.Name,
	}, nil
}

// SaveDocuments records uploaded files for a group. Only members may
// send documents.
func (s *GroupService) SaveDocuments(ctx context.Context, senderID, groupID uint64, files []StoredFile) ([]*entity.Document, error) {
	member, err := s.membershipRepo.Exists(ctx, senderID, groupID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	docs := make([]*entity.Document, 0, len(files))
	for _, f := range files {
		doc := &entity.Document{
			GroupID:   groupID,
			SenderID:  senderID,
			URL:       f.URL,
			FileName:  f.OriginalName,
			FileExt:   f.Ext,
			CreatedAt: time.Now(),
		}
		if err := s.documentRepo.Create(ctx, doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *GroupService) Documents(ctx context.Context, groupID uint64, page, limit int) (*dto.PageResult[*entity.Document], error) {
	docs, err := s.documentRepo.ListByGroup(ctx, groupID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.documentRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &dto.PageResult[*entity.Document]{
		Items:      docs,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// DeleteDocuments removes the selected documents. Admins delete any;
// everyone else only their own.
func (s *GroupService) DeleteDocuments(ctx context.Context, user *entity.User, ids []uint64) error {
	if user.Role == entity.RoleAdmin {
		return s.documentRepo.DeleteByIDs(ctx, ids, 0)
	}
	return s.documentRepo.DeleteByIDs(ctx, ids, user.ID)
}
