package service

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
)

// AdminService covers the user-administration surface: listing, search
// and account deletion with its cascades.
type AdminService struct {
	userRepo       *repository.UserRepository
	contactRepo    *repository.ContactRepository
	membershipRepo *repository.MembershipRepository
	documentRepo   *repository.DocumentRepository
}

func NewAdminService(
	userRepo *repository.UserRepository,
	contactRepo *repository.ContactRepository,
	membershipRepo *repository.MembershipRepository,
	documentRepo *repository.DocumentRepository,
) *AdminService {
	return &AdminService{
		userRepo:       userRepo,
		contactRepo:    contactRepo,
		membershipRepo: membershipRepo,
		documentRepo:   documentRepo,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, page, limit int, sortField string) (*dto.PageResult[*entity.User], error) {
	users, err := s.userRepo.List(ctx, sortField, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.PageResult[*entity.User]{
		Items:      users,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *AdminService) SearchUsers(ctx context.Context, term string, page, limit int, sortField string) (*dto.PageResult[*entity.User], error) {
	term = strings.TrimSpace(term)

	users, err := s.userRepo.Search(ctx, term, sortField, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.userRepo.CountSearch(ctx, term)
	if err != nil {
		return nil, err
	}

	return &dto.PageResult[*entity.User]{
		Items:      users,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *AdminService) UserDetail(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteUser removes an account and everything hanging off it: contacts,
// sent documents, memberships, then the user row.
func (s *AdminService) DeleteUser(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err = s.contactRepo.DeleteByOwner(ctx, userID); err != nil {
		return err
	}
	if err = s.documentRepo.DeleteBySender(ctx, userID); err != nil {
		return err
	}
	if err = s.membershipRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}
