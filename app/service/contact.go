package service

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrNotContactOwner = errors.New("contact belongs to another user")
)

type ContactService struct {
	contactRepo *repository.ContactRepository
}

func NewContactService(contactRepo *repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

func (s *ContactService) Add(ctx context.Context, ownerID uint64, name, email, phone string, age int) (*entity.Contact, error) {
	now := time.Now()
	contact := &entity.Contact{
		OwnerID:   ownerID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Age:       age,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, ownerID uint64, page, limit int, sortField string) (*dto.PageResult[*entity.Contact], error) {
	contacts, err := s.contactRepo.ListByOwner(ctx, ownerID, sortField, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.contactRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &dto.PageResult[*entity.Contact]{
		Items:      contacts,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *ContactService) Search(ctx context.Context, ownerID uint64, term string, page, limit int, sortField string) (*dto.PageResult[*entity.Contact], error) {
	contacts, err := s.contactRepo.Search(ctx, ownerID, term, sortField, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.contactRepo.CountSearch(ctx, ownerID, term)
	if err != nil {
		return nil, err
	}

	return &dto.PageResult[*entity.Contact]{
		Items:      contacts,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *ContactService) Detail(ctx context.Context, ownerID, contactID uint64) (*entity.Contact, error) {
	return s.findOwned(ctx, ownerID, contactID)
}

func (s *ContactService) Edit(ctx context.Context, ownerID, contactID uint64, name, email, phone string) (*entity.Contact, error) {
	contact, err := s.findOwned(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	contact.Name = name
	contact.Email = email
	contact.Phone = phone

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, ownerID, contactID uint64) error {
	if _, err := s.findOwned(ctx, ownerID, contactID); err != nil {
		return err
	}
	return s.contactRepo.Delete(ctx, contactID)
}

func (s *ContactService) findOwned(ctx context.Context, ownerID, contactID uint64) (*entity.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	if contact.OwnerID != ownerID {
		return nil, ErrNotContactOwner
	}
	return contact, nil
}
