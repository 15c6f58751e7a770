package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

const contactColumns = `id, owner_id, name, email, phone, age, created_at, updated_at`

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	query := `
		INSERT INTO contacts (owner_id, name, email, phone, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		contact.OwnerID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Age,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	contact.ID = uint64(id)
	return nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id uint64) (*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts WHERE id = ?
	`
	contact := &entity.Contact{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contact.ID,
		&contact.OwnerID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.Age,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID uint64, sortField string, offset, limit int) ([]*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts WHERE owner_id = ?
		ORDER BY ` + contactSortColumn(sortField) + ` LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// Search matches a prefix against name, email or phone within one owner's
// address book.
func (r *ContactRepository) Search(ctx context.Context, ownerID uint64, term, sortField string, offset, limit int) ([]*entity.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts WHERE owner_id = ? AND (name LIKE ? OR email LIKE ? OR phone LIKE ?)
		ORDER BY ` + contactSortColumn(sortField) + ` LIMIT ? OFFSET ?
	`
	prefix := term + "%"
	rows, err := r.db.QueryContext(ctx, query, ownerID, prefix, prefix, prefix, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *ContactRepository) CountByOwner(ctx context.Context, ownerID uint64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE owner_id = ?`, ownerID,
	).Scan(&total)
	return total, err
}

func (r *ContactRepository) CountSearch(ctx context.Context, ownerID uint64, term string) (int, error) {
	prefix := term + "%"
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE owner_id = ? AND (name LIKE ? OR email LIKE ? OR phone LIKE ?)`,
		ownerID, prefix, prefix, prefix,
	).Scan(&total)
	return total, err
}

func (r *ContactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	query := `
		UPDATE contacts SET
			name = ?,
			email = ?,
			phone = ?,
			age = ?,
			updated_at = ?
		WHERE id = ?
	`
	contact.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Age,
		contact.UpdatedAt,
		contact.ID,
	)
	return err
}

func (r *ContactRepository) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	return err
}

func (r *ContactRepository) DeleteByOwner(ctx context.Context, ownerID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE owner_id = ?`, ownerID)
	return err
}

func (r *ContactRepository) scanAll(rows *sql.Rows) ([]*entity.Contact, error) {
	var contacts []*entity.Contact
	for rows.Next() {
		contact := &entity.Contact{}
		if err := rows.Scan(
			&contact.ID,
			&contact.OwnerID,
			&contact.Name,
			&contact.Email,
			&contact.Phone,
			&contact.Age,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func contactSortColumn(field string) string {
	switch field {
	case "name":
		return "name"
	case "email":
		return "email"
	case "phone":
		return "phone"
	default:
		return "id"
	}
}
