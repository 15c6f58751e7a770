package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

const userColumns = `id, email, first_name, last_name, password_hash, is_verified, otp, otp_created_at,
		       reset_token, refresh_token, role, avatar, google_id, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, password_hash, is_verified, otp, otp_created_at, role, avatar, google_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsVerified,
		user.OTP,
		user.OTPCreatedAt,
		user.Role,
		user.Avatar,
		user.GoogleID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE email = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			email = ?,
			first_name = ?,
			last_name = ?,
			password_hash = ?,
			is_verified = ?,
			otp = ?,
			otp_created_at = ?,
			reset_token = ?,
			refresh_token = ?,
			role = ?,
			avatar = ?,
			google_id = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
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
		user.UpdatedAt,
		user.ID,
	)
	return err
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID uint64) error {
	query := `UPDATE users SET refresh_token = NULL, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	return err
}

func (r *UserRepository) List(ctx context.Context, sortField string, offset, limit int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users ORDER BY ` + userSortColumn(sortField) + ` LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// Search matches a prefix against first name or email.
func (r *UserRepository) Search(ctx context.Context, term, sortField string, offset, limit int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE first_name LIKE ? OR email LIKE ?
		ORDER BY ` + userSortColumn(sortField) + ` LIMIT ? OFFSET ?
	`
	prefix := term + "%"
	rows, err := r.db.QueryContext(ctx, query, prefix, prefix, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

func (r *UserRepository) CountSearch(ctx context.Context, term string) (int, error) {
	prefix := term + "%"
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE first_name LIKE ? OR email LIKE ?`,
		prefix, prefix,
	).Scan(&total)
	return total, err
}

func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.IsVerified,
		&user.OTP,
		&user.OTPCreatedAt,
		&user.ResetToken,
		&user.RefreshToken,
		&user.Role,
		&user.Avatar,
		&user.GoogleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) scanAll(rows *sql.Rows) ([]*entity.User, error) {
	var users []*entity.User
	for rows.Next() {
		user := &entity.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.PasswordHash,
			&user.IsVerified,
			&user.OTP,
			&user.OTPCreatedAt,
			&user.ResetToken,
			&user.RefreshToken,
			&user.Role,
			&user.Avatar,
			&user.GoogleID,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func userSortColumn(field string) string {
	switch field {
	case "email":
		return "email"
	case "name":
		return "first_name"
	default:
		return "id"
	}
}
