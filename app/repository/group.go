package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

// GROUPS became a reserved word in MySQL 8.0.2, so the table name has
// to be quoted everywhere it appears.
const groupsTable = "`groups`"

type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group *entity.Group) error {
	query := `
		INSERT INTO ` + groupsTable + ` (name, description, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		group.Name,
		group.Description,
		group.Icon,
		group.CreatedAt,
		group.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	group.ID = uint64(id)
	return nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint64) (*entity.Group, error) {
	query := `
		SELECT id, name, description, icon, created_at, updated_at
		FROM ` + groupsTable + ` WHERE id = ?
	`
	group := &entity.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.Icon,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListByMember returns the groups a user belongs to, newest membership
// first.
func (r *GroupRepository) ListByMember(ctx context.Context, userID uint64, offset, limit int) ([]*entity.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.icon, g.created_at, g.updated_at
		FROM ` + groupsTable + ` g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = ?
		ORDER BY ug.created_at DESC LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*entity.Group
	for rows.Next() {
		group := &entity.Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Icon,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// ListAll returns every group regardless of membership, newest first.
func (r *GroupRepository) ListAll(ctx context.Context, offset, limit int) ([]*entity.Group, error) {
	query := `
		SELECT id, name, description, icon, created_at, updated_at
		FROM ` + groupsTable + `
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*entity.Group
	for rows.Next() {
		group := &entity.Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Icon,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *GroupRepository) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+groupsTable+` WHERE id = ?`, id)
	return err
}

type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// InsertIfAbsent inserts a membership only when none exists for the
// (user, group) pair, in a single statement. Returns false without error
// when the membership already existed. Two concurrent redemptions cannot
// both succeed.
func (r *MembershipRepository) InsertIfAbsent(ctx context.Context, userID, groupID uint64) (bool, error) {
	query := `
		INSERT INTO user_groups (user_id, group_id, created_at)
		SELECT ?, ?, ? FROM DUAL
		WHERE NOT EXISTS (SELECT 1 FROM user_groups WHERE user_id = ? AND group_id = ?)
	`
	result, err := r.db.ExecContext(ctx, query, userID, groupID, time.Now(), userID, groupID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *MembershipRepository) Exists(ctx context.Context, userID, groupID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM user_groups WHERE user_id = ? AND group_id = ?`,
		userID, groupID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemberIDs returns the ids of a group's members.
func (r *MembershipRepository) MemberIDs(ctx context.Context, groupID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM user_groups WHERE group_id = ? ORDER BY created_at`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Members returns the member users of a group with their profile fields.
func (r *MembershipRepository) Members(ctx context.Context, groupID uint64) ([]*entity.User, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.avatar, u.role
		FROM users u
		JOIN user_groups ug ON ug.user_id = u.id
		WHERE ug.group_id = ?
		ORDER BY ug.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user := &entity.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Avatar,
			&user.Role,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *MembershipRepository) Delete(ctx context.Context, userID, groupID uint64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_groups WHERE user_id = ? AND group_id = ?`,
		userID, groupID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *MembershipRepository) DeleteByGroup(ctx context.Context, groupID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_groups WHERE group_id = ?`, groupID)
	return err
}

func (r *MembershipRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_groups WHERE user_id = ?`, userID)
	return err
}
