package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

const documentColumns = `id, group_id, sender_id, url, file_name, file_ext, created_at`

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (group_id, sender_id, url, file_name, file_ext, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		doc.GroupID,
		doc.SenderID,
		doc.URL,
		doc.FileName,
		doc.FileExt,
		doc.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	doc.ID = uint64(id)
	return nil
}

func (r *DocumentRepository) ListByGroup(ctx context.Context, groupID uint64, offset, limit int) ([]*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents WHERE group_id = ?
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc := &entity.Document{}
		if err := rows.Scan(
			&doc.ID,
			&doc.GroupID,
			&doc.SenderID,
			&doc.URL,
			&doc.FileName,
			&doc.FileExt,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) CountByGroup(ctx context.Context, groupID uint64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE group_id = ?`, groupID,
	).Scan(&total)
	return total, err
}

// DeleteByIDs removes the given documents. When senderID is non-zero only
// documents sent by that user are removed; zero deletes regardless of
// sender (admin path).
func (r *DocumentRepository) DeleteByIDs(ctx context.Context, ids []uint64, senderID uint64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM documents WHERE id IN (`
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	if senderID != 0 {
		query += " AND sender_id = ?"
		args = append(args, senderID)
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *DocumentRepository) DeleteByGroup(ctx context.Context, groupID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE group_id = ?`, groupID)
	return err
}

func (r *DocumentRepository) DeleteByGroupAndSender(ctx context.Context, groupID, senderID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE group_id = ? AND sender_id = ?`,
		groupID, senderID,
	)
	return err
}

func (r *DocumentRepository) DeleteBySender(ctx context.Context, senderID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE sender_id = ?`, senderID)
	return err
}
