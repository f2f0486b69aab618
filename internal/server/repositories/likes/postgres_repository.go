package likes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts the pair unless it already exists. A missing post or user
// yields common.ErrorNotFound.
func (r *PostgresRepository) Add(ctx context.Context, postID, userID int64) (bool, error) {

	query :=
		`INSERT INTO likes (post_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (post_id, user_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected(res)
}

func (r *PostgresRepository) Remove(ctx context.Context, postID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`, postID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Count(ctx context.Context, postID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListLikers returns the users who liked the post, most recent like first.
func (r *PostgresRepository) ListLikers(ctx context.Context, postID int64) ([]models.PublicUser, error) {
	query :=
		`SELECT u.id, u.name, u.email, u.phone, u.avatar_key, u.created_at, u.updated_at
		   FROM likes l
		   JOIN users u ON u.id = l.user_id
		  WHERE l.post_id = $1
		  ORDER BY l.created_at DESC, u.id DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PublicUser, 0)
	for rows.Next() {
		var u models.PublicUser
		var phone, avatar sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &phone, &avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if phone.Valid {
			u.Phone = &phone.String
		}
		if avatar.Valid {
			u.Avatar = &avatar.String
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
