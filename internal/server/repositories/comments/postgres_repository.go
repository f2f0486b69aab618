package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

const commentColumns = `id, post_id, user_id, text, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts comment. A post or author that no longer exists yields
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {

	query :=
		`INSERT INTO comments (post_id, user_id, text)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.UserID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	return r.getOne(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
}

func (r *PostgresRepository) ForEachByPost(ctx context.Context, postID int64, fn func(*models.CommentView) error) error {
	query :=
		`SELECT c.id, c.post_id, c.text, c.created_at,
		        u.id, u.name, u.email, u.phone, u.avatar_key, u.created_at, u.updated_at
		   FROM comments c
		   JOIN users u ON u.id = c.user_id
		  WHERE c.post_id = $1
		  ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := &models.CommentView{}
		var phone, avatar sql.NullString
		err := rows.Scan(&v.ID, &v.PostID, &v.Text, &v.CreatedAt,
			&v.Author.ID, &v.Author.Name, &v.Author.Email, &phone, &avatar, &v.Author.CreatedAt, &v.Author.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if phone.Valid {
			v.Author.Phone = &phone.String
		}
		if avatar.Valid {
			v.Author.Avatar = &avatar.String
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdateText(ctx context.Context, id int64, text string) (*models.Comment, error) {
	query :=
		`UPDATE comments SET text = $2
		 WHERE id = $1
		 RETURNING ` + commentColumns

	return r.getOne(ctx, query, id, text)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Comment, error) {
	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
