package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

const postColumns = `id, user_id, title, body, created_at, updated_at`

const viewSelect = `SELECT p.id, p.title, p.body, p.created_at, p.updated_at,
		   u.id, u.name, u.email, u.phone, u.avatar_key, u.created_at, u.updated_at,
		   (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)
	  FROM posts p
	  JOIN users u ON u.id = p.user_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {

	query :=
		`INSERT INTO posts (user_id, title, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, post.UserID, post.Title, post.Body).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForShare(ctx context.Context, id int64) (*models.Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 FOR SHARE`, id)
}

func (r *PostgresRepository) GetView(ctx context.Context, id int64) (*models.PostView, error) {
	rows, err := r.db.QueryContext(ctx, viewSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	views, err := collectViews(rows)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, common.ErrorNotFound
	}

	return views[0], nil
}

// ListViews returns every post, newest first.
func (r *PostgresRepository) ListViews(ctx context.Context) ([]*models.PostView, error) {
	rows, err := r.db.QueryContext(ctx, viewSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectViews(rows)
}

func (r *PostgresRepository) ListViewsByUser(ctx context.Context, userID int64) ([]*models.PostView, error) {
	rows, err := r.db.QueryContext(ctx, viewSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectViews(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, title, body string) (*models.Post, error) {
	query :=
		`UPDATE posts SET title = $2, body = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + postColumns

	return r.getOne(ctx, query, id, title, body)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
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

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Post, error) {
	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func collectViews(rows *sql.Rows) ([]*models.PostView, error) {
	defer rows.Close()

	var result []*models.PostView
	for rows.Next() {
		v := &models.PostView{}
		var phone, avatar sql.NullString
		err := rows.Scan(&v.ID, &v.Title, &v.Body, &v.CreatedAt, &v.UpdatedAt,
			&v.Author.ID, &v.Author.Name, &v.Author.Email, &phone, &avatar, &v.Author.CreatedAt, &v.Author.UpdatedAt,
			&v.TotalLikes)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if phone.Valid {
			v.Author.Phone = &phone.String
		}
		if avatar.Valid {
			v.Author.Avatar = &avatar.String
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
