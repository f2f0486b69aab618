package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/dmitrijs2005/gophfeed/internal/server/authz"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/repomanager"
)

type PostInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type PostService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, log: log.With("module", "posts")}
}

func (s *PostService) Create(ctx context.Context, actor int64, in PostInput) (*models.PostView, error) {
	title, body, err := validatePost(in)
	if err != nil {
		return nil, err
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{UserID: actor, Title: title, Body: body})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "post created", "post_id", post.ID, "user_id", actor)
	return s.repomanager.Posts(s.db).GetView(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.PostView, error) {
	return s.repomanager.Posts(s.db).GetView(ctx, id)
}

// List returns all posts, newest first, each with its like total.
func (s *PostService) List(ctx context.Context) ([]*models.PostView, error) {
	return s.repomanager.Posts(s.db).ListViews(ctx)
}

// ListByUser fails with common.ErrorNotFound for an unknown user rather than
// returning an empty list.
func (s *PostService) ListByUser(ctx context.Context, userID int64) ([]*models.PostView, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Posts(s.db).ListViewsByUser(ctx, userID)
}

func (s *PostService) Update(ctx context.Context, actor, id int64, in PostInput) (*models.PostView, error) {
	title, body, err := validatePost(in)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Posts(s.db)

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutatePost(actor, post) {
		return nil, common.ErrorForbidden
	}

	if _, err := repo.Update(ctx, id, title, body); err != nil {
		return nil, err
	}

	return repo.GetView(ctx, id)
}

// Delete removes the post with its comments and likes.
func (s *PostService) Delete(ctx context.Context, actor, id int64) error {
	repo := s.repomanager.Posts(s.db)

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutatePost(actor, post) {
		return common.ErrorForbidden
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info(ctx, "post deleted", "post_id", id, "user_id", actor)
	return nil
}

func validatePost(in PostInput) (string, string, error) {
	title, err := required("title", in.Title)
	if err != nil {
		return "", "", err
	}
	body, err := required("body", in.Body)
	if err != nil {
		return "", "", err
	}
	return title, body, nil
}
