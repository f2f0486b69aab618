package comments

import (
	"context"

	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	// ForEachByPost streams the comments of a post, newest first, stopping
	// at the first error returned by fn.
	ForEachByPost(ctx context.Context, postID int64, fn func(*models.CommentView) error) error
	UpdateText(ctx context.Context, id int64, text string) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}
