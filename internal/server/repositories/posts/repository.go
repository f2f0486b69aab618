package posts

import (
	"context"

	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// GetForShare reads the post and holds a share lock on its row until
	// the surrounding transaction ends, so it cannot be deleted meanwhile.
	GetForShare(ctx context.Context, id int64) (*models.Post, error)
	GetView(ctx context.Context, id int64) (*models.PostView, error)
	ListViews(ctx context.Context) ([]*models.PostView, error)
	ListViewsByUser(ctx context.Context, userID int64) ([]*models.PostView, error)
	Update(ctx context.Context, id int64, title, body string) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}
