package likes

import (
	"context"

	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

// Repository stores (post, user) like pairs. The pair is unique at the
// storage level; Add reports whether a new row was written.
type Repository interface {
	Add(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, postID, userID int64) (bool, error)
	Exists(ctx context.Context, postID, userID int64) (bool, error)
	Count(ctx context.Context, postID int64) (int64, error)
	ListLikers(ctx context.Context, postID int64) ([]models.PublicUser, error)
}
