package users

import (
	"context"

	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

// Repository is the credential store: user records by id or unique email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	SetAvatar(ctx context.Context, id int64, key *string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
