// Package rest exposes the public JSON API over HTTP.
package rest

import (
	"context"
	"iter"
	"time"

	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/dmitrijs2005/gophfeed/internal/server/services"
)

type Users interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	List(ctx context.Context) ([]models.PublicUser, error)
	Update(ctx context.Context, actor, id int64, in services.UpdateInput) (*models.PublicUser, error)
	Delete(ctx context.Context, actor, id int64) error
	StartAvatarUpload(ctx context.Context, actor int64) (*services.AvatarUpload, error)
	RemoveAvatar(ctx context.Context, actor int64) error
	AvatarURL(ctx context.Context, userID int64) (string, error)
}

type Posts interface {
	Create(ctx context.Context, actor int64, in services.PostInput) (*models.PostView, error)
	Get(ctx context.Context, id int64) (*models.PostView, error)
	List(ctx context.Context) ([]*models.PostView, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.PostView, error)
	Update(ctx context.Context, actor, id int64, in services.PostInput) (*models.PostView, error)
	Delete(ctx context.Context, actor, id int64) error
}

type Interactions interface {
	AddLike(ctx context.Context, userID, postID int64) (int64, error)
	RemoveLike(ctx context.Context, userID, postID int64) (int64, error)
	HasLiked(ctx context.Context, userID, postID int64) (bool, error)
	CountLikes(ctx context.Context, postID int64) (int64, error)
	ListLikers(ctx context.Context, postID int64) ([]models.PublicUser, error)
	CreateComment(ctx context.Context, userID, postID int64, text string) (*models.CommentView, error)
	UpdateComment(ctx context.Context, commentID, userID int64, text string) (*models.CommentView, error)
	DeleteComment(ctx context.Context, commentID, userID int64) error
	Comments(ctx context.Context, postID int64) (iter.Seq2[models.CommentView, error], error)
}

// Authenticator resolves an Authorization header to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (int64, error)
}

type Observer interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}
