package rest

import (
	"context"
	"iter"
	"time"

	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/dmitrijs2005/gophfeed/internal/server/services"
)

type fakeUsers struct {
	register    func(services.RegisterInput) (*models.PublicUser, error)
	login       func(email, password string) (*services.LoginResult, error)
	list        func() ([]models.PublicUser, error)
	update      func(actor, id int64, in services.UpdateInput) (*models.PublicUser, error)
	deleteUser  func(actor, id int64) error
	startUpload func(actor int64) (*services.AvatarUpload, error)
	remove      func(actor int64) error
	avatarURL   func(id int64) (string, error)
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.PublicUser, error) {
	return f.register(in)
}
func (f *fakeUsers) Login(_ context.Context, e, p string) (*services.LoginResult, error) {
	return f.login(e, p)
}
func (f *fakeUsers) List(context.Context) ([]models.PublicUser, error) { return f.list() }
func (f *fakeUsers) Update(_ context.Context, a, id int64, in services.UpdateInput) (*models.PublicUser, error) {
	return f.update(a, id, in)
}
func (f *fakeUsers) Delete(_ context.Context, a, id int64) error { return f.deleteUser(a, id) }
func (f *fakeUsers) StartAvatarUpload(_ context.Context, a int64) (*services.AvatarUpload, error) {
	return f.startUpload(a)
}
func (f *fakeUsers) RemoveAvatar(_ context.Context, a int64) error      { return f.remove(a) }
func (f *fakeUsers) AvatarURL(_ context.Context, id int64) (string, error) { return f.avatarURL(id) }

type fakePosts struct {
	create     func(actor int64, in services.PostInput) (*models.PostView, error)
	get        func(id int64) (*models.PostView, error)
	list       func() ([]*models.PostView, error)
	listByUser func(userID int64) ([]*models.PostView, error)
	update     func(actor, id int64, in services.PostInput) (*models.PostView, error)
	deletePost func(actor, id int64) error
}

func (f *fakePosts) Create(_ context.Context, a int64, in services.PostInput) (*models.PostView, error) {
	return f.create(a, in)
}
func (f *fakePosts) Get(_ context.Context, id int64) (*models.PostView, error) { return f.get(id) }
func (f *fakePosts) List(context.Context) ([]*models.PostView, error)         { return f.list() }
func (f *fakePosts) ListByUser(_ context.Context, id int64) ([]*models.PostView, error) {
	return f.listByUser(id)
}
func (f *fakePosts) Update(_ context.Context, a, id int64, in services.PostInput) (*models.PostView, error) {
	return f.update(a, id, in)
}
func (f *fakePosts) Delete(_ context.Context, a, id int64) error { return f.deletePost(a, id) }

type fakeLedger struct {
	addLike       func(userID, postID int64) (int64, error)
	removeLike    func(userID, postID int64) (int64, error)
	hasLiked      func(userID, postID int64) (bool, error)
	countLikes    func(postID int64) (int64, error)
	listLikers    func(postID int64) ([]models.PublicUser, error)
	createComment func(userID, postID int64, text string) (*models.CommentView, error)
	updateComment func(commentID, userID int64, text string) (*models.CommentView, error)
	deleteComment func(commentID, userID int64) error
	comments      func(postID int64) (iter.Seq2[models.CommentView, error], error)
}

func (f *fakeLedger) AddLike(_ context.Context, u, p int64) (int64, error)    { return f.addLike(u, p) }
func (f *fakeLedger) RemoveLike(_ context.Context, u, p int64) (int64, error) { return f.removeLike(u, p) }
func (f *fakeLedger) HasLiked(_ context.Context, u, p int64) (bool, error)    { return f.hasLiked(u, p) }
func (f *fakeLedger) CountLikes(_ context.Context, p int64) (int64, error)    { return f.countLikes(p) }
func (f *fakeLedger) ListLikers(_ context.Context, p int64) ([]models.PublicUser, error) {
	return f.listLikers(p)
}
func (f *fakeLedger) CreateComment(_ context.Context, u, p int64, text string) (*models.CommentView, error) {
	return f.createComment(u, p, text)
}
func (f *fakeLedger) UpdateComment(_ context.Context, c, u int64, text string) (*models.CommentView, error) {
	return f.updateComment(c, u, text)
}
func (f *fakeLedger) DeleteComment(_ context.Context, c, u int64) error { return f.deleteComment(c, u) }
func (f *fakeLedger) Comments(_ context.Context, p int64) (iter.Seq2[models.CommentView, error], error) {
	return f.comments(p)
}

type fakeLookup struct {
	ids map[int64]bool
	err error
}

func (f *fakeLookup) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.ids[id] {
		return nil, errNotFoundUser
	}
	return &models.User{ID: id}, nil
}

type observation struct {
	method, route string
	status        int
}

type fakeObserver struct{ got []observation }

func (o *fakeObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.got = append(o.got, observation{method, route, status})
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
