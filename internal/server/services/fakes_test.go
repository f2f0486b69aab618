package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/cryptox"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/dmitrijs2005/gophfeed/internal/server/auth"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/likes"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/users"
)

// memStore is an in-memory stand-in for the database. One mutex guards all
// tables, so the (post, user) like key is unique the way the primary key
// makes it unique in PostgreSQL.
type memStore struct {
	mu       sync.Mutex
	seq      int64
	ticks    int64
	users    map[int64]*models.User
	posts    map[int64]*models.Post
	comments map[int64]*models.Comment
	likes    map[[2]int64]time.Time

	failUsers error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.User{},
		posts:    map[int64]*models.Post{},
		comments: map[int64]*models.Comment{},
		likes:    map[[2]int64]time.Time{},
	}
}

func (s *memStore) nextID() int64 { s.seq++; return s.seq }

func (s *memStore) tick() time.Time {
	s.ticks++
	return time.Unix(1_700_000_000+s.ticks, 0).UTC()
}

func (s *memStore) likeCount(postID int64) int64 {
	var n int64
	for k := range s.likes {
		if k[0] == postID {
			n++
		}
	}
	return n
}

func (s *memStore) view(p *models.Post) *models.PostView {
	return &models.PostView{
		ID: p.ID, Title: p.Title, Body: p.Body, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		Author:     s.users[p.UserID].Public(),
		TotalLikes: s.likeCount(p.ID),
	}
}

type memManager struct{ s *memStore }

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Users(dbx.DBTX) users.Repository             { return (*memUsers)(m.s) }
func (m *memManager) Posts(dbx.DBTX) posts.Repository             { return (*memPosts)(m.s) }
func (m *memManager) Comments(dbx.DBTX) comments.Repository       { return (*memComments)(m.s) }
func (m *memManager) Likes(dbx.DBTX) likes.Repository             { return (*memLikes)(m.s) }

// --- users ---

type memUsers memStore

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	c := *u
	c.ID = s.nextID()
	c.CreatedAt = s.tick()
	c.UpdatedAt = c.CreatedAt
	s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUsers != nil {
		return nil, s.failUsers
	}
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) List(context.Context) ([]*models.User, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.User) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r *memUsers) Update(_ context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Email != nil {
		for _, other := range s.users {
			if other.ID != id && other.Email == *upd.Email {
				return nil, common.ErrDuplicateEmail
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = upd.Phone
		if *upd.Phone == "" {
			u.Phone = nil
		}
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = upd.PasswordHash
	}
	u.UpdatedAt = s.tick()
	c := *u
	return &c, nil
}

func (r *memUsers) SetAvatar(_ context.Context, id int64, key *string) (*models.User, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.AvatarKey = key
	c := *u
	return &c, nil
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.users, id)
	for pid, p := range s.posts {
		if p.UserID == id {
			s.deletePostLocked(pid)
		}
	}
	for cid, c := range s.comments {
		if c.UserID == id {
			delete(s.comments, cid)
		}
	}
	for k := range s.likes {
		if k[1] == id {
			delete(s.likes, k)
		}
	}
	return nil
}

// --- posts ---

type memPosts memStore

func (s *memStore) deletePostLocked(id int64) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for k := range s.likes {
		if k[0] == id {
			delete(s.likes, k)
		}
	}
}

func (r *memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	c.ID = s.nextID()
	c.CreatedAt = s.tick()
	c.UpdatedAt = c.CreatedAt
	s.posts[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memPosts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r *memPosts) GetForShare(ctx context.Context, id int64) (*models.Post, error) {
	return r.GetByID(ctx, id)
}

func (r *memPosts) GetView(_ context.Context, id int64) (*models.PostView, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s.view(p), nil
}

func (r *memPosts) listViews(keep func(*models.Post) bool) []*models.PostView {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.PostView{}
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, s.view(p))
		}
	}
	slices.SortFunc(out, func(a, b *models.PostView) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out
}

func (r *memPosts) ListViews(context.Context) ([]*models.PostView, error) {
	return r.listViews(func(*models.Post) bool { return true }), nil
}

func (r *memPosts) ListViewsByUser(_ context.Context, userID int64) ([]*models.PostView, error) {
	return r.listViews(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r *memPosts) Update(_ context.Context, id int64, title, body string) (*models.Post, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Title, p.Body, p.UpdatedAt = title, body, s.tick()
	c := *p
	return &c, nil
}

func (r *memPosts) Delete(_ context.Context, id int64) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return common.ErrorNotFound
	}
	s.deletePostLocked(id)
	return nil
}

// --- comments ---

type memComments memStore

func (r *memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[c.PostID]; !ok {
		return nil, common.ErrorNotFound
	}
	n := *c
	n.ID = s.nextID()
	n.CreatedAt = s.tick()
	s.comments[n.ID] = &n
	out := n
	return &out, nil
}

func (r *memComments) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (r *memComments) ForEachByPost(_ context.Context, postID int64, fn func(*models.CommentView) error) error {
	s := (*memStore)(r)
	s.mu.Lock()
	var views []*models.CommentView
	for _, c := range s.comments {
		if c.PostID == postID {
			views = append(views, &models.CommentView{
				ID: c.ID, PostID: c.PostID, Text: c.Text, CreatedAt: c.CreatedAt,
				Author: s.users[c.UserID].Public(),
			})
		}
	}
	s.mu.Unlock()

	slices.SortFunc(views, func(a, b *models.CommentView) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	for _, v := range views {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func (r *memComments) UpdateText(_ context.Context, id int64, text string) (*models.Comment, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c.Text = text
	out := *c
	return &out, nil
}

func (r *memComments) Delete(_ context.Context, id int64) error {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.comments, id)
	return nil
}

// --- likes ---

type memLikes memStore

func (r *memLikes) Add(_ context.Context, postID, userID int64) (bool, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return false, common.ErrorNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return false, common.ErrorNotFound
	}
	k := [2]int64{postID, userID}
	if _, ok := s.likes[k]; ok {
		return false, nil
	}
	s.likes[k] = s.tick()
	return true, nil
}

func (r *memLikes) Remove(_ context.Context, postID, userID int64) (bool, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	k := [2]int64{postID, userID}
	if _, ok := s.likes[k]; !ok {
		return false, nil
	}
	delete(s.likes, k)
	return true, nil
}

func (r *memLikes) Exists(_ context.Context, postID, userID int64) (bool, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.likes[[2]int64{postID, userID}]
	return ok, nil
}

func (r *memLikes) Count(_ context.Context, postID int64) (int64, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likeCount(postID), nil
}

func (r *memLikes) ListLikers(_ context.Context, postID int64) ([]models.PublicUser, error) {
	s := (*memStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	type liker struct {
		at time.Time
		u  models.PublicUser
	}
	var ls []liker
	for k, at := range s.likes {
		if k[0] == postID {
			ls = append(ls, liker{at, s.users[k[1]].Public()})
		}
	}
	slices.SortFunc(ls, func(a, b liker) int { return b.at.Compare(a.at) })
	out := make([]models.PublicUser, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.u)
	}
	return out, nil
}

// --- avatars ---

type fakeAvatars struct {
	mu      sync.Mutex
	n       int
	deleted []string
	failPut error
	failDel error
}

func (f *fakeAvatars) PresignUpload(_ context.Context, userID int64) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return "", "", f.failPut
	}
	f.n++
	key := fmt.Sprintf("avatars/%d/k%d", userID, f.n)
	return key, "http://s3.local/" + key + "?put", nil
}

func (f *fakeAvatars) PresignDownload(_ context.Context, key string) (string, error) {
	return "http://s3.local/" + key + "?get", nil
}

func (f *fakeAvatars) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.failDel
}

// --- likes recorder ---

type fakeLikeRecorder struct {
	mu  sync.Mutex
	ops map[string]int
}

func (r *fakeLikeRecorder) LikeOp(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ops == nil {
		r.ops = map[string]int{}
	}
	r.ops[op+"/"+result]++
}

func (r *fakeLikeRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops[key]
}

// --- wiring ---

func directTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

type fixture struct {
	store   *memStore
	users   *UserService
	posts   *PostService
	ledger  *Ledger
	tokens  *auth.TokenService
	avatars *fakeAvatars
	likes   *fakeLikeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	m := &memManager{s: store}
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	avatars := &fakeAvatars{}
	rec := &fakeLikeRecorder{}
	log := logging.Nop()

	ledger := NewLedger(nil, m, rec, log)
	ledger.tx = directTx

	return &fixture{
		store:   store,
		users:   NewUserService(nil, m, tokens, cryptox.NewHasher(4), avatars, log),
		posts:   NewPostService(nil, m, log),
		ledger:  ledger,
		tokens:  tokens,
		avatars: avatars,
		likes:   rec,
	}
}

func (f *fixture) register(t *testing.T, name string) int64 {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Name: name, Email: name + "@example.com", Password: "pw-" + name,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u.ID
}

func (f *fixture) post(t *testing.T, owner int64, title string) int64 {
	t.Helper()
	p, err := f.posts.Create(context.Background(), owner, PostInput{Title: title, Body: "body of " + title})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p.ID
}
