package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/cryptox"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/dmitrijs2005/gophfeed/internal/server/auth"
	"github.com/dmitrijs2005/gophfeed/internal/server/authz"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/repomanager"
	"github.com/samber/lo"
)

type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

// UpdateInput carries the profile fields to change; nil leaves a field as is
// and an empty phone removes the number.
type UpdateInput struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}

type LoginResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type AvatarUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

// UserService handles registration, login and self-service profile changes.
type UserService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      *cryptox.Hasher
	avatars     AvatarStore
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	hasher *cryptox.Hasher, avatars AvatarStore, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		avatars:     avatars,
		log:         log.With("module", "users"),
	}
}

// Register creates an account. A taken email fails with
// common.ErrDuplicateEmail and leaves the existing record untouched.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	email, err := required("email", in.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorInvalid)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Name:         name,
		Phone:        optionalPhone(in.Phone),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	pub := user.Public()
	return &pub, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password both fail with common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Burn(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Matches(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user.Public(), Token: token}, nil
}

func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u *models.User, _ int) models.PublicUser { return u.Public() }), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.PublicUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// Update changes actor's own profile. A new password replaces the stored
// verifier.
func (s *UserService) Update(ctx context.Context, actor, id int64, in UpdateInput) (*models.PublicUser, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !authz.CanMutateUser(actor, id) {
		return nil, common.ErrorForbidden
	}

	var upd models.UserUpdate
	if in.Name != nil {
		name, err := required("name", *in.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if in.Email != nil {
		email, err := required("email", *in.Email)
		if err != nil {
			return nil, err
		}
		email = normalizeEmail(email)
		upd.Email = &email
	}
	upd.Phone = trimPhone(in.Phone)
	if in.Password != nil {
		if strings.TrimSpace(*in.Password) == "" {
			return nil, fmt.Errorf("%w: password is required", common.ErrorInvalid)
		}
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = hash
	}

	user, err := repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// Delete removes actor's own account together with its posts, comments and
// likes.
func (s *UserService) Delete(ctx context.Context, actor, id int64) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutateUser(actor, id) {
		return common.ErrorForbidden
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if user.AvatarKey != nil {
		s.dropAvatarObject(ctx, *user.AvatarKey)
	}
	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}

// StartAvatarUpload points actor's avatar at a fresh object key and returns
// a presigned URL the client uploads the image to. The previous object, if
// any, is removed.
func (s *UserService) StartAvatarUpload(ctx context.Context, actor int64) (*AvatarUpload, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, actor)
	if err != nil {
		return nil, err
	}

	key, uploadURL, err := s.avatars.PresignUpload(ctx, actor)
	if err != nil {
		return nil, err
	}

	if _, err := repo.SetAvatar(ctx, actor, &key); err != nil {
		return nil, err
	}

	if user.AvatarKey != nil {
		s.dropAvatarObject(ctx, *user.AvatarKey)
	}

	return &AvatarUpload{Key: key, UploadURL: uploadURL}, nil
}

// RemoveAvatar clears actor's avatar. It fails with common.ErrorNotFound if
// there is none.
func (s *UserService) RemoveAvatar(ctx context.Context, actor int64) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, actor)
	if err != nil {
		return err
	}
	if user.AvatarKey == nil {
		return common.ErrorNotFound
	}

	if _, err := repo.SetAvatar(ctx, actor, nil); err != nil {
		return err
	}

	s.dropAvatarObject(ctx, *user.AvatarKey)
	return nil
}

// AvatarURL returns a presigned download URL for userID's avatar.
func (s *UserService) AvatarURL(ctx context.Context, userID int64) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.AvatarKey == nil {
		return "", common.ErrorNotFound
	}
	return s.avatars.PresignDownload(ctx, *user.AvatarKey)
}

func (s *UserService) hashPassword(password string) ([]byte, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if cryptox.IsTooLong(err) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrorInvalid)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// dropAvatarObject deletes a stale object. The record no longer points at
// it, so a failure only leaves garbage in the bucket.
func (s *UserService) dropAvatarObject(ctx context.Context, key string) {
	if err := s.avatars.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "avatar object not deleted", "key", key, "error", err)
	}
}

// trimPhone keeps nil as "no change" and lets an empty string through so
// the store clears the number.
func trimPhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	return &p
}

func optionalPhone(phone *string) *string {
	p := trimPhone(phone)
	if p == nil || *p == "" {
		return nil
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
