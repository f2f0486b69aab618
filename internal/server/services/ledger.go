package services

import (
	"context"
	"database/sql"
	"errors"
	"iter"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/dbx"
	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/dmitrijs2005/gophfeed/internal/server/authz"
	"github.com/dmitrijs2005/gophfeed/internal/server/metrics"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/dmitrijs2005/gophfeed/internal/server/repositories/repomanager"
)

const (
	likeOpAdd    = "add"
	likeOpRemove = "remove"
)

var errStopIteration = errors.New("stop iteration")

// Ledger owns likes and comments. Like uniqueness is enforced by the store;
// every like or unlike answers with a recount taken in the same transaction.
type Ledger struct {
	db          dbx.DBTX
	tx          dbx.TxRunner
	repomanager repomanager.RepositoryManager
	recorder    LikeRecorder
	log         logging.Logger
}

func NewLedger(db *sql.DB, m repomanager.RepositoryManager, recorder LikeRecorder, log logging.Logger) *Ledger {
	return &Ledger{
		db:          db,
		tx:          dbx.NewTxRunner(db, nil),
		repomanager: m,
		recorder:    recorder,
		log:         log.With("module", "ledger"),
	}
}

// AddLike records that userID likes postID and returns the new total. A
// repeated like fails with common.ErrAlreadyLiked; a missing or concurrently
// deleted post fails with common.ErrorNotFound.
func (l *Ledger) AddLike(ctx context.Context, userID, postID int64) (int64, error) {
	var total int64

	err := l.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := l.repomanager.Posts(tx).GetForShare(ctx, postID); err != nil {
			return err
		}

		likes := l.repomanager.Likes(tx)

		inserted, err := likes.Add(ctx, postID, userID)
		if err != nil {
			return err
		}
		if !inserted {
			return common.ErrAlreadyLiked
		}

		total, err = likes.Count(ctx, postID)
		return err
	})

	l.recordLike(ctx, likeOpAdd, postID, err)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RemoveLike withdraws userID's like and returns the new total. Fails with
// common.ErrNotLiked if there was none.
func (l *Ledger) RemoveLike(ctx context.Context, userID, postID int64) (int64, error) {
	var total int64

	err := l.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := l.repomanager.Posts(tx).GetForShare(ctx, postID); err != nil {
			return err
		}

		likes := l.repomanager.Likes(tx)

		removed, err := likes.Remove(ctx, postID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return common.ErrNotLiked
		}

		total, err = likes.Count(ctx, postID)
		return err
	})

	l.recordLike(ctx, likeOpRemove, postID, err)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (l *Ledger) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	return l.repomanager.Likes(l.db).Exists(ctx, postID, userID)
}

func (l *Ledger) CountLikes(ctx context.Context, postID int64) (int64, error) {
	if _, err := l.repomanager.Posts(l.db).GetByID(ctx, postID); err != nil {
		return 0, err
	}
	return l.repomanager.Likes(l.db).Count(ctx, postID)
}

// ListLikers returns who liked postID, most recent first.
func (l *Ledger) ListLikers(ctx context.Context, postID int64) ([]models.PublicUser, error) {
	if _, err := l.repomanager.Posts(l.db).GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return l.repomanager.Likes(l.db).ListLikers(ctx, postID)
}

func (l *Ledger) recordLike(ctx context.Context, op string, postID int64, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorConflict):
		result = metrics.ResultConflict
	case errors.Is(err, common.ErrorNotFound):
		result = metrics.ResultNotFound
	default:
		result = metrics.ResultError
		l.log.Error(ctx, "like operation failed", "op", op, "post_id", postID, "error", err)
	}

	if l.recorder != nil {
		l.recorder.LikeOp(op, result)
	}
}

// CreateComment adds a comment by userID under postID and returns it with
// the author attached.
func (l *Ledger) CreateComment(ctx context.Context, userID, postID int64, text string) (*models.CommentView, error) {
	text, err := required("text", text)
	if err != nil {
		return nil, err
	}

	if _, err := l.repomanager.Posts(l.db).GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment, err := l.repomanager.Comments(l.db).Create(ctx, &models.Comment{PostID: postID, UserID: userID, Text: text})
	if err != nil {
		return nil, err
	}

	return l.view(ctx, comment)
}

// UpdateComment replaces the text of a comment. Only its author may do so.
func (l *Ledger) UpdateComment(ctx context.Context, commentID, userID int64, text string) (*models.CommentView, error) {
	text, err := required("text", text)
	if err != nil {
		return nil, err
	}

	repo := l.repomanager.Comments(l.db)

	comment, err := repo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutateComment(userID, comment) {
		return nil, common.ErrorForbidden
	}

	comment, err = repo.UpdateText(ctx, commentID, text)
	if err != nil {
		return nil, err
	}

	return l.view(ctx, comment)
}

// DeleteComment removes a comment. Its author and the owner of the post it
// belongs to may do so.
func (l *Ledger) DeleteComment(ctx context.Context, commentID, userID int64) error {
	repo := l.repomanager.Comments(l.db)

	comment, err := repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	var parent *models.Post
	if comment.UserID != userID {
		parent, err = l.repomanager.Posts(l.db).GetByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
	}
	if !authz.CanDeleteComment(userID, comment, parent) {
		return common.ErrorForbidden
	}

	if err := repo.Delete(ctx, commentID); err != nil {
		return err
	}

	l.log.Info(ctx, "comment deleted", "comment_id", commentID, "user_id", userID)
	return nil
}

// Comments returns the comments of postID, newest first. The sequence reads
// lazily from the store and runs a fresh query every time it is ranged over.
// A storage failure is yielded as the final element.
func (l *Ledger) Comments(ctx context.Context, postID int64) (iter.Seq2[models.CommentView, error], error) {
	if _, err := l.repomanager.Posts(l.db).GetByID(ctx, postID); err != nil {
		return nil, err
	}

	repo := l.repomanager.Comments(l.db)

	return func(yield func(models.CommentView, error) bool) {
		err := repo.ForEachByPost(ctx, postID, func(v *models.CommentView) error {
			if !yield(*v, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(models.CommentView{}, err)
		}
	}, nil
}

func (l *Ledger) view(ctx context.Context, c *models.Comment) (*models.CommentView, error) {
	author, err := l.repomanager.Users(l.db).GetByID(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	return &models.CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		Author:    author.Public(),
	}, nil
}
