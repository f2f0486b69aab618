package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

// Outcome labels reported to an OutcomeRecorder.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeRejected      = "rejected"
	OutcomeFault         = "fault"
)

// UserLookup resolves a user id to a stored record. A missing user must be
// reported as common.ErrorNotFound.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// OutcomeRecorder receives one call per authentication attempt.
type OutcomeRecorder interface {
	AuthOutcome(outcome, reason string)
}

// Gate turns an Authorization header value into a live user id.
type Gate struct {
	tokens   *TokenService
	users    UserLookup
	log      logging.Logger
	recorder OutcomeRecorder
}

func NewGate(tokens *TokenService, users UserLookup, log logging.Logger, recorder OutcomeRecorder) *Gate {
	if log == nil {
		log = logging.Nop()
	}
	return &Gate{tokens: tokens, users: users, log: log.With("module", "auth"), recorder: recorder}
}

// Authenticate validates header ("Bearer <token>") and returns the id of the
// user it names. Rejections match common.ErrorUnauthorized and carry a
// RejectReason. A failing user lookup is returned as a fault that does not
// match common.ErrorUnauthorized.
func (g *Gate) Authenticate(ctx context.Context, header string) (int64, error) {
	userID, err := g.authenticate(ctx, header)

	switch {
	case err == nil:
		g.record(OutcomeAuthenticated, "")
	case errors.Is(err, common.ErrorUnauthorized):
		reason := RejectReason(err)
		g.log.Debug(ctx, "request rejected", "reason", reason, "error", err)
		g.record(OutcomeRejected, reason)
	default:
		g.log.Error(ctx, "authentication fault", "error", err)
		g.record(OutcomeFault, "")
	}

	return userID, err
}

func (g *Gate) authenticate(ctx context.Context, header string) (int64, error) {
	if header == "" {
		return 0, common.ErrTokenMissing
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return 0, common.ErrTokenMalformed
	}

	userID, err := g.tokens.Verify(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrTokenRejected, err)
	}

	if _, err := g.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, fmt.Errorf("%w: user %d no longer exists", common.ErrTokenRejected, userID)
		}
		return 0, fmt.Errorf("resolve user %d: %w", userID, err)
	}

	return userID, nil
}

func (g *Gate) record(outcome, reason string) {
	if g.recorder != nil {
		g.recorder.AuthOutcome(outcome, reason)
	}
}

// RejectReason labels a gate rejection: "missing", "malformed" or "invalid".
// It returns "" for errors that are not rejections.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenMissing):
		return "missing"
	case errors.Is(err, common.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, common.ErrTokenRejected):
		return "invalid"
	default:
		return ""
	}
}
