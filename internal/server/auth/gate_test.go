package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type outcome struct{ outcome, reason string }

type fakeRecorder struct{ got []outcome }

func (r *fakeRecorder) AuthOutcome(o, reason string) { r.got = append(r.got, outcome{o, reason}) }

func newGate(t *testing.T, users *fakeUsers) (*Gate, *TokenService, *fakeRecorder) {
	t.Helper()
	tokens := NewTokenService([]byte("secret"), time.Hour)
	rec := &fakeRecorder{}
	return NewGate(tokens, users, nil, rec), tokens, rec
}

func TestAuthenticate_Success(t *testing.T) {
	g, tokens, rec := newGate(t, &fakeUsers{users: map[int64]*models.User{5: {ID: 5}}})
	tok, err := tokens.Issue(5)
	require.NoError(t, err)

	id, err := g.Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	// scheme is case-insensitive
	id, err = g.Authenticate(context.Background(), "bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	assert.Equal(t, []outcome{{OutcomeAuthenticated, ""}, {OutcomeAuthenticated, ""}}, rec.got)
}

func TestAuthenticate_Rejections(t *testing.T) {
	users := &fakeUsers{users: map[int64]*models.User{5: {ID: 5}}}
	g, tokens, _ := newGate(t, users)
	good, err := tokens.Issue(5)
	require.NoError(t, err)
	gone, err := tokens.Issue(6)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"missing", "", "missing"},
		{"wrong scheme", "Token abc123", "malformed"},
		{"no scheme", good, "malformed"},
		{"extra part", "Bearer " + good + " x", "malformed"},
		{"bad token", "Bearer abc123", "invalid"},
		{"empty token", "Bearer ", "invalid"},
		{"deleted user", "Bearer " + gone, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Authenticate(context.Background(), tt.header)
			require.ErrorIs(t, err, common.ErrorUnauthorized)
			assert.Equal(t, tt.reason, RejectReason(err))
		})
	}
}

func TestAuthenticate_ExpiredIsInvalid(t *testing.T) {
	g, tokens, rec := newGate(t, &fakeUsers{users: map[int64]*models.User{5: {ID: 5}}})
	issued := time.Now()
	tokens.now = fixedClock(issued)
	tok, err := tokens.Issue(5)
	require.NoError(t, err)

	tokens.now = fixedClock(issued.Add(2 * time.Hour))
	_, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Equal(t, "invalid", RejectReason(err))
	assert.Equal(t, []outcome{{OutcomeRejected, "invalid"}}, rec.got)
}

func TestAuthenticate_LookupFaultIsNotARejection(t *testing.T) {
	boom := errors.New("connection refused")
	g, tokens, rec := newGate(t, &fakeUsers{err: boom})
	tok, err := tokens.Issue(5)
	require.NoError(t, err)

	_, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "", RejectReason(err))
	assert.Equal(t, []outcome{{OutcomeFault, ""}}, rec.got)
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := UserIDFromContext(WithUserID(context.Background(), 9))
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}
