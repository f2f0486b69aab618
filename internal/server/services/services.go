// Package services contains server-side business logic: accounts, posts and
// the interaction ledger (likes and comments). Services receive their stores
// through a RepositoryManager and never hold package-level state.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophfeed/internal/common"
)

// AvatarStore signs direct uploads and downloads of avatar objects.
type AvatarStore interface {
	PresignUpload(ctx context.Context, userID int64) (key, uploadURL string, err error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// LikeRecorder is told the result of every like or unlike.
type LikeRecorder interface {
	LikeOp(op, result string)
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", common.ErrorInvalid, field)
	}
	return v, nil
}
