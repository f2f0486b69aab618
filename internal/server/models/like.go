package models

import "time"

// Like relates one user to one post. The pair is unique.
type Like struct {
	PostID    int64
	UserID    int64
	CreatedAt time.Time
}

// LikeTotal is the authoritative like count returned after every like or
// unlike; clients reconcile their optimistic view against it.
type LikeTotal struct {
	PostID     int64 `json:"postId"`
	TotalLikes int64 `json:"totalLikes"`
}
