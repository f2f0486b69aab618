package models

import "time"

type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// CommentView is a comment with its author's public data attached.
type CommentView struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"postId"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    PublicUser `json:"author"`
}
