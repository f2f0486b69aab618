package models

import "time"

type Post struct {
	ID        int64
	UserID    int64
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostView is a post as listed: with its author and the current like total.
type PostView struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Author     PublicUser `json:"author"`
	TotalLikes int64      `json:"totalLikes"`
}
