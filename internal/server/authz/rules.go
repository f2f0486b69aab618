// Package authz holds the ownership rules that decide who may change what.
// The functions are pure; callers load the records and check existence first.
package authz

import "github.com/dmitrijs2005/gophfeed/internal/server/models"

// CanMutatePost reports whether actor may edit or delete post.
func CanMutatePost(actor int64, post *models.Post) bool {
	return post != nil && actor == post.UserID
}

// CanMutateComment reports whether actor may edit comment.
func CanMutateComment(actor int64, comment *models.Comment) bool {
	return comment != nil && actor == comment.UserID
}

// CanDeleteComment allows the comment's author and the owner of the post it
// belongs to.
func CanDeleteComment(actor int64, comment *models.Comment, parent *models.Post) bool {
	if comment == nil {
		return false
	}
	if actor == comment.UserID {
		return true
	}
	return parent != nil && parent.ID == comment.PostID && actor == parent.UserID
}

// CanMutateUser allows a user to change only their own account.
func CanMutateUser(actor, userID int64) bool {
	return actor > 0 && actor == userID
}
