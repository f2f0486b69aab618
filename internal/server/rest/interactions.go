package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophfeed/internal/common"
	"github.com/dmitrijs2005/gophfeed/internal/server/models"
)

var errMissingPostID = fmt.Errorf("%w: postId is required", common.ErrorInvalid)

type commentRequest struct {
	PostID int64  `json:"postId"`
	Text   string `json:"text"`
}

type likeRequest struct {
	PostID int64 `json:"postId"`
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	seq, err := h.ledger.Comments(r.Context(), postID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	out := []models.CommentView{}
	for c, err := range seq {
		if err != nil {
			writeError(r.Context(), h.log, w, err)
			return
		}
		out = append(out, c)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var in commentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	if in.PostID <= 0 {
		writeError(r.Context(), h.log, w, errMissingPostID)
		return
	}

	c, err := h.ledger.CreateComment(r.Context(), actor(r), in.PostID, in.Text)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	var in commentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	c, err := h.ledger.UpdateComment(r.Context(), id, actor(r), in.Text)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	if err := h.ledger.DeleteComment(r.Context(), id, actor(r)); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addLike answers with the authoritative total; clients that updated their
// count optimistically reconcile against it.
func (h *Handler) addLike(w http.ResponseWriter, r *http.Request) {
	var in likeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	if in.PostID <= 0 {
		writeError(r.Context(), h.log, w, errMissingPostID)
		return
	}

	total, err := h.ledger.AddLike(r.Context(), actor(r), in.PostID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.LikeTotal{PostID: in.PostID, TotalLikes: total})
}

func (h *Handler) removeLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	total, err := h.ledger.RemoveLike(r.Context(), actor(r), postID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.LikeTotal{PostID: postID, TotalLikes: total})
}

func (h *Handler) checkLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	liked, err := h.ledger.HasLiked(r.Context(), actor(r), postID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *Handler) countLikes(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	total, err := h.ledger.CountLikes(r.Context(), postID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

func (h *Handler) listLikers(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	users, err := h.ledger.ListLikers(r.Context(), postID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
