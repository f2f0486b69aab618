package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophfeed/internal/server/services"
)

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) listUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	posts, err := h.posts.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), actor(r), in)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	var in services.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), actor(r), id); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
