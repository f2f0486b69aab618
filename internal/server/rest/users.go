package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophfeed/internal/server/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	res, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// avatar redirects to a short-lived download URL in object storage.
func (h *Handler) avatar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	url, err := h.users.AvatarURL(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	var in services.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	if err := h.users.Delete(r.Context(), actor(r), id); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	up, err := h.users.StartAvatarUpload(r.Context(), actor(r))
	if err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

func (h *Handler) removeAvatar(w http.ResponseWriter, r *http.Request) {
	if err := h.users.RemoveAvatar(r.Context(), actor(r)); err != nil {
		writeError(r.Context(), h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
