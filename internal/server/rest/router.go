package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"github.com/gorilla/mux"
)

type Handler struct {
	users    Users
	posts    Posts
	ledger   Interactions
	gate     Authenticator
	observer Observer
	db       Pinger
	metrics  http.Handler
	log      logging.Logger
}

// Deps lists what the API is built from. Observer, DB and Metrics may be nil.
type Deps struct {
	Users    Users
	Posts    Posts
	Ledger   Interactions
	Gate     Authenticator
	Observer Observer
	DB       Pinger
	Metrics  http.Handler
	Logger   logging.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{
		users:    d.Users,
		posts:    d.Posts,
		ledger:   d.Ledger,
		gate:     d.Gate,
		observer: d.Observer,
		db:       d.DB,
		metrics:  d.Metrics,
		log:      log.With("module", "rest"),
	}
}

// Router builds the route table. Routes wrapped in h.authenticate require
// a bearer token.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, h.observe)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/avatar", h.avatar).Methods(http.MethodGet)
	api.Handle("/users/profile-image", h.authenticate(h.uploadAvatar)).Methods(http.MethodPost)
	api.Handle("/users/profile-image", h.authenticate(h.removeAvatar)).Methods(http.MethodDelete)
	api.Handle("/users/{id:[0-9]+}", h.authenticate(h.updateUser)).Methods(http.MethodPut)
	api.Handle("/users/{id:[0-9]+}", h.authenticate(h.deleteUser)).Methods(http.MethodDelete)

	api.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/user/{userId:[0-9]+}", h.listUserPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", h.getPost).Methods(http.MethodGet)
	api.Handle("/posts", h.authenticate(h.createPost)).Methods(http.MethodPost)
	api.Handle("/posts/{id:[0-9]+}", h.authenticate(h.updatePost)).Methods(http.MethodPut)
	api.Handle("/posts/{id:[0-9]+}", h.authenticate(h.deletePost)).Methods(http.MethodDelete)

	api.HandleFunc("/comments/post/{postId:[0-9]+}", h.listComments).Methods(http.MethodGet)
	api.Handle("/comments", h.authenticate(h.createComment)).Methods(http.MethodPost)
	api.Handle("/comments/{id:[0-9]+}", h.authenticate(h.updateComment)).Methods(http.MethodPut)
	api.Handle("/comments/{id:[0-9]+}", h.authenticate(h.deleteComment)).Methods(http.MethodDelete)

	api.HandleFunc("/likes/count/{postId:[0-9]+}", h.countLikes).Methods(http.MethodGet)
	api.HandleFunc("/likes/users/{postId:[0-9]+}", h.listLikers).Methods(http.MethodGet)
	api.Handle("/likes/check/{postId:[0-9]+}", h.authenticate(h.checkLike)).Methods(http.MethodGet)
	api.Handle("/likes", h.authenticate(h.addLike)).Methods(http.MethodPost)
	api.Handle("/likes/{postId:[0-9]+}", h.authenticate(h.removeLike)).Methods(http.MethodDelete)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
