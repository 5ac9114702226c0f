package handlers

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-chatarchive/internal/middleware"
	"github.com/iyunix/go-chatarchive/internal/ratelimit"
)

// Routes bundles everything the router mounts.
type Routes struct {
	Pages    *PageHandler
	Auth     *AuthHandler
	Archives *ArchiveHandler
	Feed     *FeedHandler
	Profile  *ProfileHandler
	Logs     *LogHandler

	Tokens  middleware.TokenValidator
	Limiter *ratelimit.MemoryRateLimiter
	Static  fs.FS
	Logger  Logger
}

func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RecoverPanic(rt.Logger))
	r.Use(middleware.LoggingMiddleware(rt.Logger))

	// --- Public routes ---
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(rt.Static))))
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", rt.Logs.LogFrontendEvent).Methods(http.MethodPost)
	r.HandleFunc("/logout", rt.Auth.Logout).Methods(http.MethodGet, http.MethodPost)

	signIn := r.NewRoute().Subrouter()
	signIn.Use(middleware.RateLimitMiddleware(rt.Limiter, "auth", rt.Logger))
	signIn.HandleFunc("/login", rt.Pages.ShowLoginPage).Methods(http.MethodGet)
	signIn.HandleFunc("/login", rt.Auth.Login).Methods(http.MethodPost)
	signIn.HandleFunc("/register", rt.Pages.ShowRegisterPage).Methods(http.MethodGet)
	signIn.HandleFunc("/register", rt.Auth.Register).Methods(http.MethodPost)

	// --- JSON API, session required ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewAPIAuthMiddleware(rt.Tokens, rt.Logger))
	api.HandleFunc("/bot/resolve", rt.Archives.ResolveBot).Methods(http.MethodPost)
	api.HandleFunc("/archives", rt.Archives.ListArchives).Methods(http.MethodGet)
	api.HandleFunc("/archives", rt.Archives.CreateArchive).Methods(http.MethodPost)
	api.HandleFunc("/archives/feed", rt.Feed.ServeArchiveFeed).Methods(http.MethodGet)
	api.HandleFunc("/archives/{id}", rt.Archives.DeleteArchive).Methods(http.MethodDelete)
	api.HandleFunc("/archives/{id}/messages", rt.Archives.ListMessages).Methods(http.MethodGet)
	api.HandleFunc("/archives/{id}/messages/{messageID:-?[0-9]+}/forward", rt.Archives.ForwardMessage).Methods(http.MethodPost)
	api.HandleFunc("/archives/{id}/forwards", rt.Archives.ForwardHistory).Methods(http.MethodGet)
	api.HandleFunc("/profile", rt.Profile.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", rt.Profile.UpdateProfile).Methods(http.MethodPut)

	// --- Pages, session required ---
	pages := r.PathPrefix("/").Subrouter()
	pages.Use(middleware.NewJWTMiddleware(rt.Tokens, rt.Logger))
	pages.HandleFunc("/", rt.Pages.ShowIndexPage).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(rt.Pages.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt.Pages.ShowErrorPage(w, http.StatusMethodNotAllowed, "Method not allowed", "The method is not allowed for this resource.")
	})
	return r
}
