package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-chatarchive/internal/auth"
	"github.com/iyunix/go-chatarchive/internal/dtos"
	"github.com/iyunix/go-chatarchive/internal/middleware"
	"github.com/iyunix/go-chatarchive/internal/services/user_services"
)

// AuthHandler backs the sign-in pages.
type AuthHandler struct {
	auth          *user_services.AuthService
	renderer      *Renderer
	logger        Logger
	secureCookies bool
}

func NewAuthHandler(authService *user_services.AuthService, renderer *Renderer, logger Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: authService, renderer: renderer, logger: logger, secureCookies: secureCookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	req := dtos.RegisterRequest{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	if err := dtos.Validate(req); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "register.html", map[string]interface{}{"Error": err.Error(), "Username": req.Username})
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		status, msg := http.StatusBadRequest, err.Error()
		if errors.Is(err, user_services.ErrUsernameTaken) {
			status, msg = http.StatusConflict, "That username is already taken."
		}
		h.logger.Warn("registration rejected", "error", err)
		h.renderer.Render(w, status, "register.html", map[string]interface{}{"Error": msg, "Username": req.Username})
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Login sets the session cookie and sends the user to the archive page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	req := dtos.LoginRequest{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	if err := dtos.Validate(req); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "login.html", map[string]interface{}{"Error": "Username and password are required."})
		return
	}

	_, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.renderer.Render(w, http.StatusUnauthorized, "login.html", map[string]interface{}{"Error": "Invalid username or password.", "Username": req.Username})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Expires:  time.Now().Add(auth.SessionTTL),
		HttpOnly: true,
		Secure:   h.secureCookies,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
