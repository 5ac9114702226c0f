package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/iyunix/go-chatarchive/internal/preferences"
	"github.com/iyunix/go-chatarchive/internal/services/archive_services"
)

var pageTemplates = []string{"index.html", "login.html", "register.html", "error.html"}

// Renderer executes page templates, each parsed together with layout.html.
type Renderer struct {
	templates map[string]*template.Template
	logger    Logger
}

func NewRenderer(files fs.FS, logger Logger) (*Renderer, error) {
	cache := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		t, err := template.New(name).ParseFS(files, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		cache[name] = t
	}
	return &Renderer{templates: cache, logger: logger}, nil
}

// Render writes page tmpl with status. Output is buffered so a template error
// never leaves a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, status int, tmpl string, data map[string]interface{}) {
	t, ok := rd.templates[tmpl]
	if !ok {
		rd.logger.Error("template not found", "template", tmpl)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = make(map[string]interface{})
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		rd.logger.Error("template render failed", "template", tmpl, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// PageHandler composes the single archive-management page and the auth pages.
type PageHandler struct {
	renderer      *Renderer
	profile       *archive_services.ProfileService
	debounceMs    int
	secureCookies bool
}

func NewPageHandler(renderer *Renderer, profile *archive_services.ProfileService, debounceMs int, secureCookies bool) *PageHandler {
	return &PageHandler{renderer: renderer, profile: profile, debounceMs: debounceMs, secureCookies: secureCookies}
}

// ShowIndexPage renders profile editor, archive form, live list and message dialog.
// The route sits behind the page auth middleware, so anonymous visitors never get here.
func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	prefs := preferences.NewCookieStore(w, r, h.secureCookies)
	h.renderer.Render(w, http.StatusOK, "index.html", map[string]interface{}{
		"UserChatID": h.profile.Load(prefs),
		"DebounceMs": h.debounceMs,
	})
}

func (h *PageHandler) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{}
	if r.URL.Query().Get("registered") != "" {
		data["Notice"] = "Account created. Please sign in."
	}
	h.renderer.Render(w, http.StatusOK, "login.html", data)
}

func (h *PageHandler) ShowRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register.html", nil)
}

func (h *PageHandler) ShowErrorPage(w http.ResponseWriter, status int, message, description string) {
	h.renderer.Render(w, status, "error.html", map[string]interface{}{
		"Code":        status,
		"Message":     message,
		"Description": description,
	})
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.ShowErrorPage(w, http.StatusNotFound, "Page not found", "The page you are looking for does not exist.")
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
