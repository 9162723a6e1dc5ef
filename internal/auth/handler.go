package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ayush/library-console/internal/api"
	"github.com/ayush/library-console/internal/models"
	"github.com/ayush/library-console/internal/view"
)

// LandingPage is where an authenticated user is sent by default.
const LandingPage = "/loans"

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
}

// Handler serves the login page and logout. It is the only writer of
// sessions.
type Handler struct {
	backend      Authenticator
	sessions     *SessionStore
	view         *view.Renderer
	log          *slog.Logger
	secureCookie bool
}

func NewHandler(backend Authenticator, sessions *SessionStore, v *view.Renderer, log *slog.Logger, secureCookie bool) *Handler {
	return &Handler{backend: backend, sessions: sessions, view: v, log: log, secureCookie: secureCookie}
}

// LoginForm is the state of the login page.
type LoginForm struct {
	Email    string
	Success  string
	Error    string
	Redirect string
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, LoginForm{})
}

// Login authenticates against the backend and persists the issued token in a
// new session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, LoginForm{Error: "Erro no login: formulário inválido."})
		return
	}
	creds := models.LoginRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	form := LoginForm{Email: creds.Email}
	if creds.Email == "" || creds.Password == "" {
		form.Error = "Erro no login: informe e-mail e senha."
		h.render(w, r, http.StatusBadRequest, form)
		return
	}

	resp, err := h.backend.Login(r.Context(), creds)
	if err != nil {
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = "Credenciais inválidas."
		}
		h.log.WarnContext(r.Context(), "login failed", "email", creds.Email, "err", err)
		form.Error = "Erro no login: " + msg
		h.render(w, r, http.StatusUnauthorized, form)
		return
	}
	if resp.Token == "" {
		form.Error = "Erro no login: Credenciais inválidas."
		h.render(w, r, http.StatusUnauthorized, form)
		return
	}

	sess, err := h.onLoginSuccess(w, r, resp.Token, resp.User)
	if err != nil {
		h.log.ErrorContext(r.Context(), "session create", "err", err)
		form.Error = "Erro no login: não foi possível iniciar a sessão."
		h.render(w, r, http.StatusInternalServerError, form)
		return
	}

	h.log.InfoContext(r.Context(), "login", "user_id", resp.User.ID)
	form.Success = "Login realizado com sucesso! Redirecionando..."
	form.Redirect = LandingPage
	h.render(w, r.WithContext(WithSession(r.Context(), sess)), http.StatusOK, form)
}

// onLoginSuccess persists the token and hands the browser its session cookie.
func (h *Handler) onLoginSuccess(w http.ResponseWriter, r *http.Request, token string, user models.User) (*Session, error) {
	sess, err := h.sessions.Create(r.Context(), token, user)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
	return sess, nil
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.log.WarnContext(r.Context(), "session delete", "err", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, form LoginForm) {
	sess := FromContext(r.Context())
	page := view.Page{Title: "Login", Data: form}
	if sess.Authenticated() {
		page.Authenticated = true
		page.UserName = sess.User.Name
	}
	h.view.Render(w, status, "login", page)
}
