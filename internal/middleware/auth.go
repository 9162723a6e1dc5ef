package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ayush/library-console/internal/auth"
)

// Guard applies the console's routing policy: the login page is only for
// anonymous users, the root path forwards to the landing page or login, and
// every other route needs a session. It returns the redirect target, if any.
func Guard(path string, authenticated bool) (string, bool) {
	switch path {
	case "/login":
		if authenticated {
			return auth.LandingPage, true
		}
		return "", false
	case "/":
		if authenticated {
			return auth.LandingPage, true
		}
		return "/login", true
	}
	if !authenticated {
		return "/login", true
	}
	return "", false
}

// LoadSession reads the session cookie and injects the persisted session
// into the request context. A missing or expired session leaves the request
// anonymous.
func LoadSession(sessions *auth.SessionStore, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				log.WarnContext(r.Context(), "session lookup", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// Guarded redirects requests that the Guard policy turns away.
func Guarded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed := auth.FromContext(r.Context()).Authenticated()
		if target, ok := Guard(r.URL.Path, authed); ok {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
