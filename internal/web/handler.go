// Package web serves the console's resource pages. Every request builds its
// own console editor over an API client carrying the session's token.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/library-console/internal/api"
	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/auth"
	"github.com/ayush/library-console/internal/console"
	"github.com/ayush/library-console/internal/view"
)

// Handler holds the page handlers.
type Handler struct {
	backend *api.Client
	view    *view.Renderer
	audit   audit.Recorder
	log     *slog.Logger
	now     func() time.Time
}

func NewHandler(backend *api.Client, v *view.Renderer, rec audit.Recorder, log *slog.Logger) *Handler {
	return &Handler{backend: backend, view: v, audit: rec, log: log, now: time.Now}
}

// Routes mounts the resource pages. Destructive actions answer GET with a
// confirmation page and run on POST.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/users", h.Users)
	r.Post("/users", h.SaveUser)
	r.Get("/users/{id}/delete", h.ConfirmDeleteUser)
	r.Post("/users/{id}/delete", h.DeleteUser)

	r.Get("/genres", h.Genres)
	r.Post("/genres", h.SaveGenre)
	r.Get("/genres/{id}/delete", h.ConfirmDeleteGenre)
	r.Post("/genres/{id}/delete", h.DeleteGenre)

	r.Get("/books", h.Books)
	r.Post("/books", h.SaveBook)
	r.Get("/books/{id}/delete", h.ConfirmDeleteBook)
	r.Post("/books/{id}/delete", h.DeleteBook)

	r.Get("/loans", h.Loans)
	r.Post("/loans", h.CreateLoan)
	r.Get("/loans/{id}/return", h.ConfirmReturn)
	r.Post("/loans/{id}/return", h.ReturnLoan)
	r.Get("/loans/{id}/overdue", h.ConfirmOverdue)
	r.Post("/loans/{id}/overdue", h.OverdueLoan)
}

// client returns an API client carrying the session's bearer token.
func (h *Handler) client(r *http.Request) *api.Client {
	sess := auth.FromContext(r.Context())
	if !sess.Authenticated() {
		return h.backend.WithToken("")
	}
	return h.backend.WithToken(sess.Token)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := view.Page{Title: title, Data: data}
	if sess := auth.FromContext(r.Context()); sess.Authenticated() {
		page.Authenticated = true
		page.UserName = sess.User.Name
	}
	h.view.Render(w, status, name, page)
}

// confirm renders the confirmation page for a destructive action. Accepting
// posts back to the same URL.
func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, c console.Confirmation, back string) {
	h.render(w, r, http.StatusOK, "confirm", "Confirmar", view.Confirm{
		Prompt: c.Prompt,
		Action: r.URL.RequestURI(),
		Back:   back,
	})
}

// record writes an audit entry for a successful mutation. Failures are
// logged and never reach the page.
func (h *Handler) record(r *http.Request, action, resource string, id int64) {
	e := &audit.Entry{
		Action:     action,
		Resource:   resource,
		ResourceID: id,
		RemoteAddr: r.RemoteAddr,
	}
	if sess := auth.FromContext(r.Context()); sess != nil {
		e.UserID = sess.User.ID
	}
	if err := h.audit.Record(r.Context(), e); err != nil {
		h.log.WarnContext(r.Context(), "audit record", "action", action, "resource", resource, "err", err)
	}
}

type fieldSetter interface {
	Change(field string, values ...string)
}

// bindForm copies the posted fields onto the editor. A posted id is handed
// to edit first so the fields land on the record being edited.
func bindForm(ed fieldSetter, form url.Values, edit func(id int64)) int64 {
	id := parseInt64(form.Get("id"))
	if id > 0 {
		edit(id)
	}
	bindFields(ed, form)
	return id
}

func bindFields(ed fieldSetter, form url.Values) {
	for field, values := range form {
		if field == "id" || field == "page" {
			continue
		}
		ed.Change(field, values...)
	}
}

// saveOutcome names a save for the audit trail and for the notice shown
// after the redirect.
func saveOutcome(id int64) (action, done string) {
	if id > 0 {
		return audit.ActionUpdate, console.DoneUpdated
	}
	return audit.ActionCreate, console.DoneCreated
}

type listState interface {
	Notify(done string)
	Cancel()
}

// applyQuery replays the outcome of a redirected action (?done=) or leaves
// edit mode (?cancel=1). It runs before the list is loaded so a load error
// stays visible.
func applyQuery(st listState, q url.Values) {
	if q.Get("cancel") != "" {
		st.Cancel()
		return
	}
	st.Notify(q.Get("done"))
}

// seeOther finishes a successful mutation with a redirect to the list, so a
// browser refresh does not repeat it.
func seeOther(w http.ResponseWriter, r *http.Request, path string, page int, done string) {
	q := url.Values{"done": {done}}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	http.Redirect(w, r, path+"?"+q.Encode(), http.StatusSeeOther)
}

// statusFor maps an action's error to the page's response status.
func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, console.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, console.ErrTransitionNotAllowed) {
		return http.StatusConflict
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func pathID(r *http.Request) (int64, bool) {
	id := parseInt64(chi.URLParam(r, "id"))
	return id, id > 0
}

func pageParam(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func parseInt64(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func listURL(path string, page int) string {
	if page > 1 {
		return path + "?page=" + strconv.Itoa(page)
	}
	return path
}
