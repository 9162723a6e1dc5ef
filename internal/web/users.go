package web

import (
	"net/http"

	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/console"
	"github.com/ayush/library-console/internal/models"
)

const usersTitle = "Usuários"

// Users lists one page of users. ?edit=<id> opens that user in the form.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ed := console.NewUsers(h.client(r).Users())
	applyQuery(ed, q)
	ed.Load(r.Context(), pageParam(q.Get("page")))

	status := http.StatusOK
	if id := parseInt64(q.Get("edit")); id > 0 {
		status = statusFor(ed.Edit(id))
	}
	h.render(w, r, status, "users", usersTitle, ed)
}

// SaveUser creates a user, or updates one when the form carries an id.
func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	page := pageParam(r.PostForm.Get("page"))

	ed := console.NewUsers(h.client(r).Users())
	ed.Pagination.CurrentPage = page
	id := bindForm(ed, r.PostForm, func(id int64) { ed.EditRecord(models.User{ID: id}) })

	if err := ed.Submit(ctx); err != nil {
		msg := ed.Error
		ed.Load(ctx, page)
		ed.Error = msg
		h.render(w, r, statusFor(err), "users", usersTitle, ed)
		return
	}
	action, done := saveOutcome(id)
	h.record(r, action, "users", id)
	seeOther(w, r, "/users", page, done)
}

func (h *Handler) ConfirmDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ed := console.NewUsers(h.client(r).Users())
	h.confirm(w, r, ed.ConfirmDelete(id), listURL("/users", pageParam(r.URL.Query().Get("page"))))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	page := pageParam(r.URL.Query().Get("page"))

	ed := console.NewUsers(h.client(r).Users())
	ed.Pagination.CurrentPage = page
	if err := ed.Delete(ctx, id); err != nil {
		msg := ed.Error
		ed.Load(ctx, page)
		ed.Error = msg
		h.render(w, r, statusFor(err), "users", usersTitle, ed)
		return
	}
	h.record(r, audit.ActionDelete, "users", id)
	seeOther(w, r, "/users", page, console.DoneDeleted)
}
