package web

import (
	"net/http"

	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/console"
	"github.com/ayush/library-console/internal/models"
)

const genresTitle = "Gêneros"

func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ed := console.NewGenres(h.client(r).Genres())
	applyQuery(ed, q)
	ed.Load(r.Context(), 0)

	status := http.StatusOK
	if id := parseInt64(q.Get("edit")); id > 0 {
		status = statusFor(ed.Edit(id))
	}
	h.render(w, r, status, "genres", genresTitle, ed)
}

func (h *Handler) SaveGenre(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	ed := console.NewGenres(h.client(r).Genres())
	id := bindForm(ed, r.PostForm, func(id int64) { ed.EditRecord(models.Genre{ID: id}) })

	if err := ed.Submit(ctx); err != nil {
		msg := ed.Error
		ed.Load(ctx, 0)
		ed.Error = msg
		h.render(w, r, statusFor(err), "genres", genresTitle, ed)
		return
	}
	action, done := saveOutcome(id)
	h.record(r, action, "genres", id)
	seeOther(w, r, "/genres", 0, done)
}

func (h *Handler) ConfirmDeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ed := console.NewGenres(h.client(r).Genres())
	h.confirm(w, r, ed.ConfirmDelete(id), "/genres")
}

func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	ed := console.NewGenres(h.client(r).Genres())
	if err := ed.Delete(ctx, id); err != nil {
		msg := ed.Error
		ed.Load(ctx, 0)
		ed.Error = msg
		h.render(w, r, statusFor(err), "genres", genresTitle, ed)
		return
	}
	h.record(r, audit.ActionDelete, "genres", id)
	seeOther(w, r, "/genres", 0, console.DoneDeleted)
}
