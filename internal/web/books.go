package web

import (
	"net/http"

	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/console"
	"github.com/ayush/library-console/internal/models"
)

const booksTitle = "Livros"

func (h *Handler) newBooks(r *http.Request) *console.Books {
	c := h.client(r)
	return console.NewBooks(c.Books(), c.Genres())
}

// Books lists the books with the genre options for the form.
func (h *Handler) Books(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b := h.newBooks(r)
	applyQuery(b, q)
	b.Load(r.Context())

	status := http.StatusOK
	if id := parseInt64(q.Get("edit")); id > 0 {
		status = statusFor(b.Edit(id))
	}
	h.render(w, r, status, "books", booksTitle, b)
}

// SaveBook creates or updates a book. The multi-select posts one genre_ids
// value per chosen genre; none posted clears the book's genres.
func (h *Handler) SaveBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	b := h.newBooks(r)
	id := bindForm(b, r.PostForm, func(id int64) { b.EditRecord(models.Book{ID: id}) })

	if err := b.Submit(ctx); err != nil {
		msg := b.Error
		b.Load(ctx)
		b.Error = msg
		h.render(w, r, statusFor(err), "books", booksTitle, b)
		return
	}
	action, done := saveOutcome(id)
	h.record(r, action, "books", id)
	seeOther(w, r, "/books", 0, done)
}

func (h *Handler) ConfirmDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.confirm(w, r, h.newBooks(r).ConfirmDelete(id), "/books")
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	b := h.newBooks(r)
	if err := b.Delete(ctx, id); err != nil {
		msg := b.Error
		b.Load(ctx)
		b.Error = msg
		h.render(w, r, statusFor(err), "books", booksTitle, b)
		return
	}
	h.record(r, audit.ActionDelete, "books", id)
	seeOther(w, r, "/books", 0, console.DoneDeleted)
}
