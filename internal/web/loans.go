package web

import (
	"context"
	"net/http"

	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/console"
)

const loansTitle = "Empréstimos"

func (h *Handler) newLoans(r *http.Request) *console.Loans {
	c := h.client(r)
	return console.NewLoans(c.Loans(), c.Users(), c.Books(), h.now)
}

// Loans lists one page of loans alongside the create form.
func (h *Handler) Loans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	l := h.newLoans(r)
	applyQuery(l, q)
	l.Load(r.Context(), pageParam(q.Get("page")))
	h.render(w, r, http.StatusOK, "loans", loansTitle, l)
}

// CreateLoan creates the posted loan. Loans are never edited in place.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	page := pageParam(r.PostForm.Get("page"))

	l := h.newLoans(r)
	l.Pagination.CurrentPage = page
	bindFields(l, r.PostForm)

	if err := l.Submit(ctx); err != nil {
		msg := l.Error
		l.Load(ctx, page)
		l.Error = msg
		h.render(w, r, statusFor(err), "loans", loansTitle, l)
		return
	}
	h.record(r, audit.ActionCreate, "loans", 0)
	seeOther(w, r, "/loans", page, console.DoneCreated)
}

func (h *Handler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	h.confirmTransition(w, r, (*console.Loans).ConfirmReturn)
}

func (h *Handler) ConfirmOverdue(w http.ResponseWriter, r *http.Request) {
	h.confirmTransition(w, r, (*console.Loans).ConfirmOverdue)
}

func (h *Handler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionReturn, console.DoneReturned, (*console.Loans).MarkReturned)
}

func (h *Handler) OverdueLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, audit.ActionOverdue, console.DoneOverdue, (*console.Loans).MarkOverdue)
}

// loadPage loads the loans page an action was taken from, since the loan is
// looked up in the loaded list. It renders the page and reports false when
// the loans themselves could not be fetched.
func (h *Handler) loadPage(w http.ResponseWriter, r *http.Request, l *console.Loans, page int) bool {
	l.Load(r.Context(), page)
	if len(l.Items) == 0 && l.Error != "" {
		h.render(w, r, http.StatusBadGateway, "loans", loansTitle, l)
		return false
	}
	return true
}

// confirmTransition shows the confirmation page, or the loans page with an
// error when the loan is missing or its status forbids the action.
func (h *Handler) confirmTransition(w http.ResponseWriter, r *http.Request,
	ask func(l *console.Loans, id int64) (console.Confirmation, error)) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	page := pageParam(r.URL.Query().Get("page"))

	l := h.newLoans(r)
	if !h.loadPage(w, r, l, page) {
		return
	}
	c, err := ask(l, id)
	if err != nil {
		h.render(w, r, statusFor(err), "loans", loansTitle, l)
		return
	}
	h.confirm(w, r, c, listURL("/loans", page))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action, done string,
	apply func(l *console.Loans, ctx context.Context, id int64) error) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	page := pageParam(r.URL.Query().Get("page"))

	l := h.newLoans(r)
	if !h.loadPage(w, r, l, page) {
		return
	}
	if err := apply(l, r.Context(), id); err != nil {
		h.render(w, r, statusFor(err), "loans", loansTitle, l)
		return
	}
	h.record(r, action, "loans", id)
	seeOther(w, r, "/loans", page, done)
}
