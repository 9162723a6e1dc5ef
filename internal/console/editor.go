// Package console holds the state and behaviour of the console's resource
// pages. Every page is a list that can be created into, edited, and deleted
// from; Editor implements that shape once and the page types specialise it.
package console

import (
	"context"
	"errors"

	"github.com/ayush/library-console/internal/api"
	"github.com/ayush/library-console/internal/models"
)

// ErrNotFound is returned when an action names a record that is not in the
// currently loaded page.
var ErrNotFound = errors.New("record not in loaded page")

// Lister fetches one page of a collection.
type Lister[T any] interface {
	List(ctx context.Context, page int) (models.Page[T], error)
}

// Store is the backend collection an Editor works against.
type Store[T any] interface {
	Lister[T]
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id int64, payload any) (T, error)
	Remove(ctx context.Context, id int64) error
}

// Messages are the user-facing strings of one page. The *Error fields are
// prefixes; the server message (or a fallback) is appended after ": ".
type Messages struct {
	Created       string
	Updated       string
	Deleted       string
	LoadError     string
	SaveError     string
	DeleteError   string
	SaveFallback  string
	NotFound      string
	ConfirmDelete string
}

// Schema adapts one record type to an Editor.
type Schema[T any] struct {
	Blank func() T
	ID    func(T) int64
	// Set applies a form field to rec; unknown fields are ignored.
	Set func(rec *T, field string, values []string)
	// Prepare transforms a listed record before it is edited. Optional.
	Prepare func(T) T
	// Payload builds the request DTO sent on create or update.
	Payload   func(rec T, editing bool) any
	Messages  Messages
	Paginated bool
}

// Confirmation is a pending destructive action awaiting the user's answer.
type Confirmation struct {
	ID     int64
	Prompt string
}

type Editor[T any] struct {
	Items      []T
	Draft      T
	Editing    *T
	Success    string
	Error      string
	Pagination models.Pagination

	store  Store[T]
	schema Schema[T]
}

func NewEditor[T any](store Store[T], schema Schema[T]) *Editor[T] {
	return &Editor[T]{
		Draft:      schema.Blank(),
		Pagination: models.Pagination{CurrentPage: 1, LastPage: 1},
		store:      store,
		schema:     schema,
	}
}

func (e *Editor[T]) Paginated() bool { return e.schema.Paginated }

// Active returns the record the form is bound to: the one being edited, or
// the create draft.
func (e *Editor[T]) Active() T {
	if e.Editing != nil {
		return *e.Editing
	}
	return e.Draft
}

func (e *Editor[T]) active() *T {
	if e.Editing != nil {
		return e.Editing
	}
	return &e.Draft
}

// Load fetches the list. A failure leaves Items untouched.
func (e *Editor[T]) Load(ctx context.Context, page int) {
	if !e.schema.Paginated {
		page = 0
	}
	p, err := e.store.List(ctx, page)
	if err != nil {
		e.Error = failure(e.schema.Messages.LoadError, err, "")
		return
	}
	e.Items = p.Data
	if e.Items == nil {
		e.Items = []T{}
	}
	e.Pagination = p.Pagination
	e.Error = ""
}

func (e *Editor[T]) reload(ctx context.Context) {
	e.Load(ctx, e.Pagination.CurrentPage)
}

// Change sets one form field on whichever record the form is bound to.
func (e *Editor[T]) Change(field string, values ...string) {
	e.schema.Set(e.active(), field, values)
}

// Submit creates the draft or updates the record being edited, then
// re-fetches the list.
func (e *Editor[T]) Submit(ctx context.Context) error {
	e.Success, e.Error = "", ""
	msgs := e.schema.Messages

	if e.Editing != nil {
		rec := *e.Editing
		if _, err := e.store.Update(ctx, e.schema.ID(rec), e.schema.Payload(rec, true)); err != nil {
			e.Error = failure(msgs.SaveError, err, "")
			return err
		}
		e.Success = msgs.Updated
		e.Editing = nil
	} else {
		if _, err := e.store.Create(ctx, e.schema.Payload(e.Draft, false)); err != nil {
			e.Error = failure(msgs.SaveError, err, msgs.SaveFallback)
			return err
		}
		e.Success = msgs.Created
		e.Draft = e.schema.Blank()
	}

	e.reload(ctx)
	return nil
}

// Edit binds the form to the loaded record with the given id.
func (e *Editor[T]) Edit(id int64) error {
	rec, ok := e.Find(id)
	if !ok {
		e.Success = ""
		e.Error = e.schema.Messages.NotFound
		return ErrNotFound
	}
	e.EditRecord(rec)
	return nil
}

// EditRecord binds the form to a copy of rec.
func (e *Editor[T]) EditRecord(rec T) {
	if e.schema.Prepare != nil {
		rec = e.schema.Prepare(rec)
	}
	e.Editing = &rec
	e.Success, e.Error = "", ""
}

// Find looks a record up in the loaded page.
func (e *Editor[T]) Find(id int64) (T, bool) {
	for _, it := range e.Items {
		if e.schema.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// ConfirmDelete returns the prompt the user must accept before Delete.
func (e *Editor[T]) ConfirmDelete(id int64) Confirmation {
	return Confirmation{ID: id, Prompt: e.schema.Messages.ConfirmDelete}
}

// Delete removes a record. Callers invoke it only after the user accepted
// ConfirmDelete.
func (e *Editor[T]) Delete(ctx context.Context, id int64) error {
	e.Success, e.Error = "", ""
	if err := e.store.Remove(ctx, id); err != nil {
		e.Error = failure(e.schema.Messages.DeleteError, err, "")
		return err
	}
	e.Success = e.schema.Messages.Deleted
	e.reload(ctx)
	return nil
}

// Outcomes of completed actions, carried across a redirect.
const (
	DoneCreated  = "created"
	DoneUpdated  = "updated"
	DoneDeleted  = "deleted"
	DoneReturned = "returned"
	DoneOverdue  = "overdue"
)

// Notify shows the success notice for a completed action. Unknown outcomes
// are ignored.
func (e *Editor[T]) Notify(done string) {
	msgs := e.schema.Messages
	switch done {
	case DoneCreated:
		e.Success = msgs.Created
	case DoneUpdated:
		e.Success = msgs.Updated
	case DoneDeleted:
		e.Success = msgs.Deleted
	}
}

// Cancel leaves edit mode and resets the form. It never touches the network.
func (e *Editor[T]) Cancel() {
	e.Editing = nil
	e.Draft = e.schema.Blank()
	e.Success, e.Error = "", ""
}

// failure formats "<prefix>: <server message | fallback | transport error>".
func failure(prefix string, err error, fallback string) string {
	msg := api.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = api.Message(err)
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
