package console

import (
	"context"
	"sync"

	"github.com/ayush/library-console/internal/models"
)

type call struct {
	Op      string
	ID      int64
	Page    int
	Payload any
}

// fakeStore is an in-memory Store that records every call.
type fakeStore[T any] struct {
	mu    sync.Mutex
	calls []call

	page      models.Page[T]
	listErr   error
	createErr error
	updateErr error
	removeErr error
}

func (f *fakeStore[T]) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeStore[T]) List(_ context.Context, page int) (models.Page[T], error) {
	f.record(call{Op: "list", Page: page})
	if f.listErr != nil {
		return models.Page[T]{}, f.listErr
	}
	return f.page, nil
}

func (f *fakeStore[T]) Create(_ context.Context, payload any) (T, error) {
	f.record(call{Op: "create", Payload: payload})
	var zero T
	return zero, f.createErr
}

func (f *fakeStore[T]) Update(_ context.Context, id int64, payload any) (T, error) {
	f.record(call{Op: "update", ID: id, Payload: payload})
	var zero T
	return zero, f.updateErr
}

func (f *fakeStore[T]) Remove(_ context.Context, id int64) error {
	f.record(call{Op: "remove", ID: id})
	return f.removeErr
}

func (f *fakeStore[T]) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Op)
	}
	return out
}

func (f *fakeStore[T]) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeStore[T]) last(op string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Op == op {
			return f.calls[i], true
		}
	}
	return call{}, false
}

func pageOf[T any](items ...T) models.Page[T] {
	return models.Page[T]{Data: items, Pagination: models.Pagination{CurrentPage: 1, LastPage: 1}}
}
