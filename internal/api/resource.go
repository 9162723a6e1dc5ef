package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ayush/library-console/internal/models"
)

// Resource is the generic CRUD surface of one backend collection.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) url(suffix ...string) string {
	u := r.c.baseURL + "/" + r.path
	for _, s := range suffix {
		u += "/" + url.PathEscape(s)
	}
	return u
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }

// List fetches one page of the collection; page <= 0 asks for the default.
func (r *Resource[T]) List(ctx context.Context, page int) (models.Page[T], error) {
	u := r.url()
	if page > 0 {
		u += "?page=" + strconv.Itoa(page)
	}
	var out models.Page[T]
	if err := r.c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return models.Page[T]{}, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var raw json.RawMessage
	var out T
	if err := r.c.do(ctx, http.MethodGet, r.url(idString(id)), nil, &raw); err != nil {
		return out, err
	}
	return decodeRecord[T](raw)
}

func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var raw json.RawMessage
	var out T
	if err := r.c.do(ctx, http.MethodPost, r.url(), payload, &raw); err != nil {
		return out, err
	}
	return decodeRecord[T](raw)
}

func (r *Resource[T]) Update(ctx context.Context, id int64, payload any) (T, error) {
	var raw json.RawMessage
	var out T
	if err := r.c.do(ctx, http.MethodPut, r.url(idString(id)), payload, &raw); err != nil {
		return out, err
	}
	return decodeRecord[T](raw)
}

func (r *Resource[T]) Remove(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, r.url(idString(id)), nil, nil)
}

// decodeRecord accepts either the bare record or a {"data": record}
// wrapper. Bodies that are not JSON objects yield the zero record.
func decodeRecord[T any](raw json.RawMessage) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return out, nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		raw = wrapped.Data
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &Error{Err: fmt.Errorf("decode record: %w", err)}
	}
	return out, nil
}

// LoanResource adds the return transition to the loans collection.
type LoanResource struct {
	*Resource[models.Loan]
}

// Return issues PUT /loans/:id/return.
func (r *LoanResource) Return(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodPut, r.url(idString(id), "return"), nil, nil)
}
