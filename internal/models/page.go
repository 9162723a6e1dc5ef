package models

import (
	"bytes"
	"encoding/json"
)

// Pagination mirrors the backend's paginator metadata.
type Pagination struct {
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
}

func (p Pagination) HasNext() bool { return p.NextPageURL != nil && *p.NextPageURL != "" }
func (p Pagination) HasPrev() bool { return p.PrevPageURL != nil && *p.PrevPageURL != "" }

// Page is one list response. Unpaginated endpoints answer with a bare array,
// which decodes into a single page.
type Page[T any] struct {
	Data []T `json:"data"`
	Pagination
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*p = Page[T]{Data: items, Pagination: Pagination{CurrentPage: 1, LastPage: 1}}
		return nil
	}

	var env struct {
		Data []T `json:"data"`
		Pagination
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*p = Page[T]{Data: env.Data, Pagination: env.Pagination}
	if p.CurrentPage == 0 {
		p.CurrentPage = 1
	}
	if p.LastPage == 0 {
		p.LastPage = p.CurrentPage
	}
	return nil
}
