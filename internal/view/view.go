// Package view renders the console's HTML pages from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ayush/library-console/internal/console"
	"github.com/ayush/library-console/internal/models"
	"github.com/ayush/library-console/internal/notice"
)

//go:embed templates/*.html
var files embed.FS

var pageNames = []string{"login", "users", "books", "genres", "loans", "confirm"}

// Page is what every template receives. Data is the page-specific state.
type Page struct {
	Title         string
	Authenticated bool
	UserName      string
	Data          any
}

// Confirm is the state of a confirmation page for a destructive action.
type Confirm struct {
	Prompt string
	Action string
	Back   string
}

type Renderer struct {
	pages map[string]*template.Template
	log   *slog.Logger
}

func New(log *slog.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames)), log: log}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named page into a buffer first so a template failure
// never leaves a half-written response.
func (v *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := v.pages[name]
	if !ok {
		v.log.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		v.log.Error("render", "name", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var funcs = template.FuncMap{
	"notice": func(message, kind string) template.HTML {
		return notice.Render(message, notice.Kind(kind))
	},
	"loanedOn":    console.LoanedOn,
	"dueOn":       console.DueOn,
	"statusLabel": console.StatusLabel,
	"canReturn":   console.CanMarkReturned,
	"canOverdue":  console.CanMarkOverdue,
	"bookStatus": func(s models.BookStatus) string {
		switch s {
		case models.BookAvailable:
			return "Disponível"
		case models.BookBorrowed:
			return "Emprestado"
		}
		return string(s)
	},
	"genreNames": func(gs []models.Genre) string {
		var buf bytes.Buffer
		for i, g := range gs {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(g.Genre)
		}
		return buf.String()
	},
	"add": func(a, b int) int { return a + b },
	"pagerOf": func(path string, p models.Pagination) pager {
		return pager{Path: path, Pagination: p}
	},
}

type pager struct {
	Path       string
	Pagination models.Pagination
}
