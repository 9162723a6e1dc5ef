package console

import (
	"context"
	"strconv"

	"github.com/ayush/library-console/internal/models"
)

// Option is one entry of a select control.
type Option struct {
	Value int64
	Label string
}

// Books is the books page: plain CRUD plus a genre multi-select.
type Books struct {
	*Editor[models.Book]
	Genres []Option

	genres Lister[models.Genre]
}

func NewBooks(books Store[models.Book], genres Lister[models.Genre]) *Books {
	ed := NewEditor(books, Schema[models.Book]{
		Blank: blankBook,
		ID:    func(b models.Book) int64 { return b.ID },
		Set:   setBookField,
		Prepare: func(b models.Book) models.Book {
			b.GenreIDs = make([]int64, 0, len(b.Genres))
			for _, g := range b.Genres {
				b.GenreIDs = append(b.GenreIDs, g.ID)
			}
			return b
		},
		Payload: func(b models.Book, _ bool) any {
			ids := b.GenreIDs
			if ids == nil {
				ids = []int64{}
			}
			return models.BookRequest{
				Name:               b.Name,
				Author:             b.Author,
				RegistrationNumber: b.RegistrationNumber,
				Status:             b.Status,
				Genres:             ids,
			}
		},
		Messages: Messages{
			Created:       "Livro criado com sucesso!",
			Updated:       "Livro atualizado com sucesso!",
			Deleted:       "Livro excluído com sucesso!",
			LoadError:     "Erro ao carregar livros",
			SaveError:     "Erro ao salvar livro",
			DeleteError:   "Erro ao excluir livro",
			NotFound:      "Livro não encontrado.",
			ConfirmDelete: "Tem certeza que deseja excluir este livro?",
		},
	})
	return &Books{Editor: ed, genres: genres}
}

func blankBook() models.Book {
	return models.Book{Status: models.BookAvailable, GenreIDs: []int64{}}
}

func setBookField(b *models.Book, field string, values []string) {
	switch field {
	case "name":
		b.Name = first(values)
	case "registration_number":
		b.RegistrationNumber = first(values)
	case "author":
		b.Author = first(values)
	case "status":
		b.Status = models.BookStatus(first(values))
	}
}

// Change binds a form field; the genre multi-select goes through
// SelectGenres.
func (b *Books) Change(field string, values ...string) {
	if field == "genre_ids" {
		b.SelectGenres(parseIDs(values))
		return
	}
	b.Editor.Change(field, values...)
}

// Load fetches books and the genre options.
func (b *Books) Load(ctx context.Context) {
	b.Editor.Load(ctx, 0)
	b.LoadGenres(ctx)
}

func (b *Books) LoadGenres(ctx context.Context) {
	p, err := b.genres.List(ctx, 0)
	if err != nil {
		b.Error = failure("Erro ao carregar gêneros", err, "")
		return
	}
	opts := make([]Option, 0, len(p.Data))
	for _, g := range p.Data {
		opts = append(opts, Option{Value: g.ID, Label: g.Genre})
	}
	b.Genres = opts
}

// SelectGenres records the multi-select's chosen ids on the active record,
// keeping selection order and dropping repeats.
func (b *Books) SelectGenres(ids []int64) {
	b.active().GenreIDs = dedupe(ids)
}

// SelectedGenres maps the active record's ids back to options for display.
// Ids missing from the loaded options fall back to the record's own genres.
func (b *Books) SelectedGenres() []Option {
	rec := b.Active()
	out := make([]Option, 0, len(rec.GenreIDs))
	for _, id := range rec.GenreIDs {
		if opt, ok := b.genreOption(id, rec.Genres); ok {
			out = append(out, opt)
		}
	}
	return out
}

// IsSelected reports whether a genre is chosen on the active record.
func (b *Books) IsSelected(id int64) bool {
	for _, g := range b.Active().GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

func (b *Books) genreOption(id int64, embedded []models.Genre) (Option, bool) {
	for _, o := range b.Genres {
		if o.Value == id {
			return o, true
		}
	}
	for _, g := range embedded {
		if g.ID == id {
			return Option{Value: g.ID, Label: g.Genre}, true
		}
	}
	return Option{}, false
}

func parseIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return dedupe(ids)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
