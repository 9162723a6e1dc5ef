package console

import "github.com/ayush/library-console/internal/models"

func NewGenres(store Store[models.Genre]) *Editor[models.Genre] {
	return NewEditor(store, Schema[models.Genre]{
		Blank: func() models.Genre { return models.Genre{} },
		ID:    func(g models.Genre) int64 { return g.ID },
		Set: func(g *models.Genre, field string, values []string) {
			if field == "genre" {
				g.Genre = first(values)
			}
		},
		Payload: func(g models.Genre, _ bool) any {
			return models.GenreRequest{Genre: g.Genre}
		},
		Messages: Messages{
			Created:       "Gênero criado com sucesso!",
			Updated:       "Gênero atualizado com sucesso!",
			Deleted:       "Gênero excluído com sucesso!",
			LoadError:     "Erro ao carregar gêneros",
			SaveError:     "Erro ao salvar gênero",
			DeleteError:   "Erro ao excluir gênero",
			NotFound:      "Gênero não encontrado.",
			ConfirmDelete: "Tem certeza que deseja excluir este gênero?",
		},
	})
}
