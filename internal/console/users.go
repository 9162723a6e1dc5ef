package console

import "github.com/ayush/library-console/internal/models"

// NewUsers builds the paginated users page.
func NewUsers(store Store[models.User]) *Editor[models.User] {
	return NewEditor(store, Schema[models.User]{
		Blank: func() models.User { return models.User{} },
		ID:    func(u models.User) int64 { return u.ID },
		Set: func(u *models.User, field string, values []string) {
			v := first(values)
			switch field {
			case "name":
				u.Name = v
			case "email":
				u.Email = v
			case "registration_number":
				u.RegistrationNumber = v
			case "password":
				u.Password = v
			}
		},
		// The stored password is never shown again.
		Prepare: func(u models.User) models.User {
			u.Password = ""
			return u
		},
		Payload: func(u models.User, _ bool) any {
			return models.UserRequest{
				Name:               u.Name,
				Email:              u.Email,
				RegistrationNumber: u.RegistrationNumber,
				Password:           u.Password,
			}
		},
		Messages: Messages{
			Created:       "Usuário criado com sucesso!",
			Updated:       "Usuário atualizado com sucesso!",
			Deleted:       "Usuário excluído com sucesso!",
			LoadError:     "Erro ao carregar usuários",
			SaveError:     "Erro ao salvar usuário",
			DeleteError:   "Erro ao excluir usuário",
			NotFound:      "Usuário não encontrado.",
			ConfirmDelete: "Tem certeza que deseja excluir este usuário?",
		},
		Paginated: true,
	})
}
