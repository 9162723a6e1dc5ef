package console

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/library-console/internal/models"
)

func loadedUsers(t *testing.T) (*Editor[models.User], *fakeStore[models.User]) {
	t.Helper()
	store := &fakeStore[models.User]{page: models.Page[models.User]{
		Data:       []models.User{{ID: 8, Name: "Bia", Email: "bia@example.com", RegistrationNumber: "2024-8", Password: "leaked"}},
		Pagination: models.Pagination{CurrentPage: 2, LastPage: 3},
	}}
	ed := NewUsers(store)
	ed.Load(context.Background(), 2)
	store.reset()
	return ed, store
}

func TestUsers_EditBlanksPassword(t *testing.T) {
	ed, _ := loadedUsers(t)

	require.NoError(t, ed.Edit(8))
	assert.Empty(t, ed.Editing.Password)
	assert.Equal(t, "Bia", ed.Editing.Name)
}

func TestUsers_UpdateOmitsBlankPassword(t *testing.T) {
	ed, store := loadedUsers(t)
	require.NoError(t, ed.Edit(8))
	ed.Change("name", "Beatriz")

	require.NoError(t, ed.Submit(context.Background()))

	c, ok := store.last("update")
	require.True(t, ok)
	b, err := json.Marshal(c.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Beatriz","email":"bia@example.com","registration_number":"2024-8"}`, string(b))
}

func TestUsers_UpdateIncludesNewPassword(t *testing.T) {
	ed, store := loadedUsers(t)
	require.NoError(t, ed.Edit(8))
	ed.Change("password", "n3w-secret")

	require.NoError(t, ed.Submit(context.Background()))

	c, _ := store.last("update")
	b, err := json.Marshal(c.Payload)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"password":"n3w-secret"`)
}

func TestUsers_CreatePayloadAndPageRefetch(t *testing.T) {
	ed, store := loadedUsers(t)
	ed.Change("name", "Caio")
	ed.Change("email", "caio@example.com")
	ed.Change("registration_number", "2024-9")
	ed.Change("password", "pw")

	require.NoError(t, ed.Submit(context.Background()))

	assert.Equal(t, []string{"create", "list"}, store.ops())
	c, _ := store.last("create")
	assert.Equal(t, models.UserRequest{Name: "Caio", Email: "caio@example.com", RegistrationNumber: "2024-9", Password: "pw"}, c.Payload)
	l, _ := store.last("list")
	assert.Equal(t, 2, l.Page, "refetch stays on the current page")
	assert.True(t, ed.Paginated())
}
