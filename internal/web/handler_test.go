package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/library-console/internal/api"
	"github.com/ayush/library-console/internal/audit"
	"github.com/ayush/library-console/internal/auth"
	"github.com/ayush/library-console/internal/console"
	"github.com/ayush/library-console/internal/models"
	"github.com/ayush/library-console/internal/view"
)

type call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

type failure struct {
	status  int
	message string
}

// fakeBackend is a small in-memory library API that records every request.
type fakeBackend struct {
	*httptest.Server

	mu    sync.Mutex
	calls []call
	fail  map[string]failure
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{fail: map[string]failure{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	f, failing := b.fail[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if failing {
		writeJSON(w, f.status, map[string]string{"message": f.message})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/V1/users":
		env := map[string]any{
			"data":         []models.User{{ID: 4, Name: "Rui", Email: "rui@example.com", RegistrationNumber: "R4"}},
			"current_page": page,
			"last_page":    2,
		}
		if page < 2 {
			env["next_page_url"] = "http://backend/api/V1/users?page=2"
		}
		writeJSON(w, http.StatusOK, env)
	case r.Method == http.MethodGet && r.URL.Path == "/api/V1/genres":
		writeJSON(w, http.StatusOK, []models.Genre{{ID: 1, Genre: "Drama"}, {ID: 2, Genre: "Romance"}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/V1/books":
		writeJSON(w, http.StatusOK, []models.Book{
			{ID: 1, Name: "Iracema", Status: models.BookAvailable, Genres: []models.Genre{{ID: 2, Genre: "Romance"}}},
			{ID: 2, Name: "Dom Casmurro", Status: models.BookBorrowed},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/V1/loans":
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []models.Loan{
				{ID: 5, UserID: 4, BookID: 1, CreatedAt: "2025-03-01T10:00:00.000000Z", DevolutionDate: "2025-03-15T00:00:00.000000Z", Status: models.LoanPending},
				{ID: 6, UserID: 4, BookID: 2, LoanDate: "2025-02-01", ReturnDate: "2025-02-15", Status: models.LoanReturned},
			},
			"current_page": page,
			"last_page":    1,
		})
	case r.Method == http.MethodPost:
		writeJSON(w, http.StatusCreated, map[string]any{"id": 99})
	case r.Method == http.MethodPut:
		writeJSON(w, http.StatusOK, map[string]any{})
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// find returns the recorded calls matching method and path.
func (b *fakeBackend) find(method, path string) []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []call
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (b *fakeBackend) mutations() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []call
	for _, c := range b.calls {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, e *audit.Entry) error {
	f.entries = append(f.entries, *e)
	return f.err
}

func newRouter(t *testing.T, backend *fakeBackend) (http.Handler, *fakeRecorder) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := view.New(log)
	require.NoError(t, err)

	rec := &fakeRecorder{}
	h := NewHandler(api.New(backend.URL+"/api/V1", backend.URL+"/api/login"), v, rec, log)

	sess := &auth.Session{ID: "s1", Token: "tok", User: models.User{ID: 7, Name: "Admin"}}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithSession(req.Context(), sess)))
		})
	})
	h.Routes(r)
	return r, rec
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// follow issues the GET a browser makes after a 303.
func follow(t *testing.T, h http.Handler, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return get(h, rec.Header().Get("Location"))
}

func TestUsers_ListAndEdit(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := get(h, "/users?page=2&edit=4")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Editar Usuário")
	assert.Contains(t, rec.Body.String(), `value="rui@example.com"`)
	assert.Contains(t, rec.Body.String(), "Página 2 de 2")
	assert.Contains(t, rec.Body.String(), `href="/users?page=2&amp;cancel=1"`)

	calls := backend.find(http.MethodGet, "/api/V1/users")
	require.Len(t, calls, 1)
	assert.Equal(t, "page=2", calls[0].Query)
	assert.Equal(t, "Bearer tok", calls[0].Auth)
}

func TestUsers_EditUnknownRecord(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := get(h, "/users?edit=99")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Usuário não encontrado.")
}

func TestUsers_CancelKeepsPage(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := get(h, "/users?page=2&cancel=1&done=updated")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Adicionar Novo Usuário")
	assert.NotContains(t, rec.Body.String(), "Usuário atualizado com sucesso!")
	assert.Empty(t, backend.mutations())
	calls := backend.find(http.MethodGet, "/api/V1/users")
	require.Len(t, calls, 1)
	assert.Equal(t, "page=2", calls[0].Query)
}

func TestSaveUser_UpdateOmitsBlankPassword(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)

	rec := post(h, "/users", url.Values{
		"id":                  {"4"},
		"page":                {"2"},
		"name":                {"Rui B."},
		"email":               {"rui@example.com"},
		"registration_number": {"R4"},
		"password":            {""},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users?done=updated&page=2", rec.Header().Get("Location"))

	muts := backend.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, http.MethodPut, muts[0].Method)
	assert.Equal(t, "/api/V1/users/4", muts[0].Path)
	assert.JSONEq(t, `{"name":"Rui B.","email":"rui@example.com","registration_number":"R4"}`, muts[0].Body)

	lists := backend.find(http.MethodGet, "/api/V1/users")
	require.Len(t, lists, 1)
	assert.Equal(t, "page=2", lists[0].Query)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, audit.Entry{UserID: 7, Action: audit.ActionUpdate, Resource: "users", ResourceID: 4, RemoteAddr: "192.0.2.1:1234"}, audits.entries[0])

	page := follow(t, h, rec)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Usuário atualizado com sucesso!")
	assert.Contains(t, page.Body.String(), "Adicionar Novo Usuário")
	assert.Len(t, backend.mutations(), 1, "reloading the result page does not resubmit")
}

func TestSaveUser_CreateFailureKeepsDraft(t *testing.T) {
	backend := newFakeBackend(t)
	backend.fail["POST /api/V1/users"] = failure{http.StatusUnprocessableEntity, "The email has already been taken."}
	h, audits := newRouter(t, backend)

	rec := post(h, "/users", url.Values{
		"name":                {"Ana"},
		"email":               {"rui@example.com"},
		"registration_number": {"R9"},
		"password":            {"s3cret"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Erro ao salvar usuário: The email has already been taken.")
	assert.Contains(t, body, `value="Ana"`)
	assert.Contains(t, body, "Rui", "list is still shown")
	assert.Empty(t, audits.entries)
}

func TestDeleteGenre_ConfirmThenDelete(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)

	rec := get(h, "/genres/3/delete")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tem certeza que deseja excluir este gênero?")
	assert.Contains(t, rec.Body.String(), `action="/genres/3/delete"`)
	assert.Empty(t, backend.mutations(), "confirmation alone changes nothing")

	rec = post(h, "/genres/3/delete", nil)
	assert.Equal(t, "/genres?done=deleted", rec.Header().Get("Location"))

	muts := backend.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, http.MethodDelete, muts[0].Method)
	assert.Equal(t, "/api/V1/genres/3", muts[0].Path)
	assert.Len(t, backend.find(http.MethodGet, "/api/V1/genres"), 1)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, audit.ActionDelete, audits.entries[0].Action)
	assert.Equal(t, int64(3), audits.entries[0].ResourceID)

	assert.Contains(t, follow(t, h, rec).Body.String(), "Gênero excluído com sucesso!")
}

func TestGenres_CancelEdit(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := get(h, "/genres?edit=1")
	assert.Contains(t, rec.Body.String(), `href="/genres?cancel=1"`)

	rec = get(h, "/genres?cancel=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Adicionar Novo Gênero")
}

func TestDeleteUser_BadID(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := post(h, "/users/abc/delete", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, backend.mutations())
}

func TestSaveBook_GenreSelection(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := post(h, "/books", url.Values{
		"name":                {"Memórias"},
		"author":              {"Machado"},
		"registration_number": {"B9"},
		"status":              {"available"},
		"genre_ids":           {"2", "1", "2"},
	})
	assert.Equal(t, "/books?done=created", rec.Header().Get("Location"))
	page := follow(t, h, rec)
	assert.Contains(t, page.Body.String(), "Livro criado com sucesso!")
	assert.Contains(t, page.Body.String(), `<option value="1">Drama</option>`)

	rec = post(h, "/books", url.Values{
		"id":                  {"1"},
		"name":                {"Iracema"},
		"author":              {"Alencar"},
		"registration_number": {"B1"},
		"status":              {"available"},
	})
	assert.Equal(t, "/books?done=updated", rec.Header().Get("Location"))

	muts := backend.mutations()
	require.Len(t, muts, 2)
	assert.JSONEq(t, `{"name":"Memórias","author":"Machado","registration_number":"B9","status":"available","genres":[2,1]}`, muts[0].Body)
	assert.Equal(t, "/api/V1/books/1", muts[1].Path)
	assert.JSONEq(t, `{"name":"Iracema","author":"Alencar","registration_number":"B1","status":"available","genres":[]}`, muts[1].Body)
}

func TestLoans_ListShowsFallbackDates(t *testing.T) {
	backend := newFakeBackend(t)
	h, _ := newRouter(t, backend)

	rec := get(h, "/loans")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>01/03/2025</td><td>15/03/2025</td>")
	assert.Contains(t, rec.Body.String(), "<td>01/02/2025</td><td>15/02/2025</td>")
}

func TestCreateLoan(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)

	rec := post(h, "/loans", url.Values{
		"page":        {"1"},
		"user_id":     {"4"},
		"book_id":     {"1"},
		"loan_date":   {"2025-03-01"},
		"return_date": {"2025-03-15"},
		"status":      {"pending"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/loans?done=created", rec.Header().Get("Location"))

	muts := backend.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, "/api/V1/loans", muts[0].Path)
	assert.JSONEq(t, `{"user_id":4,"book_id":1,"loan_date":"2025-03-01","return_date":"2025-03-15","status":"pending"}`, muts[0].Body)
	assert.Len(t, backend.find(http.MethodGet, "/api/V1/books"), 1)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, audit.ActionCreate, audits.entries[0].Action)
	assert.Equal(t, "loans", audits.entries[0].Resource)

	page := follow(t, h, rec)
	assert.Contains(t, page.Body.String(), "Empréstimo criado com sucesso!")
	assert.Contains(t, page.Body.String(), `<option value="4">Rui</option>`)
}

func TestCreateLoan_FailureFallbackMessage(t *testing.T) {
	backend := newFakeBackend(t)
	backend.fail["POST /api/V1/loans"] = failure{status: http.StatusUnprocessableEntity}
	h, _ := newRouter(t, backend)

	rec := post(h, "/loans", url.Values{"user_id": {"4"}, "book_id": {"1"}, "status": {"pending"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Erro ao criar empréstimo: Verifique os dados e a disponibilidade do livro.")
}

func TestReturnLoan_ConfirmThenTransition(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)

	rec := get(h, "/loans/5/return?page=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tem certeza que deseja marcar este empréstimo como devolvido?")
	assert.Contains(t, rec.Body.String(), `action="/loans/5/return?page=1"`)
	assert.Empty(t, backend.mutations())

	rec = post(h, "/loans/5/return?page=1", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/loans?done=returned", rec.Header().Get("Location"))

	muts := backend.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, http.MethodPut, muts[0].Method)
	assert.Equal(t, "/api/V1/loans/5", muts[0].Path)
	assert.JSONEq(t, `{"user_id":4,"book_id":1,"loan_date":"2025-03-01","return_date":"2025-03-15","status":"returned"}`, muts[0].Body)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, audit.ActionReturn, audits.entries[0].Action)
	assert.Equal(t, int64(5), audits.entries[0].ResourceID)

	assert.Contains(t, follow(t, h, rec).Body.String(), "Empréstimo devolvido com sucesso!")
}

func TestOverdueLoan_ReturnedLoanRefused(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)

	rec := get(h, "/loans/6/overdue?page=1")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ação não permitida: o empréstimo já está devolvido.")
	assert.NotContains(t, rec.Body.String(), "Tem certeza")

	rec = post(h, "/loans/6/overdue?page=1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ação não permitida: o empréstimo já está devolvido.")

	rec = post(h, "/loans/6/return", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Empty(t, backend.mutations())
	assert.Empty(t, audits.entries)
}

func TestOverdueLoan_NotOnPage(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)

	rec := post(h, "/loans/99/overdue", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Empréstimo não encontrado.")
	assert.Empty(t, backend.mutations())
	assert.Empty(t, audits.entries)
}

func TestTransition_KeepsLoadError(t *testing.T) {
	backend := newFakeBackend(t)
	backend.fail["GET /api/V1/loans"] = failure{http.StatusInternalServerError, "database offline"}
	h, _ := newRouter(t, backend)

	for _, rec := range []*httptest.ResponseRecorder{
		post(h, "/loans/5/return", nil),
		get(h, "/loans/5/overdue"),
	} {
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Erro ao carregar empréstimos: database offline")
		assert.NotContains(t, rec.Body.String(), "Empréstimo não encontrado.")
	}
	assert.Empty(t, backend.mutations())
}

func TestRecord_FailureDoesNotReachPage(t *testing.T) {
	backend := newFakeBackend(t)
	h, audits := newRouter(t, backend)
	audits.err = errors.New("db down")

	rec := post(h, "/genres", url.Values{"genre": {"Poesia"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/genres?done=created", rec.Header().Get("Location"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", console.ErrNotFound, http.StatusNotFound},
		{"transition refused", console.ErrTransitionNotAllowed, http.StatusConflict},
		{"client error", &api.Error{Status: http.StatusUnprocessableEntity}, http.StatusUnprocessableEntity},
		{"server error", &api.Error{Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{"transport", &api.Error{Err: errors.New("refused")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestListURL(t *testing.T) {
	assert.Equal(t, "/loans", listURL("/loans", 1))
	assert.Equal(t, "/loans?page=3", listURL("/loans", 3))
}
