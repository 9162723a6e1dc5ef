package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayush/library-console/internal/models"
)

// ErrTransitionNotAllowed is returned when a loan's status forbids the
// requested transition.
var ErrTransitionNotAllowed = errors.New("loan status transition not allowed")

const (
	dateLayout    = "2006-01-02"
	displayLayout = "02/01/2006"

	// maxLookupPages bounds how many pages of users the loan form pulls in.
	maxLookupPages = 50
)

// Loans is the loans page. Instead of a generic edit it offers two status
// transitions, and its create form draws on the users and books lists.
type Loans struct {
	*Editor[models.Loan]
	Users []models.User
	Books []models.Book

	users Lister[models.User]
	books Lister[models.Book]
}

func NewLoans(loans Store[models.Loan], users Lister[models.User], books Lister[models.Book], now func() time.Time) *Loans {
	if now == nil {
		now = time.Now
	}
	blank := func() models.Loan {
		today := now().Format(dateLayout)
		return models.Loan{LoanDate: today, ReturnDate: today, Status: models.LoanPending}
	}
	ed := NewEditor(loans, Schema[models.Loan]{
		Blank: blank,
		ID:    func(l models.Loan) int64 { return l.ID },
		Set:   setLoanField,
		Payload: func(l models.Loan, _ bool) any {
			return models.LoanRequest{
				UserID:     l.UserID,
				BookID:     l.BookID,
				LoanDate:   l.LoanDate,
				ReturnDate: l.ReturnDate,
				Status:     l.Status,
			}
		},
		Messages: Messages{
			Created:      "Empréstimo criado com sucesso!",
			Deleted:      "Empréstimo excluído com sucesso!",
			LoadError:    "Erro ao carregar empréstimos",
			SaveError:    "Erro ao criar empréstimo",
			SaveFallback: "Verifique os dados e a disponibilidade do livro.",
			DeleteError:  "Erro ao excluir empréstimo",
			NotFound:     "Empréstimo não encontrado.",
		},
		Paginated: true,
	})
	return &Loans{Editor: ed, users: users, books: books}
}

func setLoanField(l *models.Loan, field string, values []string) {
	v := first(values)
	switch field {
	case "user_id":
		l.UserID = parseID(v)
	case "book_id":
		l.BookID = parseID(v)
	case "loan_date":
		l.LoanDate = v
	case "return_date":
		l.ReturnDate = v
	case "status":
		l.Status = models.LoanStatus(v)
	}
}

func parseID(v string) int64 {
	ids := parseIDs([]string{v})
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

// Load fetches the requested page of loans plus the users and books the
// create form selects from.
func (l *Loans) Load(ctx context.Context, page int) {
	l.Editor.Load(ctx, page)
	l.LoadUsers(ctx)
	l.LoadBooks(ctx)
}

func (l *Loans) LoadUsers(ctx context.Context) {
	var all []models.User
	for page := 1; page <= maxLookupPages; page++ {
		p, err := l.users.List(ctx, page)
		if err != nil {
			l.Error = failure("Erro ao carregar usuários", err, "")
			return
		}
		all = append(all, p.Data...)
		if !p.HasNext() || p.CurrentPage >= p.LastPage {
			break
		}
	}
	l.Users = all
}

// LoadBooks keeps only books in a loanable lifecycle state.
func (l *Loans) LoadBooks(ctx context.Context) {
	p, err := l.books.List(ctx, 0)
	if err != nil {
		l.Error = failure("Erro ao carregar livros", err, "")
		return
	}
	books := make([]models.Book, 0, len(p.Data))
	for _, b := range p.Data {
		if b.Status == models.BookAvailable || b.Status == models.BookBorrowed {
			books = append(books, b)
		}
	}
	l.Books = books
}

// Submit creates the drafted loan, then refreshes loans and books.
func (l *Loans) Submit(ctx context.Context) error {
	if err := l.Editor.Submit(ctx); err != nil {
		return err
	}
	l.LoadBooks(ctx)
	return nil
}

// BookOptions lists the books a new loan may take: available ones only.
func (l *Loans) BookOptions() []Option {
	var out []Option
	for _, b := range l.Books {
		if b.Status != models.BookAvailable {
			continue
		}
		out = append(out, Option{Value: b.ID, Label: availabilityLabel(b)})
	}
	return out
}

func availabilityLabel(b models.Book) string {
	switch b.Status {
	case models.BookAvailable:
		return b.Name + " (Disponível)"
	case models.BookBorrowed:
		return b.Name + " (Emprestado)"
	}
	return b.Name
}

const (
	returnedMsg = "Empréstimo devolvido com sucesso!"
	overdueMsg  = "Empréstimo marcado como atrasado!"
)

// ConfirmReturn returns the prompt for marking a loaded loan returned. It
// refuses loans whose status does not allow the transition.
func (l *Loans) ConfirmReturn(id int64) (Confirmation, error) {
	if _, err := l.gate(id, models.LoanReturned); err != nil {
		return Confirmation{}, err
	}
	return Confirmation{ID: id, Prompt: "Tem certeza que deseja marcar este empréstimo como devolvido?"}, nil
}

func (l *Loans) ConfirmOverdue(id int64) (Confirmation, error) {
	if _, err := l.gate(id, models.LoanOverdue); err != nil {
		return Confirmation{}, err
	}
	return Confirmation{ID: id, Prompt: "Tem certeza que deseja marcar este empréstimo como atrasado?"}, nil
}

// MarkReturned resends the loan with status returned and refreshes loans and
// books.
func (l *Loans) MarkReturned(ctx context.Context, id int64) error {
	if err := l.transition(ctx, id, models.LoanReturned, returnedMsg, "Erro ao devolver empréstimo"); err != nil {
		return err
	}
	l.LoadBooks(ctx)
	return nil
}

// MarkOverdue resends the loan with status overdue and refreshes loans.
func (l *Loans) MarkOverdue(ctx context.Context, id int64) error {
	return l.transition(ctx, id, models.LoanOverdue, overdueMsg, "Erro ao marcar como atrasado")
}

// Notify also knows the two transition outcomes.
func (l *Loans) Notify(done string) {
	switch done {
	case DoneReturned:
		l.Success = returnedMsg
	case DoneOverdue:
		l.Success = overdueMsg
	default:
		l.Editor.Notify(done)
	}
}

// gate finds the loan in the loaded page and checks that it may move to
// status: pending loans may be returned or marked overdue, overdue loans may
// only be returned, returned loans are final.
func (l *Loans) gate(id int64, status models.LoanStatus) (models.Loan, error) {
	loan, ok := l.Find(id)
	if !ok {
		l.Success = ""
		l.Error = l.schema.Messages.NotFound
		return loan, ErrNotFound
	}
	allowed := CanMarkReturned(loan)
	if status == models.LoanOverdue {
		allowed = CanMarkOverdue(loan)
	}
	if !allowed {
		l.Success = ""
		l.Error = fmt.Sprintf("Ação não permitida: o empréstimo já está %s.", strings.ToLower(StatusLabel(loan.Status)))
		return loan, ErrTransitionNotAllowed
	}
	return loan, nil
}

// transition rebuilds the full loan from the loaded copy with only the
// status changed. The backend has no partial status endpoint.
func (l *Loans) transition(ctx context.Context, id int64, status models.LoanStatus, okMsg, errPrefix string) error {
	l.Success, l.Error = "", ""

	loan, err := l.gate(id, status)
	if err != nil {
		return err
	}
	req, err := transitionRequest(loan, status)
	if err != nil {
		l.Error = errPrefix + ": " + err.Error()
		return err
	}
	if _, err := l.store.Update(ctx, id, req); err != nil {
		l.Error = failure(errPrefix, err, "")
		return err
	}
	l.Success = okMsg
	l.reload(ctx)
	return nil
}

// loanedOn is the date the loan started: loan_date, else the creation
// timestamp.
func loanedOn(loan models.Loan) string {
	if loan.LoanDate != "" {
		return loan.LoanDate
	}
	return loan.CreatedAt
}

// dueOn is the date the book is due back: devolution_date, else return_date.
func dueOn(loan models.Loan) string {
	if loan.DevolutionDate != "" {
		return loan.DevolutionDate
	}
	return loan.ReturnDate
}

func transitionRequest(loan models.Loan, status models.LoanStatus) (models.LoanRequest, error) {
	loanDate, err := parseDate(loanedOn(loan))
	if err != nil {
		return models.LoanRequest{}, fmt.Errorf("data de empréstimo inválida: %w", err)
	}
	dueDate, err := parseDate(dueOn(loan))
	if err != nil {
		return models.LoanRequest{}, fmt.Errorf("data de devolução inválida: %w", err)
	}

	return models.LoanRequest{
		UserID:     loan.UserID,
		BookID:     loan.BookID,
		LoanDate:   loanDate.Format(dateLayout),
		ReturnDate: dueDate.Format(dateLayout),
		Status:     status,
	}, nil
}

var dateLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// CanMarkReturned gates the "mark returned" action.
func CanMarkReturned(loan models.Loan) bool {
	return loan.Status.Normalize() != models.LoanReturned
}

// CanMarkOverdue gates the "mark overdue" action.
func CanMarkOverdue(loan models.Loan) bool {
	s := loan.Status.Normalize()
	return s != models.LoanReturned && s != models.LoanOverdue
}

// StatusLabel localises a loan status for display.
func StatusLabel(s models.LoanStatus) string {
	switch s.Normalize() {
	case models.LoanPending:
		return "Pendente"
	case models.LoanReturned:
		return "Devolvido"
	case models.LoanOverdue:
		return "Atrasado"
	}
	return string(s)
}

// FormatDate renders a backend date as dd/mm/yyyy, or returns it unchanged
// when it cannot be parsed.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := parseDate(s)
	if err != nil {
		return s
	}
	return t.Format(displayLayout)
}

// LoanDates returns the table's two date columns, loan start and due date,
// formatted for display.
func LoanDates(loan models.Loan) (loaned, due string) {
	return FormatDate(loanedOn(loan)), FormatDate(dueOn(loan))
}

// LoanedOn and DueOn are the single-value forms used by the templates.
func LoanedOn(loan models.Loan) string {
	loaned, _ := LoanDates(loan)
	return loaned
}

func DueOn(loan models.Loan) string {
	_, due := LoanDates(loan)
	return due
}

// UserName resolves the borrower's name from the embedded user or the
// loaded users list.
func (l *Loans) UserName(loan models.Loan) string {
	if loan.User != nil {
		return loan.User.Name
	}
	for _, u := range l.Users {
		if u.ID == loan.UserID {
			return u.Name
		}
	}
	return "N/A"
}

func (l *Loans) BookName(loan models.Loan) string {
	if loan.Book != nil {
		return loan.Book.Name
	}
	for _, b := range l.Books {
		if b.ID == loan.BookID {
			return b.Name
		}
	}
	return "N/A"
}
