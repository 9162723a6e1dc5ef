package models

type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"

	// loanDevolvido is a legacy spelling of LoanReturned still sent by
	// older backend rows.
	loanDevolvido LoanStatus = "devolvido"
)

// Normalize folds legacy spellings into the canonical status.
func (s LoanStatus) Normalize() LoanStatus {
	if s == loanDevolvido {
		return LoanReturned
	}
	return s
}

// Loan links a user to a borrowed book. Dates are kept as the backend sends
// them; the console parses them when it needs to.
type Loan struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	BookID         int64      `json:"book_id"`
	LoanDate       string     `json:"loan_date,omitempty"`
	ReturnDate     string     `json:"return_date,omitempty"`
	DevolutionDate string     `json:"devolution_date,omitempty"`
	CreatedAt      string     `json:"created_at,omitempty"`
	Status         LoanStatus `json:"status"`
	User           *User      `json:"user,omitempty"`
	Book           *Book      `json:"book,omitempty"`
}

// LoanRequest is the JSON body for POST /loans and PUT /loans/:id.
type LoanRequest struct {
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	LoanDate   string     `json:"loan_date"`
	ReturnDate string     `json:"return_date"`
	Status     LoanStatus `json:"status"`
}
