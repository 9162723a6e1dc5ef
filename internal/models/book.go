package models

type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
)

// Book is a catalogue entry. Genres are read as full objects and written
// back as a list of ids.
type Book struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"registration_number"`
	Author             string     `json:"author"`
	Status             BookStatus `json:"status"`
	Genres             []Genre    `json:"genres,omitempty"`

	// GenreIDs is the multi-select state of the edit form.
	GenreIDs []int64 `json:"-"`
}

// BookRequest is the JSON body for POST /books and PUT /books/:id.
type BookRequest struct {
	Name               string     `json:"name"`
	Author             string     `json:"author"`
	RegistrationNumber string     `json:"registration_number"`
	Status             BookStatus `json:"status"`
	Genres             []int64    `json:"genres"`
}
