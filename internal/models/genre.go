package models

// Genre is a book category.
type Genre struct {
	ID    int64  `json:"id"`
	Genre string `json:"genre"`
}

// GenreRequest is the JSON body for POST /genres and PUT /genres/:id.
type GenreRequest struct {
	Genre string `json:"genre"`
}
