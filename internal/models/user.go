package models

// User is a library member as returned by the backend.
// The password is write-only and never decoded from responses.
type User struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	RegistrationNumber string `json:"registration_number"`
	CreatedAt          string `json:"created_at,omitempty"`

	// Password only lives in the edit form.
	Password string `json:"-"`
}

// UserRequest is the JSON body for POST /users and PUT /users/:id.
type UserRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	RegistrationNumber string `json:"registration_number"`
	Password           string `json:"password,omitempty"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
