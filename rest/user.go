package rest

// User is the payload every contract operation returns.
type User struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Friends []User `json:"friends,omitempty" validate:"omitempty,dive"`
}
