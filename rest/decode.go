package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// DecodeUser parses a JSON response body into a new User. With validate set,
// the decoded value is also checked against the User field rules and rejected
// with ErrCodeInvalidResponse when it does not conform.
func DecodeUser(statusCode int, body []byte, validate bool) (*User, error) {
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, NewDecodeError(statusCode, body, err)
	}
	if !validate {
		return &u, nil
	}
	if err := ValidateUser(&u); err != nil {
		return nil, NewInvalidResponseError(statusCode, body, err)
	}
	return &u, nil
}

// ValidateUser checks u against its struct tag rules.
func ValidateUser(u *User) error {
	err := getValidator().Struct(u)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Namespace(), formatValidationError(e)))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
