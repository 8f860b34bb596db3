package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validation struct {
	validator *validator.Validate
}

func NewValidation() *Validation {
	v := validator.New()
	v.RegisterValidation("imageurl", validateImageURL)
	return &Validation{validator: v}
}

// validateImageURL accepts absolute http(s) URLs and paths served by the image store.
func validateImageURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.HasPrefix(raw, "/") {
		return !strings.Contains(raw, "..")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidationError wraps the validator's FieldError
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", v.Field, v.Message)
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

// Errors converts the collection into a slice of messages
func (ve ValidationErrors) Errors() []string {
	errs := make([]string, 0, len(ve))
	for _, v := range ve {
		errs = append(errs, v.Error())
	}
	return errs
}

func (v *Validation) Validate(i interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validator.Struct(i)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ValidationErrors{{Field: "", Message: err.Error()}}
		}
		for _, ve := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   ve.Field(),
				Message: fmt.Sprintf("failed on the '%s' tag", ve.Tag()),
			})
		}
	}

	return errors
}
