package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/drivedash/drivedash/internal/models"
)

// Validator is a wrapper around the validator library.
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct based on its tags.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ListingError ties a validation failure to its position in a collection.
type ListingError struct {
	Index int
	ID    models.ListingID
	Err   error
}

func (e ListingError) Error() string {
	return fmt.Sprintf("listing %d (id %q): %v", e.Index, e.ID, e.Err)
}

func (e ListingError) Unwrap() error { return e.Err }

// Listings validates every record and returns the failures in order.
func (v *Validator) Listings(listings []models.Listing) []ListingError {
	var errs []ListingError
	for i, l := range listings {
		if err := v.ValidateStruct(l); err != nil {
			errs = append(errs, ListingError{Index: i, ID: l.ID, Err: err})
		}
	}
	return errs
}
