package domain

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Contact is the persisted contact record.
type Contact struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber"`
	Company     *string   `json:"company"`
	JobTitle    *string   `json:"jobTitle"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContactInput carries the client-writable fields for create.
// Optional fields stay nil when omitted from the request body.
type ContactInput struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Company     *string `json:"company"`
	JobTitle    *string `json:"jobTitle"`
}

// Validate checks the required fields. The returned error wraps ErrValidation.
func (in ContactInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required.Error("first name is required")),
		validation.Field(&in.LastName, validation.Required.Error("last name is required")),
		validation.Field(&in.Email, validation.Required.Error("email is required")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ContactUpdate carries the fields a PUT changes. A nil field keeps the stored
// value, so a body of just {"company": "..."} touches only the company column.
// JSON null is treated the same as an omitted field.
type ContactUpdate struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Company     *string `json:"company"`
	JobTitle    *string `json:"jobTitle"`
}

// Validate rejects required fields that are present but empty. Absent fields pass.
// The returned error wraps ErrValidation.
func (u ContactUpdate) Validate() error {
	err := validation.ValidateStruct(&u,
		validation.Field(&u.FirstName, validation.NilOrNotEmpty.Error("first name cannot be empty")),
		validation.Field(&u.LastName, validation.NilOrNotEmpty.Error("last name cannot be empty")),
		validation.Field(&u.Email, validation.NilOrNotEmpty.Error("email cannot be empty")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
