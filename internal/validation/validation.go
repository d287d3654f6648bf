package validation

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRequired checks that a field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMinLength checks the minimum length of a string
func ValidateMinLength(value string, minLength int, fieldName string) error {
	if utf8.RuneCountInString(value) < minLength {
		return errors.New(fieldName + " must be at least " + strconv.Itoa(minLength) + " characters long")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return errors.New(fieldName + " must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	return nil
}

// ValidateUUID checks that a string is a valid UUID
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return errors.New(fieldName + " must be a valid UUID")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return errors.New("email must have a valid format")
	}
	return nil
}

// ValidateFutureDate checks that a date is not in the past
func ValidateFutureDate(date time.Time, fieldName string) error {
	if date.Before(time.Now().Add(-24 * time.Hour)) {
		return errors.New(fieldName + " cannot be in the past")
	}
	return nil
}

// SignupValidation contains validations specific to signup requests
type SignupValidation struct{}

// ValidateName validates a delegate's display name
func (v SignupValidation) ValidateName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	if err := ValidateMinLength(name, 2, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 100, "name")
}

// ValidatePassword validates a signup password
func (v SignupValidation) ValidatePassword(password string) error {
	if err := ValidateRequired(password, "password"); err != nil {
		return err
	}
	return ValidateMinLength(password, 8, "password")
}

// ValidateCountry validates a chosen country slot name
func (v SignupValidation) ValidateCountry(country string) error {
	if err := ValidateRequired(country, "country"); err != nil {
		return err
	}
	return ValidateMaxLength(country, 100, "country")
}

// ValidateSignupEmail validates a signup email address
func (v SignupValidation) ValidateSignupEmail(email string) error {
	if err := ValidateRequired(email, "email"); err != nil {
		return err
	}
	return ValidateEmail(email)
}

// EventValidation contains validations specific to events
type EventValidation struct{}

// ValidateEventTitle validates an event title
func (v EventValidation) ValidateEventTitle(title string) error {
	if err := ValidateRequired(title, "title"); err != nil {
		return err
	}
	if err := ValidateMinLength(title, 3, "title"); err != nil {
		return err
	}
	return ValidateMaxLength(title, 100, "title")
}

// ValidateEventDate rejects event dates more than a day in the past
func (v EventValidation) ValidateEventDate(date time.Time) error {
	return ValidateFutureDate(date, "date")
}

// ValidateEventDescription validates an event description
func (v EventValidation) ValidateEventDescription(description string) error {
	if err := ValidateRequired(description, "description"); err != nil {
		return err
	}
	return ValidateMaxLength(description, 1000, "description")
}

// CommunityValidation contains validations specific to communities
type CommunityValidation struct{}

// ValidateCommunityName validates a community display name
func (v CommunityValidation) ValidateCommunityName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	if err := ValidateMinLength(name, 2, "name"); err != nil {
		return err
	}
	return ValidateMaxLength(name, 100, "name")
}

// ValidateSeatCapacity validates a community seat capacity
func (v CommunityValidation) ValidateSeatCapacity(capacity int) error {
	if capacity <= 0 {
		return errors.New("seat_capacity must be greater than zero")
	}
	return nil
}

// ValidateCountries validates the country slot list for a new community
func (v CommunityValidation) ValidateCountries(countries []string) error {
	if len(countries) == 0 {
		return errors.New("at least one country is required")
	}

	seen := make(map[string]struct{}, len(countries))
	for _, country := range countries {
		name := strings.TrimSpace(country)
		if name == "" {
			return errors.New("country names cannot be empty")
		}
		if _, dup := seen[name]; dup {
			return errors.New("duplicate country: " + name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
