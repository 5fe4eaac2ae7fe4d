package account

import (
	"regexp"
	"strings"
)

// emailPattern mirrors the signup form's check: ASCII local part with
// ._%+- allowed, dotted domain, TLD of two or more letters.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

// validateSignup checks the raw form fields and returns the first failure,
// in the same order the original form reported them.
func validateSignup(in SignupInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return &ValidationError{Field: "email", Reason: "cannot be empty"}
	}
	if !emailPattern.MatchString(in.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	if in.Age < 1 || in.Age > 120 {
		return &ValidationError{Field: "age", Reason: "must be between 1 and 120"}
	}
	if strings.TrimSpace(in.Gender) == "" {
		return &ValidationError{Field: "gender", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(in.Skills) == "" {
		return &ValidationError{Field: "skills", Reason: "cannot be empty"}
	}
	if in.Experience != ExperienceFresher && in.Experience != ExperienceExperienced {
		return &ValidationError{Field: "experience", Reason: "must be Fresher or Experienced"}
	}
	if len(in.Password) < minPasswordLen {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters long"}
	}
	if in.Password != in.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Reason: "passwords do not match"}
	}
	return nil
}
