package partner

import (
	"regexp"
	"strings"

	"github.com/stockroom/backend/internal/domain/shared"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func requireField(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", shared.NewValidationError("%s is required", field)
	}
	if len(value) > max {
		return "", shared.NewValidationError("%s cannot exceed %d characters", field, max)
	}
	return value, nil
}

func validatePhone(phone string) (string, error) {
	phone, err := requireField("Phone", phone, 50)
	if err != nil {
		return "", err
	}
	if !phonePattern.MatchString(phone) {
		return "", shared.NewValidationError("Invalid phone number format")
	}
	return phone, nil
}

func validateEmail(email string) (string, error) {
	email, err := requireField("Email", email, 200)
	if err != nil {
		return "", err
	}
	if !emailPattern.MatchString(email) {
		return "", shared.NewValidationError("Invalid email format")
	}
	return strings.ToLower(email), nil
}
