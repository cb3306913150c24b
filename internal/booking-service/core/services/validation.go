package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"driver-booking/internal/booking-service/core/myerrors"
)

const (
	MinNameLen = 1
	MaxNameLen = 100

	MinEmailLen = 5
	MaxEmailLen = 100

	MinPasswordLen = 6
	MaxPasswordLen = 72
)

var uuidV4 = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidUUID reports whether id has the shape of a version 4 UUID.
func IsValidUUID(id string) bool {
	return uuidV4.MatchString(id)
}

func validateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return myerrors.Invalid(field, "is required")
	}
	if l := len(name); l < MinNameLen || l > MaxNameLen {
		return myerrors.Invalid(field, "must be between 1 and 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return myerrors.Invalid("email", "is required")
	}
	if l := len(email); l < MinEmailLen || l > MaxEmailLen {
		return myerrors.Invalid("email", "must be between 5 and 100 characters")
	}
	if strings.Count(email, "@") != 1 {
		return myerrors.Invalid("email", "must contain exactly one @")
	}
	return nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return myerrors.Invalid(field, "is required")
	}
	if l := len(password); l < MinPasswordLen || l > MaxPasswordLen {
		return myerrors.Invalid(field, "must be between 6 and 72 characters")
	}
	return nil
}

func validateConfirm(password, confirm string) error {
	if password != confirm {
		return myerrors.Invalid("confirm_password", "passwords do not match")
	}
	return nil
}

// leadingInt parses the integer prefix of free text such as "5+ years".
// Text without a leading number yields 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
