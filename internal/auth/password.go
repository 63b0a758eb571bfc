package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const minPasswordLength = 6

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ValidatePassword enforces the registration policy: at least six characters with one
// upper-case and one lower-case letter.
func ValidatePassword(password string) error {
	var upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}

	var problems []string
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, "password must be at least 6 characters")
	}
	if !upper {
		problems = append(problems, "password must contain an upper-case letter")
	}
	if !lower {
		problems = append(problems, "password must contain a lower-case letter")
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(problems[0], map[string]any{"password": problems})
	}
	return nil
}
