package validation

import (
	"fmt"
	"unicode"
)

// MinPasswordLength — минимальная длина пароля.
const MinPasswordLength = 8

// ValidatePassword проверяет требования к паролю: длина, регистр, цифра.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("пароль должен содержать хотя бы одну заглавную букву")
	}
	if !hasLower {
		return fmt.Errorf("пароль должен содержать хотя бы одну строчную букву")
	}
	if !hasDigit {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}

	return nil
}
