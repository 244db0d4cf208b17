package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30

	// Обоснование заявки и комментарий решения.
	MinReasoningLength  = 10
	MaxReasoningLength  = 2000
	MaxAwardCommentLen  = 2000
	MinEventTitleLength = 3
	MaxEventTitleLength = 200

	MinResourceTitleLength = 1
	MaxResourceTitleLength = 200
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateReasoning проверяет обоснование заявки на уровень.
func ValidateReasoning(reasoning string) error {
	if strings.TrimSpace(reasoning) == "" {
		return fmt.Errorf("обоснование заявки обязательно")
	}
	return ValidateLength("обоснование", strings.TrimSpace(reasoning), MinReasoningLength, MaxReasoningLength)
}

// ValidateDeclineComment проверяет комментарий отказа: он обязателен и
// объясняет участнику причину.
func ValidateDeclineComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return fmt.Errorf("при отказе комментарий обязателен")
	}
	return nil
}

// ValidateAwardComment проверяет длину комментария решения.
func ValidateAwardComment(comment string) error {
	return ValidateLength("комментарий", comment, 0, MaxAwardCommentLen)
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}
