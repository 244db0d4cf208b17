package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReasoning(t *testing.T) {
	assert.Error(t, ValidateReasoning(""))
	assert.Error(t, ValidateReasoning("   "))
	assert.Error(t, ValidateReasoning("коротко"))
	assert.Error(t, ValidateReasoning(strings.Repeat("а", MaxReasoningLength+1)))
	assert.NoError(t, ValidateReasoning("  Выполнил сорок самостоятельных полётов по кругу.  "))
}

func TestValidateDeclineComment(t *testing.T) {
	err := ValidateDeclineComment("  ")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "комментарий обязателен")
	assert.NoError(t, ValidateDeclineComment("Недостаточно налёта на этом типе."))
}

func TestValidateAwardComment(t *testing.T) {
	assert.NoError(t, ValidateAwardComment(""))
	assert.NoError(t, ValidateAwardComment("Молодец."))
	assert.Error(t, ValidateAwardComment(strings.Repeat("а", MaxAwardCommentLen+1)))
}

func TestValidateLengthCountsRunes(t *testing.T) {
	// Кириллица: 3 руны, но 6 байт.
	assert.NoError(t, ValidateLength("поле", "АБВ", 3, 3))
	assert.Error(t, ValidateLength("поле", "АБ", 3, 3))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("pilot@aeroclub.local"))
	assert.NoError(t, ValidateEmail("ivan.petrov+test@mail.ru"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("без-собаки"))
	assert.Error(t, ValidateEmail("a@b"))
	assert.Error(t, ValidateEmail("два@@знака.ru"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("pilot_1"))
	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("1pilot"))
	assert.Error(t, ValidateUsername("пилот"))
	assert.Error(t, ValidateUsername("pilot name"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Password123"))
	assert.Error(t, ValidatePassword("short1A"))
	assert.Error(t, ValidatePassword("alllowercase1"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, ValidatePassword("NoDigitsHere"))
}