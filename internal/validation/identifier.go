package validation

import (
	"fmt"
	"regexp"
)

// RecordIDPattern определяет допустимый формат идентификатора записи
// Латинские буквы, цифры, а также символы _ - . :
// Покрывает UUID и короткие идентификаторы вида prod_1
var RecordIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ClientIDPattern определяет допустимый формат идентификатора клиента
var ClientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

const (
	// MaxRecordIDLen максимальная длина идентификатора записи
	MaxRecordIDLen = 128
)

// ValidateRecordID проверяет идентификатор записи
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if len(id) > MaxRecordIDLen {
		return fmt.Errorf("id must not exceed %d characters", MaxRecordIDLen)
	}

	if !RecordIDPattern.MatchString(id) {
		return fmt.Errorf("id can only contain letters, numbers and the characters _ - . :")
	}

	return nil
}

// ValidateClientID проверяет идентификатор клиента, которому выдается токен
// Длина: 3-64 символа, только латинские буквы, цифры, _ и -
func ValidateClientID(clientID string) error {
	if clientID == "" {
		return fmt.Errorf("client id cannot be empty")
	}

	if !ClientIDPattern.MatchString(clientID) {
		return fmt.Errorf("client id must be 3-64 characters of letters, numbers, _ or -")
	}

	return nil
}
