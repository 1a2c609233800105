package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the password using DefaultCost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash string, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckOperatorSecret сверяет секрет оператора с настроенным значением.
// Настроенный секрет может быть bcrypt-хешем ($2a$/$2b$...) или открытым текстом.
// Пустой настроенный секрет запрещает выдачу токенов.
func CheckOperatorSecret(configured, provided string) bool {
	if configured == "" || provided == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return CheckPassword(configured, provided)
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) == 1
}
