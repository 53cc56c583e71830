package util

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// MinPasswordLen é o mínimo exigido no cadastro. Hashes antigos de senhas
// mais curtas continuam válidos no login.
const MinPasswordLen = 8

// ValidateEmail aceita apenas endereços simples. Formas com display name
// ("Ana <ana@x>") passam no parser mas não são e-mails de cadastro.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email inválido")
	}
	return nil
}

// ValidatePassword aplica o requisito mínimo de cadastro.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("senha deve ter pelo menos %d caracteres", MinPasswordLen)
	}
	return nil
}

// RequireString garante campo textual preenchido (espaços não contam).
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s obrigatório", field)
	}
	return nil
}
