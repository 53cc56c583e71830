package util

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"ana@captei.com.br", "a.b+tag@example.org"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("e-mail válido %q rejeitado: %v", email, err)
		}
	}

	invalid := []string{"", "   ", "sem-arroba", "@dominio.com", "Ana <ana@captei.com.br>"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Fatalf("e-mail inválido %q aceito", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("1234567"); err == nil {
		t.Fatal("senha abaixo do mínimo aceita")
	}
	if err := ValidatePassword("12345678"); err != nil {
		t.Fatalf("senha no mínimo exato rejeitada: %v", err)
	}
}

func TestRequireString(t *testing.T) {
	if err := RequireString("   ", "name"); err == nil {
		t.Fatal("campo em branco aceito")
	}
	if err := RequireString("valor", "name"); err != nil {
		t.Fatalf("campo preenchido rejeitado: %v", err)
	}
}
