package auth

import "golang.org/x/crypto/bcrypt"

// O custo 12 segue a política histórica da plataforma; não reduzir.
const bcryptCost = 12

// HashPassword gera um hash bcrypt com salt embutido.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compara a senha em claro com o hash persistido.
func CheckPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
