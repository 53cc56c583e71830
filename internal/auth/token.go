package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashSessionToken produz o hash SHA-256 (base64url) persistido na tabela
// de sessões. O token assinado em si nunca toca o banco.
func HashSessionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
