package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims representa as informações presentes no token de sessão.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens HS256.
type JWTManager struct {
	secret     []byte
	sessionTTL time.Duration
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, sessionTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), sessionTTL: sessionTTL}
}

// SessionTTL expõe a validade configurada (a sessão no banco usa o mesmo prazo).
func (m *JWTManager) SessionTTL() time.Duration {
	return m.sessionTTL
}

// GenerateSessionToken cria um JWT assinado carregando o id do usuário.
// A expiração embutida é a mesma gravada na linha de sessão correspondente.
func (m *JWTManager) GenerateSessionToken(userID uuid.UUID, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(m.sessionTTL)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expires, nil
}

// ParseAndValidate verifica assinatura e expiração do token.
// A validade criptográfica não basta para autenticar: o serviço de
// autenticação ainda exige uma linha de sessão viva no banco.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}
