package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port              int
	DBDSN             string
	RedisURL          string
	JWTSecret         string
	SessionTTL        time.Duration
	EncryptionKey     []byte
	AllowOrigins      []string
	RateLimitPublic   RateLimitConfig
	RateLimitAuth     RateLimitConfig
	Webhook           WebhookConfig
	ReconcileInterval time.Duration
	AlertWebhookURL   string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// WebhookConfig descreve o destino padrão do gateway de automação.
// A URL do ambiente serve de fallback quando não há registro no banco.
type WebhookConfig struct {
	URL      string
	Timeout  time.Duration
	Source   string
	Platform string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	dsn, err := resolveDSN()
	if err != nil {
		return nil, err
	}
	cfg.DBDSN = dsn

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = sessionTTL

	key, err := parseEncryptionKey(getEnv("ENCRYPTION_KEY", ""))
	if err != nil {
		return nil, err
	}
	cfg.EncryptionKey = key

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	webhookTimeout, err := parseDurationEnv("WEBHOOK_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Webhook = WebhookConfig{
		URL:      strings.TrimSpace(getEnv("WEBHOOK_URL", "")),
		Timeout:  webhookTimeout,
		Source:   getEnv("WEBHOOK_SOURCE", "captei"),
		Platform: getEnv("WEBHOOK_PLATFORM", "linkedin"),
	}

	reconcile, err := parseDurationEnv("RECONCILE_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ReconcileInterval = reconcile

	cfg.AlertWebhookURL = strings.TrimSpace(getEnv("ALERT_WEBHOOK_URL", ""))

	return cfg, nil
}

// resolveDSN prefere DATABASE_URL e, na ausência, monta a DSN a partir
// das variáveis DB_* individuais.
func resolveDSN() (string, error) {
	if dsn := strings.TrimSpace(getEnv("DATABASE_URL", "")); dsn != "" {
		return dsn, nil
	}

	host := getEnv("DB_HOST", "")
	if host == "" {
		return "", errors.New("defina DATABASE_URL ou DB_HOST")
	}

	name := getEnv("DB_NAME", "")
	if name == "" {
		return "", errors.New("DB_NAME obrigatório")
	}

	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	port := getEnv("DB_PORT", "5432")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=webapp",
		url.QueryEscape(user), url.QueryEscape(password), host, port, name, sslmode)
	return dsn, nil
}

// parseEncryptionKey aceita chave em hex ou base64 e exige 32 bytes (AES-256).
func parseEncryptionKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("ENCRYPTION_KEY obrigatória")
	}

	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	if len(raw) == 32 {
		return []byte(raw), nil
	}

	return nil, errors.New("ENCRYPTION_KEY deve ter 32 bytes (hex, base64 ou literal)")
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
