package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrTimeout indica que o motor de automação não respondeu no prazo.
	ErrTimeout = errors.New("automação: tempo de resposta esgotado")
	// ErrUnreachable indica falha de rede antes de qualquer resposta (DNS, conexão recusada).
	ErrUnreachable = errors.New("automação: destino inacessível")
	// ErrRejected indica resposta não-2xx do motor de automação.
	ErrRejected = errors.New("automação: requisição rejeitada")
	// ErrNoWebhook indica ausência de URL configurada (banco e ambiente).
	ErrNoWebhook = errors.New("automação: webhook não configurado")
)

// Request carrega os filtros de segmentação enviados ao fluxo externo.
type Request struct {
	SearchID  string
	UserID    string
	UserEmail string
	Sectors   []string
	Profiles  []string
	RoleIDs   []int
	Roles     []string
	Regions   []string
}

// Client dispara o webhook do motor de automação (n8n) que executa a
// prospecção de fato. Uma única chamada GET, sem retry: quem decide
// repetir é o operador.
type Client struct {
	httpClient *http.Client
	source     string
	platform   string
}

// New cria o cliente com timeout limitado. O default de 10s cobre o
// tempo de aceite do fluxo, não sua execução.
func New(timeout time.Duration, source, platform string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		source:     source,
		platform:   platform,
	}
}

// Dispatch invoca o webhook configurado com os filtros da campanha.
// Resposta 2xx significa "fluxo aceito"; qualquer outro resultado vira um
// dos erros sentinela para que o chamador apresente mensagem acionável.
func (c *Client) Dispatch(ctx context.Context, webhookURL string, req Request) error {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return ErrNoWebhook
	}

	q := url.Values{}
	q.Set("sectors", strings.Join(req.Sectors, ","))
	q.Set("profiles", strings.Join(req.Profiles, ","))
	q.Set("roleIds", joinInts(req.RoleIDs))
	q.Set("roles", strings.Join(req.Roles, ","))
	q.Set("regions", strings.Join(req.Regions, ","))
	q.Set("searchId", req.SearchID)
	q.Set("userId", req.UserID)
	q.Set("userEmail", req.UserEmail)
	q.Set("source", c.source)
	q.Set("platform", c.platform)
	q.Set("timestamp", time.Now().UTC().Format(time.RFC3339))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, webhookURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	// Corpo drenado apenas para reaproveitar a conexão; o conteúdo não importa.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	log.Info().
		Str("search_id", req.SearchID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("automação: webhook disparado")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	return nil
}

// classifyTransportError separa timeout de destino inacessível para que a
// interface consiga distinguir "demorou demais" de "não existe/fora do ar".
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}
