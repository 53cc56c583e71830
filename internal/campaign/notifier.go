package campaign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Notifier envia alertas de expiração para canais externos.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// WebhookNotifier publica mensagens em um webhook estilo Slack.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier devolve nil quando não há URL configurada; o
// reconciliador trata notifier nulo como alerta desligado.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	if webhookURL == "" {
		return nil
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify envia o texto como payload JSON simples.
func (n *WebhookNotifier) Notify(ctx context.Context, text string) error {
	if n == nil || n.webhookURL == "" {
		return errors.New("notifier não configurado")
	}

	body, err := json.Marshal(map[string]any{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alerta rejeitado: status %d", resp.StatusCode)
	}
	return nil
}
