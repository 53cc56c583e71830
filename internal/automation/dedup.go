package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dispatchGuardTTL = time.Hour

// DispatchGuard evita disparo duplicado do mesmo searchId quando o
// operador reenvia o formulário. Backed por Redis com expiração; a perda
// da chave só reabre a janela de duplicidade, nunca bloqueia para sempre.
type DispatchGuard struct {
	client *redis.Client
}

// NewDispatchGuard cria o guard sobre o cliente Redis informado.
func NewDispatchGuard(client *redis.Client) *DispatchGuard {
	return &DispatchGuard{client: client}
}

// TryAcquire marca o searchId como em disparo. Retorna false quando outro
// disparo idêntico já aconteceu dentro da janela.
func (g *DispatchGuard) TryAcquire(ctx context.Context, searchID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(searchID), "1", dispatchGuardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dispatch guard: %w", err)
	}
	return ok, nil
}

// Release libera a marca, permitindo novo disparo após falha de envio.
func (g *DispatchGuard) Release(ctx context.Context, searchID string) {
	_ = g.client.Del(ctx, g.key(searchID)).Err()
}

func (g *DispatchGuard) key(searchID string) string {
	return "dispatch:" + searchID
}
