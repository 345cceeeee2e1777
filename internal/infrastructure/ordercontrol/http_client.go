// Package ordercontrol implementa el cliente del subsistema de pedidos: las
// señales suspend/resume que acotan el intake mientras hay conteo activo.
// El receptor debe ser idempotente; de este lado las señales son best-effort.
package ordercontrol

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/pkg/logger"
)

var _ cyclecount.OrderControl = (*Client)(nil)

// Client envía suspend/resume vía POST a la URL configurada.
// Con URL vacía las señales se omiten (modo standalone, solo log).
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient construye el cliente con timeout corto: una señal colgada no
// puede demorar la transición de estado que la originó.
func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

// Suspend pide al subsistema de pedidos frenar el intake.
func (c *Client) Suspend(ctx context.Context) error {
	return c.post(ctx, "suspend")
}

// Resume pide al subsistema de pedidos reanudar el intake.
func (c *Client) Resume(ctx context.Context) error {
	return c.post(ctx, "resume")
}

func (c *Client) post(ctx context.Context, action string) error {
	if c.baseURL == "" {
		c.log.Debug().Str("action", action).Msg("control de pedidos desactivado, señal omitida")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+action, nil)
	if err != nil {
		return fmt.Errorf("armar request %s: %w", action, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("señal %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("señal %s: status %d", action, resp.StatusCode)
	}
	c.log.Debug().Str("action", action).Msg("señal enviada al control de pedidos")
	return nil
}
