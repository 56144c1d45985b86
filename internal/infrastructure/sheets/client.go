// Package sheets entrega los mensajes del outbox a la Web App de Google Sheets (Apps Script).
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
)

var _ outbox.Sink = (*Client)(nil)

// DefaultTimeout timeout de cada POST.
const DefaultTimeout = 15 * time.Second

// Client implementa outbox.Sink con un POST JSON por mensaje.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient construye el cliente. timeout <= 0 usa DefaultTimeout.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ack struct {
	OK *bool `json:"ok"`
}

// Deliver agrega api_key al payload y lo envía. Solo una respuesta JSON con "ok": true cuenta como
// entrega; HTTP >= 400, cuerpo no JSON u ok ausente/false son fallos.
func (c *Client) Deliver(ctx context.Context, payload json.RawMessage) error {
	if c.url == "" {
		return fmt.Errorf("sheets: SHEETS_WEBAPP_URL no configurada")
	}
	body, err := withAPIKey(payload, c.apiKey)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheets: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("sheets: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("sheets: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("sheets: leer respuesta: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sheets: HTTP %d: %s", resp.StatusCode, snippet(raw))
	}

	var a ack
	if err := json.Unmarshal(raw, &a); err != nil {
		return fmt.Errorf("sheets: respuesta inválida: %s", snippet(raw))
	}
	if a.OK == nil || !*a.OK {
		return fmt.Errorf("sheets: respuesta sin ok=true: %s", snippet(raw))
	}
	return nil
}

func withAPIKey(payload json.RawMessage, apiKey string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("sheets: payload no es un objeto JSON: %w", err)
	}
	key, err := json.Marshal(apiKey)
	if err != nil {
		return nil, err
	}
	fields["api_key"] = key
	return json.Marshal(fields)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
