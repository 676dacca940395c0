// Package httpclient arma los clientes resty que usan los adapters de servicios
// externos (IAM, Traccar) y traduce sus respuestas a errores.
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 512
)

type Config struct {
	// Obligatorio: todos los requests usan paths relativos.
	BaseURL string
	Timeout time.Duration
	// Reintentos ante error de transporte o 5xx. 0 = sin reintentos.
	Retries int
	// Bearer fijo del servicio (Traccar). Vacío = sin Authorization por defecto.
	Token string
}

// New valida la URL base y devuelve un resty.Client con JSON por defecto.
func New(cfg Config) (*resty.Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("httpclient: base url required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("httpclient: invalid base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if cfg.Retries > 0 {
		c.SetRetryCount(cfg.Retries).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			})
	}
	if t := strings.TrimSpace(cfg.Token); t != "" {
		c.SetAuthToken(t)
	}
	return c, nil
}

// StatusError representa una respuesta no-2xx.
type StatusError struct {
	StatusCode int
	// Recortado: puede terminar en logs.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Unauthorized: el upstream rechazó las credenciales (401/403).
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Check junta el error de transporte y el status de la respuesta en un solo error.
// Un no-2xx vuelve como *StatusError.
func Check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("httpclient: do request: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("httpclient: empty response")
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode(),
			Body:       truncate(strings.TrimSpace(resp.String()), maxErrorBody),
		}
	}
	return nil
}

// truncate corta a lo sumo n bytes sin partir una runa UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
