package traccar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/platform/httpclient"
	"noahs-ark/internal/platform/logger"
	"noahs-ark/internal/ports/tracking"

	"github.com/go-resty/resty/v2"
)

// Client habla con la API REST de Traccar (/api/devices, /api/positions) con token Bearer.
type Client struct {
	http *resty.Client
	log  logger.Logger
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func New(cfg Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNop()
	}
	c, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Token:   cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("traccar: %w", err)
	}
	return &Client{http: c, log: log}, nil
}

type device struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	UniqueID string `json:"uniqueId"`
}

type position struct {
	DeviceID  int64     `json:"deviceId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	FixTime   time.Time `json:"fixTime"`
}

func (c *Client) Register(ctx context.Context, d tracking.Device) (string, error) {
	var out device
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(device{Name: d.Name, UniqueID: d.UniqueID}).
		SetResult(&out).
		Post("/api/devices")
	if err := c.check("register device", resp, err); err != nil {
		return "", err
	}
	if out.ID == 0 {
		return "", fmt.Errorf("%w: traccar register device: empty id", apperr.ErrDependency)
	}
	return strconv.FormatInt(out.ID, 10), nil
}

func (c *Client) Update(ctx context.Context, ref string, d tracking.Device) error {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return apperr.Invalid("tracking_ref", "must be numeric")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", ref).
		SetBody(device{ID: id, Name: d.Name, UniqueID: d.UniqueID}).
		Put("/api/devices/{id}")
	return c.check("update device", resp, err)
}

func (c *Client) LatestPosition(ctx context.Context, ref string) (tracking.Position, error) {
	var out []position
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("deviceId", ref).
		SetResult(&out).
		Get("/api/positions")
	if err := c.check("latest position", resp, err); err != nil {
		return tracking.Position{}, err
	}
	if len(out) == 0 {
		return tracking.Position{}, tracking.ErrNoPosition
	}

	// Traccar devuelve la última posición conocida; por las dudas tomamos la más nueva.
	latest := out[0]
	for _, p := range out[1:] {
		if p.FixTime.After(latest.FixTime) {
			latest = p
		}
	}
	return tracking.Position{
		DeviceRef: strconv.FormatInt(latest.DeviceID, 10),
		Latitude:  latest.Latitude,
		Longitude: latest.Longitude,
		Speed:     latest.Speed,
		FixTime:   latest.FixTime,
	}, nil
}

func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err := httpclient.Check(resp, err); err != nil {
		c.log.Error("traccar call failed", map[string]any{"op": op, "error": err})
		return fmt.Errorf("%w: traccar %s: %v", apperr.ErrDependency, op, err)
	}
	return nil
}
