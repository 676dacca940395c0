package tracking

import (
	"context"
	"errors"
	"time"
)

// Device es lo que se registra en el servicio externo de tracking.
type Device struct {
	Name     string
	UniqueID string
}

type Position struct {
	DeviceRef string    `json:"device_ref"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	FixTime   time.Time `json:"fix_time"`
}

// DeviceTracker es el colaborador externo (Traccar). Devuelve su id opaco del device.
type DeviceTracker interface {
	Register(ctx context.Context, d Device) (string, error)
	Update(ctx context.Context, ref string, d Device) error
	LatestPosition(ctx context.Context, ref string) (Position, error)
}

// ErrNoPosition: el device existe pero todavía no reportó posición.
var ErrNoPosition = errors.New("tracking: no position reported")
