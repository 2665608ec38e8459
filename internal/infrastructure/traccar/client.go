// Package traccar is a minimal client for the Traccar-style device-position
// API used by the live-tracking telemetry snapshot.
package traccar

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alerta-api/internal/domain"
)

// Device is a tracked unit as reported by the provider.
type Device struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	UniqueID string `json:"uniqueId"`
	Status   string `json:"status"` // online | offline | unknown
	Category string `json:"category"`
}

// Position is a position fix tied to a device.
type Position struct {
	ID        int64   `json:"id"`
	DeviceID  int64   `json:"deviceId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Course    float64 `json:"course"`
}

// Client fetches device and position lists with Basic auth against the
// tenant-configured server.
type Client interface {
	ListDevices(ctx context.Context, integration *domain.TraccarIntegration) ([]Device, error)
	ListPositions(ctx context.Context, integration *domain.TraccarIntegration) ([]Position, error)
}

type client struct {
	http *resty.Client
}

func NewClient() Client {
	return &client{
		http: resty.New().
			SetTimeout(15 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

func (c *client) ListDevices(ctx context.Context, integration *domain.TraccarIntegration) ([]Device, error) {
	var devices []Device
	if err := c.get(ctx, integration, "/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (c *client) ListPositions(ctx context.Context, integration *domain.TraccarIntegration) ([]Position, error) {
	var positions []Position
	if err := c.get(ctx, integration, "/api/positions", &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (c *client) get(ctx context.Context, integration *domain.TraccarIntegration, path string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(integration.Username, integration.Password).
		SetResult(out).
		Get(integration.URL + path)
	if err != nil {
		return fmt.Errorf("traccar %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("traccar %s: status %d", path, resp.StatusCode())
	}
	return nil
}
