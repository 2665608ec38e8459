// Package fulltrack is a client for the vehicle-telemetry vendor API. The
// vendor exposes a single endpoint driven by an action query parameter.
package fulltrack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alerta-api/internal/domain"
)

// Vendor action parameters.
const (
	actionVehicles    = "GETVEHICULOS"
	actionCurrentData = "DATOSACTUALES"
)

// Vehicle is a catalog entry: id plus a free-text description that the
// telemetry service maps to a coarse category.
type Vehicle struct {
	ID          string `json:"IdVehiculo"`
	Plate       string `json:"Patente"`
	Description string `json:"Descripcion"`
}

// Telemetry is one current-data record.
type Telemetry struct {
	VehicleID string  `json:"IdVehiculo"`
	Latitude  float64 `json:"Latitud"`
	Longitude float64 `json:"Longitud"`
	Speed     float64 `json:"Velocidad"`
	Course    float64 `json:"Rumbo"`
}

// Client fetches the vehicle catalog and the current-data feed.
type Client interface {
	ListVehicles(ctx context.Context, integration *domain.FulltrackIntegration) ([]Vehicle, error)
	CurrentData(ctx context.Context, integration *domain.FulltrackIntegration) ([]Telemetry, error)
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

func (c *client) ListVehicles(ctx context.Context, integration *domain.FulltrackIntegration) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := c.call(ctx, integration, actionVehicles, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *client) CurrentData(ctx context.Context, integration *domain.FulltrackIntegration) ([]Telemetry, error) {
	var records []Telemetry
	if err := c.call(ctx, integration, actionCurrentData, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *client) call(ctx context.Context, integration *domain.FulltrackIntegration, action string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"usuario": integration.User,
			"clave":   integration.Password,
			"accion":  action,
		}).
		SetResult(out).
		Get(integration.URL)
	if err != nil {
		return fmt.Errorf("fulltrack %s: %w", action, err)
	}
	if resp.IsError() {
		return fmt.Errorf("fulltrack %s: status %d", action, resp.StatusCode())
	}
	return nil
}
