// Package telemetry captures best-effort snapshots of third-party device and
// vehicle positions at alert time. Each provider is skipped silently when the
// tenant's integration credentials are not fully configured.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/infrastructure/fulltrack"
	"github.com/alerta-api/internal/infrastructure/traccar"
	"github.com/alerta-api/internal/pkg/id"
)

const deviceStatusOnline = "online"

type Service interface {
	SnapshotTraccar(ctx context.Context, alertID string, integration *domain.TraccarIntegration) error
	SnapshotFulltrack(ctx context.Context, alertID string, integration *domain.FulltrackIntegration) error
}

type snapshotStore interface {
	Put(ctx context.Context, s *domain.DeviceSnapshot) error
}

type service struct {
	snapshots snapshotStore
	traccar   traccar.Client
	fulltrack fulltrack.Client

	// categories maps a lowercase token found in a vehicle description to a
	// coarse category. Injected at startup; unmatched descriptions fall back
	// to "default".
	categories map[string]string
}

type ServiceDeps struct {
	SnapshotRepo    snapshotStore
	TraccarClient   traccar.Client
	FulltrackClient fulltrack.Client
	Categories      map[string]string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		snapshots:  deps.SnapshotRepo,
		traccar:    deps.TraccarClient,
		fulltrack:  deps.FulltrackClient,
		categories: deps.Categories,
	}
}

// SnapshotTraccar persists one snapshot per online device, joined with its
// first matching position.
func (s *service) SnapshotTraccar(ctx context.Context, alertID string, integration *domain.TraccarIntegration) error {
	if !integration.Configured() {
		return nil
	}
	devices, err := s.traccar.ListDevices(ctx, integration)
	if err != nil {
		return fmt.Errorf("traccar devices: %w", err)
	}
	positions, err := s.traccar.ListPositions(ctx, integration)
	if err != nil {
		return fmt.Errorf("traccar positions: %w", err)
	}

	now := time.Now().UTC()
	for _, d := range devices {
		if d.Status != deviceStatusOnline {
			continue
		}
		snap := &domain.DeviceSnapshot{
			SnapshotID: id.New(),
			AlertID:    alertID,
			Provider:   domain.SnapshotProviderTraccar,
			DeviceID:   strconv.FormatInt(d.ID, 10),
			Name:       d.Name,
			Category:   d.Category,
			Attributes: map[string]string{
				"unique_id": d.UniqueID,
				"status":    d.Status,
			},
			CreatedAt: now,
		}
		for _, p := range positions {
			if p.DeviceID == d.ID {
				snap.Latitude = p.Latitude
				snap.Longitude = p.Longitude
				snap.Speed = p.Speed
				snap.Course = p.Course
				break
			}
		}
		if err := s.snapshots.Put(ctx, snap); err != nil {
			return fmt.Errorf("persist traccar snapshot: %w", err)
		}
	}
	return nil
}

// SnapshotFulltrack persists one snapshot per current-data record, joined
// against the vehicle catalog for naming and categorization.
func (s *service) SnapshotFulltrack(ctx context.Context, alertID string, integration *domain.FulltrackIntegration) error {
	if !integration.Configured() {
		return nil
	}
	vehicles, err := s.fulltrack.ListVehicles(ctx, integration)
	if err != nil {
		return fmt.Errorf("fulltrack vehicles: %w", err)
	}
	records, err := s.fulltrack.CurrentData(ctx, integration)
	if err != nil {
		return fmt.Errorf("fulltrack current data: %w", err)
	}

	byID := make(map[string]fulltrack.Vehicle, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}

	now := time.Now().UTC()
	for _, rec := range records {
		snap := &domain.DeviceSnapshot{
			SnapshotID: id.New(),
			AlertID:    alertID,
			Provider:   domain.SnapshotProviderFulltrack,
			DeviceID:   rec.VehicleID,
			Category:   "default",
			Latitude:   rec.Latitude,
			Longitude:  rec.Longitude,
			Speed:      rec.Speed,
			Course:     rec.Course,
			CreatedAt:  now,
		}
		if v, ok := byID[rec.VehicleID]; ok {
			snap.Name = v.Description
			snap.Category = s.categoryFor(v.Description)
			snap.Attributes = map[string]string{"plate": v.Plate}
		}
		if err := s.snapshots.Put(ctx, snap); err != nil {
			return fmt.Errorf("persist fulltrack snapshot: %w", err)
		}
	}
	return nil
}

func (s *service) categoryFor(description string) string {
	desc := strings.ToLower(description)
	for token, category := range s.categories {
		if strings.Contains(desc, token) {
			return category
		}
	}
	return "default"
}

// DefaultCategories is the stock description-token to category mapping for
// the vehicle-telemetry provider. Descriptions are Spanish free text.
func DefaultCategories() map[string]string {
	return map[string]string{
		"auto":       "car",
		"camion":     "truck",
		"camión":     "truck",
		"colectivo":  "bus",
		"moto":       "motorcycle",
		"ambulancia": "ambulance",
		"patrulla":   "police",
	}
}
