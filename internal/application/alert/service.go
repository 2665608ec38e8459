// Package alert implements the alert lifecycle pipeline: SMS ingestion,
// creation enrichment (geocoding, jurisdiction reassignment, neighborhood
// resolution), the state machine, checkpoint trails and the detached
// side effects (fan-out, realtime events, telemetry snapshots).
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/infrastructure/geocode"
	"github.com/alerta-api/internal/pkg/cipher"
	"github.com/alerta-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldAlertStateID        = "alert_state_id"
	fieldAlertStateUpdatedAt = "alert_state_updated_at"
	fieldObservations        = "observations"
	fieldUpdatedAt           = "updated_at"
)

// Realtime event notification types.
const (
	notificationTypeNew    = "new"
	notificationTypeUpdate = "update"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateAlertRequest) (*domain.CreateAlertResult, error)
	IngestSMS(ctx context.Context, raw string) (*domain.CreateAlertResult, error)
	DecodeSMS(raw string) (*SMSPayload, error)
	ChangeState(ctx context.Context, alertID, actingUserID string, req domain.ChangeAlertStateRequest) (*domain.Alert, error)
	CreateCheckpoint(ctx context.Context, alertID string, req domain.CreateCheckpointRequest) (*domain.Checkpoint, error)
	FindOne(ctx context.Context, alertID, customerID string) (*domain.Alert, error)
	FindAll(ctx context.Context, customerIDs []string, filter domain.AlertFilter) ([]domain.Alert, error)
	FindAllCheckpoints(ctx context.Context, alertID, customerID string) ([]domain.Checkpoint, error)
	ListAlertTypes(ctx context.Context) ([]domain.AlertType, error)
	ListAlertStates(ctx context.Context, customerIDs []string) ([]domain.AlertState, error)
}

type alertStore interface {
	Put(ctx context.Context, a *domain.Alert) error
	GetForCustomer(ctx context.Context, alertID, customerID string) (*domain.Alert, error)
	Update(ctx context.Context, alertID string, updates map[string]interface{}) error
	ListByCustomers(ctx context.Context, customerIDs []string, filter domain.AlertFilter) ([]domain.Alert, error)
}

type alertTypeStore interface {
	Get(ctx context.Context, alertTypeID string) (*domain.AlertType, error)
	GetByCode(ctx context.Context, code string) (*domain.AlertType, error)
	Scan(ctx context.Context) ([]domain.AlertType, error)
}

type alertStateStore interface {
	Get(ctx context.Context, alertStateID string) (*domain.AlertState, error)
	ListVisible(ctx context.Context, customerIDs []string) ([]domain.AlertState, error)
}

type checkpointStore interface {
	Put(ctx context.Context, c *domain.Checkpoint) error
	ListByAlert(ctx context.Context, alertID string) ([]domain.Checkpoint, error)
}

type customerStore interface {
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	FindGovernmentByDistrict(ctx context.Context, district, state, country, alertTypeID string) (*domain.Customer, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*geocode.Resolved, error)
}

type publisher interface {
	Publish(channel string, payload interface{})
}

type fanoutDispatcher interface {
	Dispatch(ctx context.Context, a *domain.Alert, reporter *domain.User, customer *domain.Customer) error
}

type telemetrySnapshotter interface {
	SnapshotTraccar(ctx context.Context, alertID string, integration *domain.TraccarIntegration) error
	SnapshotFulltrack(ctx context.Context, alertID string, integration *domain.FulltrackIntegration) error
}

type taskRunner interface {
	Go(task string, fn func(ctx context.Context) error)
}

type service struct {
	alerts      alertStore
	types       alertTypeStore
	states      alertStateStore
	checkpoints checkpointStore
	customers   customerStore
	users       userStore

	geocoder  geocoder
	fanout    fanoutDispatcher
	telemetry telemetrySnapshotter
	realtime  publisher
	runner    taskRunner

	codec      *cipher.Codec
	smsKeyword string
	smsSecret  string

	issuedStateID             string
	neighborhoodIssuedStateID string
	trackingTypes             map[string]bool
	maxNeighborhoodDistanceKm float64
}

type ServiceDeps struct {
	AlertRepo      alertStore
	AlertTypeRepo  alertTypeStore
	AlertStateRepo alertStateStore
	CheckpointRepo checkpointStore
	CustomerRepo   customerStore
	UserRepo       userStore

	Geocoder  geocoder
	Fanout    fanoutDispatcher
	Telemetry telemetrySnapshotter
	Realtime  publisher
	Runner    taskRunner

	SMSKeyword string
	SMSSecret  string
	SMSPattern string

	IssuedStateID             string
	NeighborhoodIssuedStateID string
	TrackingAlertTypes        []string
	NeighborhoodMaxDistanceKm float64
}

func NewService(deps ServiceDeps) (Service, error) {
	codec, err := cipher.New(deps.SMSPattern)
	if err != nil {
		return nil, fmt.Errorf("sms cipher: %w", err)
	}
	tracking := make(map[string]bool, len(deps.TrackingAlertTypes))
	for _, code := range deps.TrackingAlertTypes {
		tracking[code] = true
	}
	return &service{
		alerts:      deps.AlertRepo,
		types:       deps.AlertTypeRepo,
		states:      deps.AlertStateRepo,
		checkpoints: deps.CheckpointRepo,
		customers:   deps.CustomerRepo,
		users:       deps.UserRepo,

		geocoder:  deps.Geocoder,
		fanout:    deps.Fanout,
		telemetry: deps.Telemetry,
		realtime:  deps.Realtime,
		runner:    deps.Runner,

		codec:      codec,
		smsKeyword: deps.SMSKeyword,
		smsSecret:  deps.SMSSecret,

		issuedStateID:             deps.IssuedStateID,
		neighborhoodIssuedStateID: deps.NeighborhoodIssuedStateID,
		trackingTypes:             tracking,
		maxNeighborhoodDistanceKm: deps.NeighborhoodMaxDistanceKm,
	}, nil
}

// Create runs the full creation pipeline. Steps up to persistence are
// strictly sequential; fan-out, realtime events and telemetry snapshots are
// detached and never affect the response.
func (s *service) Create(ctx context.Context, req domain.CreateAlertRequest) (*domain.CreateAlertResult, error) {
	customer, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil || !customer.EligibleForAlerts() {
		return nil, domain.Coded(domain.CodeCustomerNotFound, domain.ErrUnprocessable)
	}

	stateID := s.issuedStateID
	if req.NeighborhoodAlarmID != nil {
		stateID = s.neighborhoodIssuedStateID
	}

	alertType, err := s.types.Get(ctx, req.AlertTypeID)
	if err != nil {
		return nil, domain.Coded(domain.CodeAlertTypeNotFound, domain.ErrUnprocessable)
	}

	reporter, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("reporter %s: %w", req.UserID, err)
	}

	resolved := s.reverseGeocode(ctx, req.Geolocation)
	customer = s.reassignJurisdiction(ctx, customer, resolved, alertType.AlertTypeID)

	now := time.Now().UTC()
	a := &domain.Alert{
		AlertID:             id.New(),
		AlertTypeID:         alertType.AlertTypeID,
		AlertType:           alertType,
		AlertStateID:        stateID,
		AlertStateUpdatedAt: now,
		CustomerID:          customer.CustomerID,
		NeighborhoodAlarmID: req.NeighborhoodAlarmID,
		UserID:              reporter.UserID,
		Geolocation:         req.Geolocation,
		OriginalGeolocation: req.Geolocation,
		Geolocations:        req.Geolocations,
		ApproximateAddress:  req.ApproximateAddress,
		Manual:              req.Manual,
		Dragged:             req.Dragged,
		Code:                req.Code,
		Observations:        req.Observations,
		TrialPeriod:         customer.TrialPeriod,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if resolved != nil {
		a.ApproximateAddress = nonEmpty(resolved.FormattedAddress, req.ApproximateAddress)
		a.City = optional(resolved.City)
		a.District = optional(resolved.District)
		a.State = optional(resolved.State)
		a.Country = optional(resolved.Country)
	}

	if customer.Type == domain.CustomerTypeBusiness && customer.ParentID != nil {
		a.ParentID = customer.ParentID
	}

	var contactsOnly *bool
	if customer.Type == domain.CustomerTypeGovernment {
		a.NeighborhoodID = resolveNeighborhood(reporter, req.Geolocation, s.maxNeighborhoodDistanceKm)
		co := (reporter.CustomerID == customer.CustomerID && !customer.Enable) || !customer.PayingClient
		contactsOnly = &co
	}

	if err := s.alerts.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("persist alert: %w", err)
	}

	if s.trackingTypes[alertType.Code] {
		cp := &domain.Checkpoint{
			CheckpointID: id.New(),
			AlertID:      a.AlertID,
			Geolocation:  req.Geolocation,
			CreatedAt:    now,
		}
		if err := s.checkpoints.Put(ctx, cp); err != nil {
			return nil, fmt.Errorf("first checkpoint: %w", err)
		}
	}

	s.dispatchSideEffects(a, reporter, customer)

	a.User = reporter.Sanitized()
	return &domain.CreateAlertResult{Alert: a, ContactsOnly: contactsOnly}, nil
}

// dispatchSideEffects spawns the detached post-persistence steps. Each runs
// on a fresh context and reports failures to the background runner's log
// drain; none can reach the caller or roll back the alert.
func (s *service) dispatchSideEffects(a *domain.Alert, reporter *domain.User, customer *domain.Customer) {
	alertCopy := *a
	s.runner.Go("notification fan-out", func(ctx context.Context) error {
		return s.fanout.Dispatch(ctx, &alertCopy, reporter, customer)
	})

	if a.AlertType.Code != domain.AlertTypeArrivedWell {
		s.publishAlertEvent(a, reporter, notificationTypeNew)
	}

	// A jurisdiction-reassigned tenant may carry no integrations block.
	var traccarIntegration *domain.TraccarIntegration
	var fulltrackIntegration *domain.FulltrackIntegration
	if customer.Integrations != nil {
		traccarIntegration = customer.Integrations.Traccar
		fulltrackIntegration = customer.Integrations.Fulltrack
	}
	s.runner.Go("telemetry snapshot traccar", func(ctx context.Context) error {
		return s.telemetry.SnapshotTraccar(ctx, alertCopy.AlertID, traccarIntegration)
	})
	s.runner.Go("telemetry snapshot fulltrack", func(ctx context.Context) error {
		return s.telemetry.SnapshotFulltrack(ctx, alertCopy.AlertID, fulltrackIntegration)
	})
}

// ChangeState applies the state machine transition. The effective tenant is
// the actor's own tenant or one in the actor's monitored set; any other
// requested tenant is rejected as CUSTOMER_NOT_FOUND.
func (s *service) ChangeState(ctx context.Context, alertID, actingUserID string, req domain.ChangeAlertStateRequest) (*domain.Alert, error) {
	actor, err := s.users.Get(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("acting user %s: %w", actingUserID, err)
	}
	customerID := req.CustomerID
	if actor.CustomerID != customerID && !actor.Monitors(customerID) {
		return nil, domain.Coded(domain.CodeCustomerNotFound, domain.ErrUnprocessable)
	}

	state, err := s.states.Get(ctx, req.AlertStateID)
	if err != nil || !state.VisibleTo(customerID) {
		return nil, domain.Coded(domain.CodeAlertStateNotFound, domain.ErrNotFound)
	}

	a, err := s.alerts.GetForCustomer(ctx, alertID, customerID)
	if err != nil {
		return nil, domain.Coded(domain.CodeAlertNotFound, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		fieldAlertStateID:        state.AlertStateID,
		fieldAlertStateUpdatedAt: now,
		fieldUpdatedAt:           now,
	}
	if req.Observations != nil {
		updates[fieldObservations] = *req.Observations
	}
	if err := s.alerts.Update(ctx, a.AlertID, updates); err != nil {
		return nil, fmt.Errorf("update alert state: %w", err)
	}
	a.AlertStateID = state.AlertStateID
	a.AlertStateUpdatedAt = now
	a.UpdatedAt = now
	if req.Observations != nil {
		a.Observations = req.Observations
	}

	s.hydrate(ctx, a)
	if a.AlertType == nil || a.AlertType.Code != domain.AlertTypeArrivedWell {
		s.publishAlertEvent(a, a.User, notificationTypeUpdate)
	}
	return a, nil
}

// CreateCheckpoint appends a location sample to an alert's trail.
func (s *service) CreateCheckpoint(ctx context.Context, alertID string, req domain.CreateCheckpointRequest) (*domain.Checkpoint, error) {
	a, err := s.alerts.GetForCustomer(ctx, alertID, req.CustomerID)
	if err != nil {
		return nil, domain.Coded(domain.CodeAlertNotFound, domain.ErrNotFound)
	}

	cp := &domain.Checkpoint{
		CheckpointID: id.New(),
		AlertID:      a.AlertID,
		Geolocation:  req.Geolocation,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.checkpoints.Put(ctx, cp); err != nil {
		return nil, fmt.Errorf("persist checkpoint: %w", err)
	}

	s.realtime.Publish(checkpointsChannel(a.CustomerID, a.AlertID), checkpointEvent{
		AlertTypeID: a.AlertTypeID,
		CreatedAt:   cp.CreatedAt,
		Geolocation: cp.Geolocation,
	})
	return cp, nil
}

func (s *service) FindOne(ctx context.Context, alertID, customerID string) (*domain.Alert, error) {
	a, err := s.alerts.GetForCustomer(ctx, alertID, customerID)
	if err != nil {
		return nil, domain.Coded(domain.CodeAlertNotFound, domain.ErrNotFound)
	}
	s.hydrate(ctx, a)
	return a, nil
}

func (s *service) FindAll(ctx context.Context, customerIDs []string, filter domain.AlertFilter) ([]domain.Alert, error) {
	alerts, err := s.alerts.ListByCustomers(ctx, customerIDs, filter)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	types, err := s.types.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alert types: %w", err)
	}
	byID := make(map[string]*domain.AlertType, len(types))
	for i := range types {
		byID[types[i].AlertTypeID] = &types[i]
	}
	for i := range alerts {
		alerts[i].AlertType = byID[alerts[i].AlertTypeID]
	}
	return alerts, nil
}

func (s *service) FindAllCheckpoints(ctx context.Context, alertID, customerID string) ([]domain.Checkpoint, error) {
	a, err := s.alerts.GetForCustomer(ctx, alertID, customerID)
	if err != nil {
		return nil, domain.Coded(domain.CodeAlertNotFound, domain.ErrNotFound)
	}
	return s.checkpoints.ListByAlert(ctx, a.AlertID)
}

func (s *service) ListAlertTypes(ctx context.Context) ([]domain.AlertType, error) {
	return s.types.Scan(ctx)
}

func (s *service) ListAlertStates(ctx context.Context, customerIDs []string) ([]domain.AlertState, error) {
	return s.states.ListVisible(ctx, customerIDs)
}

// reverseGeocode is best-effort: missing coordinates, transport failures and
// empty geocoder responses all leave the derived location fields unset.
func (s *service) reverseGeocode(ctx context.Context, loc domain.Geolocation) *geocode.Resolved {
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return nil
	}
	resolved, err := s.geocoder.Reverse(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		slog.Warn("reverse geocode failed", "err", err)
		return nil
	}
	return resolved
}

// hydrate attaches the alert type and the sanitized reporter. Lookups are
// best-effort for read paths; missing joins leave nil embeds.
func (s *service) hydrate(ctx context.Context, a *domain.Alert) {
	if t, err := s.types.Get(ctx, a.AlertTypeID); err == nil {
		a.AlertType = t
	}
	if u, err := s.users.Get(ctx, a.UserID); err == nil {
		a.User = u.Sanitized()
	}
}

// alertEvent is the realtime payload for creation and state-change events.
type alertEvent struct {
	NotificationType string    `json:"notification_type"`
	AlertID          string    `json:"alert_id"`
	AlertTypeID      string    `json:"alert_type_id"`
	AlertTypeName    string    `json:"alert_type_name"`
	AlertStateID     string    `json:"alert_state_id"`
	CreatedAt        time.Time `json:"created_at"`
	UserID           string    `json:"user_id"`
	UserFullName     string    `json:"user_full_name"`
}

type checkpointEvent struct {
	AlertTypeID string             `json:"alert_type_id"`
	CreatedAt   time.Time          `json:"created_at"`
	Geolocation domain.Geolocation `json:"geolocation"`
}

func (s *service) publishAlertEvent(a *domain.Alert, reporter *domain.User, notificationType string) {
	ev := alertEvent{
		NotificationType: notificationType,
		AlertID:          a.AlertID,
		AlertTypeID:      a.AlertTypeID,
		AlertStateID:     a.AlertStateID,
		CreatedAt:        a.CreatedAt,
	}
	if a.AlertType != nil {
		ev.AlertTypeName = a.AlertType.Name
	}
	if reporter != nil {
		ev.UserID = reporter.UserID
		ev.UserFullName = reporter.FullName()
	}
	s.realtime.Publish(alertsChannel(a.CustomerID), ev)
	if a.ParentID != nil {
		s.realtime.Publish(alertsChannel(*a.ParentID), ev)
	}
}

func alertsChannel(customerID string) string {
	return "customers/" + customerID + "/alerts"
}

func checkpointsChannel(customerID, alertID string) string {
	return "customers/" + customerID + "/alerts/" + alertID + "/checkpoints"
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func nonEmpty(v string, fallback *string) *string {
	if v == "" {
		return fallback
	}
	return &v
}
