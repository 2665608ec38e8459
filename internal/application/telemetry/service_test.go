package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/infrastructure/fulltrack"
	"github.com/alerta-api/internal/infrastructure/traccar"
)

// --- mocks ---

type mockSnapshotStore struct{ mock.Mock }

func (m *mockSnapshotStore) Put(ctx context.Context, s *domain.DeviceSnapshot) error {
	return m.Called(ctx, s).Error(0)
}

type mockTraccarClient struct{ mock.Mock }

func (m *mockTraccarClient) ListDevices(ctx context.Context, integration *domain.TraccarIntegration) ([]traccar.Device, error) {
	args := m.Called(ctx, integration)
	return args.Get(0).([]traccar.Device), args.Error(1)
}
func (m *mockTraccarClient) ListPositions(ctx context.Context, integration *domain.TraccarIntegration) ([]traccar.Position, error) {
	args := m.Called(ctx, integration)
	return args.Get(0).([]traccar.Position), args.Error(1)
}

type mockFulltrackClient struct{ mock.Mock }

func (m *mockFulltrackClient) ListVehicles(ctx context.Context, integration *domain.FulltrackIntegration) ([]fulltrack.Vehicle, error) {
	args := m.Called(ctx, integration)
	return args.Get(0).([]fulltrack.Vehicle), args.Error(1)
}
func (m *mockFulltrackClient) CurrentData(ctx context.Context, integration *domain.FulltrackIntegration) ([]fulltrack.Telemetry, error) {
	args := m.Called(ctx, integration)
	return args.Get(0).([]fulltrack.Telemetry), args.Error(1)
}

// --- helpers ---

func newTestService() (Service, *mockSnapshotStore, *mockTraccarClient, *mockFulltrackClient) {
	snapshots := &mockSnapshotStore{}
	tc := &mockTraccarClient{}
	fc := &mockFulltrackClient{}
	svc := NewService(ServiceDeps{
		SnapshotRepo:    snapshots,
		TraccarClient:   tc,
		FulltrackClient: fc,
		Categories:      DefaultCategories(),
	})
	return svc, snapshots, tc, fc
}

func traccarIntegration() *domain.TraccarIntegration {
	return &domain.TraccarIntegration{URL: "https://traccar.test", Username: "ops", Password: "secret"}
}

func fulltrackIntegration() *domain.FulltrackIntegration {
	return &domain.FulltrackIntegration{URL: "https://fulltrack.test", User: "ops", Password: "secret"}
}

// --- traccar tests ---

func TestSnapshotTraccar_NotConfigured(t *testing.T) {
	svc, snapshots, tc, _ := newTestService()

	require.NoError(t, svc.SnapshotTraccar(context.Background(), "a1", nil))
	require.NoError(t, svc.SnapshotTraccar(context.Background(), "a1", &domain.TraccarIntegration{URL: "https://traccar.test"}))

	tc.AssertNotCalled(t, "ListDevices", mock.Anything, mock.Anything)
	snapshots.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSnapshotTraccar_OnlineDevicesJoined(t *testing.T) {
	svc, snapshots, tc, _ := newTestService()
	tc.On("ListDevices", mock.Anything, mock.Anything).Return([]traccar.Device{
		{ID: 1, Name: "Patrol 1", Status: "online", Category: "car"},
		{ID: 2, Name: "Patrol 2", Status: "offline", Category: "car"},
	}, nil)
	tc.On("ListPositions", mock.Anything, mock.Anything).Return([]traccar.Position{
		{DeviceID: 1, Latitude: -34.6, Longitude: -58.4, Speed: 12.5, Course: 90},
	}, nil)

	var captured []*domain.DeviceSnapshot
	snapshots.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = append(captured, args.Get(1).(*domain.DeviceSnapshot))
	}).Return(nil)

	err := svc.SnapshotTraccar(context.Background(), "a1", traccarIntegration())

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, domain.SnapshotProviderTraccar, captured[0].Provider)
	assert.Equal(t, "1", captured[0].DeviceID)
	assert.Equal(t, -34.6, captured[0].Latitude)
	assert.Equal(t, 12.5, captured[0].Speed)
}

func TestSnapshotTraccar_ProviderError(t *testing.T) {
	svc, _, tc, _ := newTestService()
	tc.On("ListDevices", mock.Anything, mock.Anything).Return([]traccar.Device{}, errors.New("timeout"))

	err := svc.SnapshotTraccar(context.Background(), "a1", traccarIntegration())

	require.Error(t, err)
}

// --- fulltrack tests ---

func TestSnapshotFulltrack_NotConfigured(t *testing.T) {
	svc, snapshots, _, fc := newTestService()

	require.NoError(t, svc.SnapshotFulltrack(context.Background(), "a1", nil))

	fc.AssertNotCalled(t, "ListVehicles", mock.Anything, mock.Anything)
	snapshots.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSnapshotFulltrack_CategoryMapping(t *testing.T) {
	svc, snapshots, _, fc := newTestService()
	fc.On("ListVehicles", mock.Anything, mock.Anything).Return([]fulltrack.Vehicle{
		{ID: "v1", Plate: "AB123CD", Description: "Camion cisterna"},
		{ID: "v2", Plate: "EF456GH", Description: "Unidad especial"},
	}, nil)
	fc.On("CurrentData", mock.Anything, mock.Anything).Return([]fulltrack.Telemetry{
		{VehicleID: "v1", Latitude: -34.7, Longitude: -58.3, Speed: 40},
		{VehicleID: "v2", Latitude: -34.8, Longitude: -58.2, Speed: 0},
	}, nil)

	var captured []*domain.DeviceSnapshot
	snapshots.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = append(captured, args.Get(1).(*domain.DeviceSnapshot))
	}).Return(nil)

	err := svc.SnapshotFulltrack(context.Background(), "a1", fulltrackIntegration())

	require.NoError(t, err)
	require.Len(t, captured, 2)
	assert.Equal(t, "truck", captured[0].Category)
	assert.Equal(t, "default", captured[1].Category)
	assert.Equal(t, domain.SnapshotProviderFulltrack, captured[0].Provider)
	assert.Equal(t, "AB123CD", captured[0].Attributes["plate"])
}

func TestSnapshotFulltrack_UnknownVehicleStillPersisted(t *testing.T) {
	svc, snapshots, _, fc := newTestService()
	fc.On("ListVehicles", mock.Anything, mock.Anything).Return([]fulltrack.Vehicle{}, nil)
	fc.On("CurrentData", mock.Anything, mock.Anything).Return([]fulltrack.Telemetry{
		{VehicleID: "ghost", Latitude: -34.7, Longitude: -58.3},
	}, nil)

	var captured *domain.DeviceSnapshot
	snapshots.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*domain.DeviceSnapshot)
	}).Return(nil)

	err := svc.SnapshotFulltrack(context.Background(), "a1", fulltrackIntegration())

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "ghost", captured.DeviceID)
	assert.Equal(t, "default", captured.Category)
}
