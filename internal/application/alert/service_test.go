package alert

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/infrastructure/geocode"
)

// --- mocks ---

type mockAlertStore struct{ mock.Mock }

func (m *mockAlertStore) Put(ctx context.Context, a *domain.Alert) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAlertStore) GetForCustomer(ctx context.Context, alertID, customerID string) (*domain.Alert, error) {
	args := m.Called(ctx, alertID, customerID)
	if a, _ := args.Get(0).(*domain.Alert); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAlertStore) Update(ctx context.Context, alertID string, updates map[string]interface{}) error {
	return m.Called(ctx, alertID, updates).Error(0)
}
func (m *mockAlertStore) ListByCustomers(ctx context.Context, customerIDs []string, filter domain.AlertFilter) ([]domain.Alert, error) {
	args := m.Called(ctx, customerIDs, filter)
	return args.Get(0).([]domain.Alert), args.Error(1)
}

type mockAlertTypeStore struct{ mock.Mock }

func (m *mockAlertTypeStore) Get(ctx context.Context, alertTypeID string) (*domain.AlertType, error) {
	args := m.Called(ctx, alertTypeID)
	if t, _ := args.Get(0).(*domain.AlertType); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAlertTypeStore) GetByCode(ctx context.Context, code string) (*domain.AlertType, error) {
	args := m.Called(ctx, code)
	if t, _ := args.Get(0).(*domain.AlertType); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAlertTypeStore) Scan(ctx context.Context) ([]domain.AlertType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AlertType), args.Error(1)
}

type mockAlertStateStore struct{ mock.Mock }

func (m *mockAlertStateStore) Get(ctx context.Context, alertStateID string) (*domain.AlertState, error) {
	args := m.Called(ctx, alertStateID)
	if s, _ := args.Get(0).(*domain.AlertState); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAlertStateStore) ListVisible(ctx context.Context, customerIDs []string) ([]domain.AlertState, error) {
	args := m.Called(ctx, customerIDs)
	return args.Get(0).([]domain.AlertState), args.Error(1)
}

type mockCheckpointStore struct{ mock.Mock }

func (m *mockCheckpointStore) Put(ctx context.Context, c *domain.Checkpoint) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCheckpointStore) ListByAlert(ctx context.Context, alertID string) ([]domain.Checkpoint, error) {
	args := m.Called(ctx, alertID)
	return args.Get(0).([]domain.Checkpoint), args.Error(1)
}

type mockCustomerStore struct{ mock.Mock }

func (m *mockCustomerStore) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCustomerStore) FindGovernmentByDistrict(ctx context.Context, district, state, country, alertTypeID string) (*domain.Customer, error) {
	args := m.Called(ctx, district, state, country, alertTypeID)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Reverse(ctx context.Context, lat, lng float64) (*geocode.Resolved, error) {
	args := m.Called(ctx, lat, lng)
	if r, _ := args.Get(0).(*geocode.Resolved); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFanout struct{ mock.Mock }

func (m *mockFanout) Dispatch(ctx context.Context, a *domain.Alert, reporter *domain.User, customer *domain.Customer) error {
	return m.Called(ctx, a, reporter, customer).Error(0)
}

type mockTelemetry struct{ mock.Mock }

func (m *mockTelemetry) SnapshotTraccar(ctx context.Context, alertID string, integration *domain.TraccarIntegration) error {
	return m.Called(ctx, alertID, integration).Error(0)
}
func (m *mockTelemetry) SnapshotFulltrack(ctx context.Context, alertID string, integration *domain.FulltrackIntegration) error {
	return m.Called(ctx, alertID, integration).Error(0)
}

// recordingPublisher captures realtime events instead of broadcasting them.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	channel string
	payload interface{}
}

func (p *recordingPublisher) Publish(channel string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{channel: channel, payload: payload})
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// syncRunner executes detached tasks inline so tests can assert on their
// effects without synchronization.
type syncRunner struct{}

func (syncRunner) Go(task string, fn func(ctx context.Context) error) {
	_ = fn(context.Background())
}

// --- helpers ---

const (
	testSMSKeyword = "c5f"
	testSMSSecret  = "s3cr3t"
	testSMSPattern = `[a-zA-Z0-9,.\-]`
)

type testDeps struct {
	alerts      *mockAlertStore
	types       *mockAlertTypeStore
	states      *mockAlertStateStore
	checkpoints *mockCheckpointStore
	customers   *mockCustomerStore
	users       *mockUserStore
	geocoder    *mockGeocoder
	fanout      *mockFanout
	telemetry   *mockTelemetry
	realtime    *recordingPublisher
}

func newTestService(t *testing.T) (Service, *testDeps) {
	t.Helper()
	d := &testDeps{
		alerts:      &mockAlertStore{},
		types:       &mockAlertTypeStore{},
		states:      &mockAlertStateStore{},
		checkpoints: &mockCheckpointStore{},
		customers:   &mockCustomerStore{},
		users:       &mockUserStore{},
		geocoder:    &mockGeocoder{},
		fanout:      &mockFanout{},
		telemetry:   &mockTelemetry{},
		realtime:    &recordingPublisher{},
	}
	svc, err := NewService(ServiceDeps{
		AlertRepo:      d.alerts,
		AlertTypeRepo:  d.types,
		AlertStateRepo: d.states,
		CheckpointRepo: d.checkpoints,
		CustomerRepo:   d.customers,
		UserRepo:       d.users,

		Geocoder:  d.geocoder,
		Fanout:    d.fanout,
		Telemetry: d.telemetry,
		Realtime:  d.realtime,
		Runner:    syncRunner{},

		SMSKeyword: testSMSKeyword,
		SMSSecret:  testSMSSecret,
		SMSPattern: testSMSPattern,

		IssuedStateID:             "st-issued",
		NeighborhoodIssuedStateID: "st-neighborhood-issued",
		TrackingAlertTypes:        []string{"panic", "escort"},
		NeighborhoodMaxDistanceKm: 2,
	})
	require.NoError(t, err)
	return svc, d
}

func businessCustomer() *domain.Customer {
	return &domain.Customer{
		CustomerID:   "biz-1",
		Type:         domain.CustomerTypeBusiness,
		District:     "Quilmes",
		State:        "Buenos Aires",
		Country:      "Argentina",
		Settings:     &domain.CustomerSettings{},
		Integrations: &domain.CustomerIntegrations{},
		PayingClient: true,
		Enable:       true,
	}
}

func governmentCustomer() *domain.Customer {
	c := businessCustomer()
	c.CustomerID = "gov-1"
	c.Type = domain.CustomerTypeGovernment
	return c
}

func fireType() *domain.AlertType {
	return &domain.AlertType{AlertTypeID: "t-fire", Code: "fire", Name: "Fire"}
}

func reporter(customerID string) *domain.User {
	return &domain.User{
		UserID:       "u1",
		Username:     "1155550001",
		FirstName:    "Ana",
		LastName:     "Diaz",
		CustomerID:   customerID,
		CustomerType: domain.CustomerTypeBusiness,
		Enable:       true,
	}
}

func baseCreateReq(customerID string) domain.CreateAlertRequest {
	return domain.CreateAlertRequest{
		CustomerID:  customerID,
		UserID:      "u1",
		AlertTypeID: "t-fire",
		Geolocation: domain.Geolocation{Latitude: -34.6, Longitude: -58.4, Timestamp: 1650000000000},
	}
}

// expectHappyPath wires the mocks every successful creation shares.
func expectHappyPath(d *testDeps, customer *domain.Customer, alertType *domain.AlertType) {
	d.customers.On("Get", mock.Anything, customer.CustomerID).Return(customer, nil)
	d.types.On("Get", mock.Anything, alertType.AlertTypeID).Return(alertType, nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter(customer.CustomerID), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(nil, nil)
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

// --- Create tests ---

func TestCreate_CustomerNotFound(t *testing.T) {
	svc, d := newTestService(t)
	d.customers.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := svc.Create(context.Background(), baseCreateReq("missing"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	assert.Equal(t, domain.CodeCustomerNotFound, domain.CodeOf(err))
}

func TestCreate_CustomerIncomplete(t *testing.T) {
	svc, d := newTestService(t)
	incomplete := businessCustomer()
	incomplete.Integrations = nil
	d.customers.On("Get", mock.Anything, "biz-1").Return(incomplete, nil)

	_, err := svc.Create(context.Background(), baseCreateReq("biz-1"))

	require.Error(t, err)
	assert.Equal(t, domain.CodeCustomerNotFound, domain.CodeOf(err))
}

func TestCreate_AlertTypeNotFound(t *testing.T) {
	svc, d := newTestService(t)
	d.customers.On("Get", mock.Anything, "biz-1").Return(businessCustomer(), nil)
	d.types.On("Get", mock.Anything, "t-fire").Return(nil, domain.ErrNotFound)

	_, err := svc.Create(context.Background(), baseCreateReq("biz-1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	assert.Equal(t, domain.CodeAlertTypeNotFound, domain.CodeOf(err))
}

func TestCreate_BusinessTenant(t *testing.T) {
	svc, d := newTestService(t)
	expectHappyPath(d, businessCustomer(), fireType())

	res, err := svc.Create(context.Background(), baseCreateReq("biz-1"))

	require.NoError(t, err)
	assert.Equal(t, "st-issued", res.Alert.AlertStateID)
	assert.Nil(t, res.ContactsOnly)
	assert.Nil(t, res.Alert.NeighborhoodID)
	assert.Nil(t, res.Alert.ParentID)
	assert.Equal(t, "", res.Alert.User.PasswordHash)
	assert.Equal(t, res.Alert.Geolocation, res.Alert.OriginalGeolocation)
	d.fanout.AssertExpectations(t)
	d.checkpoints.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_BusinessTenant_LinksParent(t *testing.T) {
	svc, d := newTestService(t)
	parentID := "gov-9"
	customer := businessCustomer()
	customer.ParentID = &parentID
	expectHappyPath(d, customer, fireType())

	res, err := svc.Create(context.Background(), baseCreateReq("biz-1"))

	require.NoError(t, err)
	require.NotNil(t, res.Alert.ParentID)
	assert.Equal(t, "gov-9", *res.Alert.ParentID)
}

func TestCreate_NeighborhoodAlarmOrigin(t *testing.T) {
	svc, d := newTestService(t)
	expectHappyPath(d, businessCustomer(), fireType())

	alarmID := "na-1"
	req := baseCreateReq("biz-1")
	req.NeighborhoodAlarmID = &alarmID
	res, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "st-neighborhood-issued", res.Alert.AlertStateID)
}

func TestCreate_TrackingType_FirstCheckpoint(t *testing.T) {
	svc, d := newTestService(t)
	panicType := &domain.AlertType{AlertTypeID: "t-panic", Code: "panic", Name: "Panic"}
	customer := businessCustomer()
	d.customers.On("Get", mock.Anything, "biz-1").Return(customer, nil)
	d.types.On("Get", mock.Anything, "t-panic").Return(panicType, nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("biz-1"), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(nil, nil)
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var captured *domain.Checkpoint
	d.checkpoints.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*domain.Checkpoint)
	}).Return(nil).Once()

	req := baseCreateReq("biz-1")
	req.AlertTypeID = "t-panic"
	res, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, res.Alert.AlertID, captured.AlertID)
	assert.Equal(t, res.Alert.Geolocation, captured.Geolocation)
	d.checkpoints.AssertNumberOfCalls(t, "Put", 1)
}

func TestCreate_ArrivedWell_NoRealtimeEvent(t *testing.T) {
	svc, d := newTestService(t)
	arrived := &domain.AlertType{AlertTypeID: "t-aw", Code: domain.AlertTypeArrivedWell, Name: "Arrived well"}
	d.customers.On("Get", mock.Anything, "biz-1").Return(businessCustomer(), nil)
	d.types.On("Get", mock.Anything, "t-aw").Return(arrived, nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("biz-1"), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(nil, nil)
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := baseCreateReq("biz-1")
	req.AlertTypeID = "t-aw"
	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Empty(t, d.realtime.all())
}

func TestCreate_RealtimeEventForOtherTypes(t *testing.T) {
	svc, d := newTestService(t)
	expectHappyPath(d, businessCustomer(), fireType())

	res, err := svc.Create(context.Background(), baseCreateReq("biz-1"))

	require.NoError(t, err)
	events := d.realtime.all()
	require.Len(t, events, 1)
	assert.Equal(t, "customers/biz-1/alerts", events[0].channel)
	ev := events[0].payload.(alertEvent)
	assert.Equal(t, notificationTypeNew, ev.NotificationType)
	assert.Equal(t, res.Alert.AlertID, ev.AlertID)
	assert.Equal(t, "Fire", ev.AlertTypeName)
	assert.Equal(t, "Ana Diaz", ev.UserFullName)
}

func TestCreate_GeocodeFailureDoesNotBlock(t *testing.T) {
	svc, d := newTestService(t)
	customer := businessCustomer()
	d.customers.On("Get", mock.Anything, "biz-1").Return(customer, nil)
	d.types.On("Get", mock.Anything, "t-fire").Return(fireType(), nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("biz-1"), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(nil, errors.New("geocoder down"))
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), baseCreateReq("biz-1"))

	require.NoError(t, err)
	assert.Nil(t, res.Alert.City)
	assert.Nil(t, res.Alert.District)
}

func TestCreate_JurisdictionReassignment(t *testing.T) {
	svc, d := newTestService(t)
	origin := governmentCustomer()
	alt := governmentCustomer()
	alt.CustomerID = "gov-2"
	alt.District = "Avellaneda"

	d.customers.On("Get", mock.Anything, "gov-1").Return(origin, nil)
	d.types.On("Get", mock.Anything, "t-fire").Return(fireType(), nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("gov-1"), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(&geocode.Resolved{
		City:     "Avellaneda",
		District: "Avellaneda",
		State:    "Buenos Aires",
		Country:  "Argentina",
	}, nil)
	d.customers.On("FindGovernmentByDistrict", mock.Anything, "Avellaneda", "Buenos Aires", "Argentina", "t-fire").
		Return(alt, nil)
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), baseCreateReq("gov-1"))

	require.NoError(t, err)
	assert.Equal(t, "gov-2", res.Alert.CustomerID)
	require.NotNil(t, res.Alert.District)
	assert.Equal(t, "Avellaneda", *res.Alert.District)
}

func TestCreate_JurisdictionMissKeepsOrigin(t *testing.T) {
	svc, d := newTestService(t)
	origin := governmentCustomer()

	d.customers.On("Get", mock.Anything, "gov-1").Return(origin, nil)
	d.types.On("Get", mock.Anything, "t-fire").Return(fireType(), nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("gov-1"), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(&geocode.Resolved{
		District: "Avellaneda",
		State:    "Buenos Aires",
		Country:  "Argentina",
	}, nil)
	d.customers.On("FindGovernmentByDistrict", mock.Anything, "Avellaneda", "Buenos Aires", "Argentina", "t-fire").
		Return(nil, domain.ErrNotFound)
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), baseCreateReq("gov-1"))

	require.NoError(t, err)
	assert.Equal(t, "gov-1", res.Alert.CustomerID)
}

func TestCreate_GovernmentTenant_ContactsOnly(t *testing.T) {
	svc, d := newTestService(t)
	customer := governmentCustomer()
	customer.PayingClient = false
	d.customers.On("Get", mock.Anything, "gov-1").Return(customer, nil)
	d.types.On("Get", mock.Anything, "t-fire").Return(fireType(), nil)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("gov-1"), nil)
	d.geocoder.On("Reverse", mock.Anything, -34.6, -58.4).Return(nil, nil)
	d.alerts.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.fanout.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotTraccar", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.telemetry.On("SnapshotFulltrack", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Create(context.Background(), baseCreateReq("gov-1"))

	require.NoError(t, err)
	require.NotNil(t, res.ContactsOnly)
	assert.True(t, *res.ContactsOnly)
}

// --- ChangeState tests ---

func changeStateReq(customerID string) domain.ChangeAlertStateRequest {
	return domain.ChangeAlertStateRequest{AlertStateID: "st-closed", CustomerID: customerID}
}

func TestChangeState_ScopeDenied(t *testing.T) {
	svc, d := newTestService(t)
	actor := reporter("cust-a")
	actor.MonitoredCustomerIDs = []string{"cust-b"}
	d.users.On("Get", mock.Anything, "u1").Return(actor, nil)

	_, err := svc.ChangeState(context.Background(), "a1", "u1", changeStateReq("cust-c"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnprocessable))
	assert.Equal(t, domain.CodeCustomerNotFound, domain.CodeOf(err))
	d.states.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestChangeState_MonitoredTenantAllowed(t *testing.T) {
	svc, d := newTestService(t)
	actor := reporter("cust-a")
	actor.MonitoredCustomerIDs = []string{"cust-b"}
	d.users.On("Get", mock.Anything, "u1").Return(actor, nil)
	d.states.On("Get", mock.Anything, "st-closed").Return(&domain.AlertState{AlertStateID: "st-closed", Name: "Closed"}, nil)
	existing := &domain.Alert{AlertID: "a1", AlertTypeID: "t-fire", AlertStateID: "st-issued", CustomerID: "cust-b", UserID: "u2"}
	d.alerts.On("GetForCustomer", mock.Anything, "a1", "cust-b").Return(existing, nil)
	d.alerts.On("Update", mock.Anything, "a1", mock.Anything).Return(nil)
	d.types.On("Get", mock.Anything, "t-fire").Return(fireType(), nil)
	d.users.On("Get", mock.Anything, "u2").Return(reporter("cust-b"), nil)

	a, err := svc.ChangeState(context.Background(), "a1", "u1", changeStateReq("cust-b"))

	require.NoError(t, err)
	assert.Equal(t, "st-closed", a.AlertStateID)
	assert.False(t, a.AlertStateUpdatedAt.IsZero())

	events := d.realtime.all()
	require.Len(t, events, 1)
	assert.Equal(t, "customers/cust-b/alerts", events[0].channel)
	assert.Equal(t, notificationTypeUpdate, events[0].payload.(alertEvent).NotificationType)
}

func TestChangeState_StateNotVisible(t *testing.T) {
	svc, d := newTestService(t)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("cust-a"), nil)
	otherTenant := "cust-z"
	d.states.On("Get", mock.Anything, "st-closed").Return(&domain.AlertState{AlertStateID: "st-closed", CustomerID: &otherTenant}, nil)

	_, err := svc.ChangeState(context.Background(), "a1", "u1", changeStateReq("cust-a"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, domain.CodeAlertStateNotFound, domain.CodeOf(err))
}

func TestChangeState_AlertNotFound(t *testing.T) {
	svc, d := newTestService(t)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("cust-a"), nil)
	d.states.On("Get", mock.Anything, "st-closed").Return(&domain.AlertState{AlertStateID: "st-closed"}, nil)
	d.alerts.On("GetForCustomer", mock.Anything, "a1", "cust-a").Return(nil, domain.ErrNotFound)

	_, err := svc.ChangeState(context.Background(), "a1", "u1", changeStateReq("cust-a"))

	require.Error(t, err)
	assert.Equal(t, domain.CodeAlertNotFound, domain.CodeOf(err))
}

func TestChangeState_ArrivedWell_NoRealtimeEvent(t *testing.T) {
	svc, d := newTestService(t)
	d.users.On("Get", mock.Anything, "u1").Return(reporter("cust-a"), nil)
	d.states.On("Get", mock.Anything, "st-closed").Return(&domain.AlertState{AlertStateID: "st-closed"}, nil)
	existing := &domain.Alert{AlertID: "a1", AlertTypeID: "t-aw", AlertStateID: "st-issued", CustomerID: "cust-a", UserID: "u2"}
	d.alerts.On("GetForCustomer", mock.Anything, "a1", "cust-a").Return(existing, nil)
	d.alerts.On("Update", mock.Anything, "a1", mock.Anything).Return(nil)
	d.types.On("Get", mock.Anything, "t-aw").
		Return(&domain.AlertType{AlertTypeID: "t-aw", Code: domain.AlertTypeArrivedWell}, nil)
	d.users.On("Get", mock.Anything, "u2").Return(reporter("cust-a"), nil)

	_, err := svc.ChangeState(context.Background(), "a1", "u1", changeStateReq("cust-a"))

	require.NoError(t, err)
	assert.Empty(t, d.realtime.all())
}

// --- CreateCheckpoint tests ---

func TestCreateCheckpoint_AlertNotFound(t *testing.T) {
	svc, d := newTestService(t)
	d.alerts.On("GetForCustomer", mock.Anything, "a1", "cust-a").Return(nil, domain.ErrNotFound)

	_, err := svc.CreateCheckpoint(context.Background(), "a1", domain.CreateCheckpointRequest{
		CustomerID:  "cust-a",
		Geolocation: domain.Geolocation{Latitude: -34.6, Longitude: -58.4},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, domain.CodeAlertNotFound, domain.CodeOf(err))
}

func TestCreateCheckpoint_PersistsAndPublishes(t *testing.T) {
	svc, d := newTestService(t)
	existing := &domain.Alert{AlertID: "a1", AlertTypeID: "t-panic", CustomerID: "cust-a"}
	d.alerts.On("GetForCustomer", mock.Anything, "a1", "cust-a").Return(existing, nil)
	d.checkpoints.On("Put", mock.Anything, mock.Anything).Return(nil)

	loc := domain.Geolocation{Latitude: -34.61, Longitude: -58.41}
	cp, err := svc.CreateCheckpoint(context.Background(), "a1", domain.CreateCheckpointRequest{
		CustomerID:  "cust-a",
		Geolocation: loc,
	})

	require.NoError(t, err)
	assert.Equal(t, "a1", cp.AlertID)
	assert.Equal(t, loc, cp.Geolocation)

	events := d.realtime.all()
	require.Len(t, events, 1)
	assert.Equal(t, "customers/cust-a/alerts/a1/checkpoints", events[0].channel)
	assert.Equal(t, loc, events[0].payload.(checkpointEvent).Geolocation)
}

// --- read path tests ---

func TestFindOne_NotFound(t *testing.T) {
	svc, d := newTestService(t)
	d.alerts.On("GetForCustomer", mock.Anything, "a1", "cust-a").Return(nil, domain.ErrNotFound)

	_, err := svc.FindOne(context.Background(), "a1", "cust-a")

	require.Error(t, err)
	assert.Equal(t, domain.CodeAlertNotFound, domain.CodeOf(err))
}

func TestFindAll_JoinsTypes(t *testing.T) {
	svc, d := newTestService(t)
	d.alerts.On("ListByCustomers", mock.Anything, []string{"cust-a"}, domain.AlertFilter{}).
		Return([]domain.Alert{{AlertID: "a1", AlertTypeID: "t-fire"}}, nil)
	d.types.On("Scan", mock.Anything).Return([]domain.AlertType{*fireType()}, nil)

	alerts, err := svc.FindAll(context.Background(), []string{"cust-a"}, domain.AlertFilter{})

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.NotNil(t, alerts[0].AlertType)
	assert.Equal(t, "Fire", alerts[0].AlertType.Name)
}
