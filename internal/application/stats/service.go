// Package stats aggregates alert counts into percentage breakdowns by type,
// state, city and neighborhood for a tenant scope.
package stats

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/alerta-api/internal/domain"
)

// OtherBucket collects rows that match no registry entry. City and
// neighborhood breakdowns fold unmatched rows into a single bucket under
// this label.
const OtherBucket = "Otras"

// Row is one breakdown entry: the grouped value, how many alerts matched and
// its share of the total.
type Row struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Result carries the four breakdowns plus the total alert count for the
// requested scope and filter.
type Result struct {
	Total          int   `json:"total"`
	ByType         []Row `json:"by_type"`
	ByState        []Row `json:"by_state"`
	ByCity         []Row `json:"by_city"`
	ByNeighborhood []Row `json:"by_neighborhood"`
}

type Service interface {
	GetStatistics(ctx context.Context, actingUserID string, filter domain.AlertFilter) (*Result, error)
}

type alertStore interface {
	CountGrouped(ctx context.Context, customerIDs []string, filter domain.AlertFilter, key func(*domain.Alert) string) (map[string]int, error)
}

type alertTypeStore interface {
	Scan(ctx context.Context) ([]domain.AlertType, error)
}

type alertStateStore interface {
	ListVisible(ctx context.Context, customerIDs []string) ([]domain.AlertState, error)
}

type locationStore interface {
	ListByType(ctx context.Context, locationType string) ([]domain.Location, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	alerts    alertStore
	types     alertTypeStore
	states    alertStateStore
	locations locationStore
	users     userStore
}

type ServiceDeps struct {
	AlertRepo      alertStore
	AlertTypeRepo  alertTypeStore
	AlertStateRepo alertStateStore
	LocationRepo   locationStore
	UserRepo       userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		alerts:    deps.AlertRepo,
		types:     deps.AlertTypeRepo,
		states:    deps.AlertStateRepo,
		locations: deps.LocationRepo,
		users:     deps.UserRepo,
	}
}

// GetStatistics expands the acting user into their visible tenant scope and
// runs the four aggregations concurrently. The first failure rejects the
// whole call.
func (s *service) GetStatistics(ctx context.Context, actingUserID string, filter domain.AlertFilter) (*Result, error) {
	actor, err := s.users.Get(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("acting user %s: %w", actingUserID, err)
	}
	scope := append([]string{actor.CustomerID}, actor.MonitoredCustomerIDs...)

	res := &Result{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, total, err := s.byType(gctx, scope, filter)
		if err != nil {
			return err
		}
		res.ByType = rows
		res.Total = total
		return nil
	})
	g.Go(func() error {
		rows, err := s.byState(gctx, scope, filter)
		res.ByState = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.byCity(gctx, scope, filter)
		res.ByCity = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.byNeighborhood(gctx, scope, filter)
		res.ByNeighborhood = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) byType(ctx context.Context, scope []string, filter domain.AlertFilter) ([]Row, int, error) {
	counts, err := s.alerts.CountGrouped(ctx, scope, filter, func(a *domain.Alert) string {
		return a.AlertTypeID
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count by type: %w", err)
	}
	types, err := s.types.Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list alert types: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	rows := make([]Row, 0, len(counts))
	for _, t := range types {
		count, ok := counts[t.AlertTypeID]
		if !ok {
			continue
		}
		rows = append(rows, Row{ID: t.AlertTypeID, Name: t.Name, Count: count, Percentage: percentage(count, total)})
	}
	return rows, total, nil
}

func (s *service) byState(ctx context.Context, scope []string, filter domain.AlertFilter) ([]Row, error) {
	counts, err := s.alerts.CountGrouped(ctx, scope, filter, func(a *domain.Alert) string {
		return a.AlertStateID
	})
	if err != nil {
		return nil, fmt.Errorf("count by state: %w", err)
	}
	states, err := s.states.ListVisible(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list alert states: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	rows := make([]Row, 0, len(counts))
	for _, st := range states {
		count, ok := counts[st.AlertStateID]
		if !ok {
			continue
		}
		rows = append(rows, Row{ID: st.AlertStateID, Name: st.Name, Count: count, Percentage: percentage(count, total)})
	}
	return rows, nil
}

func (s *service) byCity(ctx context.Context, scope []string, filter domain.AlertFilter) ([]Row, error) {
	counts, err := s.alerts.CountGrouped(ctx, scope, filter, func(a *domain.Alert) string {
		if a.City == nil {
			return ""
		}
		return *a.City
	})
	if err != nil {
		return nil, fmt.Errorf("count by city: %w", err)
	}
	localities, err := s.locations.ListByType(ctx, domain.LocationTypeLocality)
	if err != nil {
		return nil, fmt.Errorf("list localities: %w", err)
	}
	known := make(map[string]bool, len(localities))
	for _, l := range localities {
		known[l.Name] = true
	}
	return bucketRows(counts, func(city string) (string, bool) {
		return city, known[city]
	}), nil
}

func (s *service) byNeighborhood(ctx context.Context, scope []string, filter domain.AlertFilter) ([]Row, error) {
	counts, err := s.alerts.CountGrouped(ctx, scope, filter, func(a *domain.Alert) string {
		if a.NeighborhoodID == nil {
			return ""
		}
		return *a.NeighborhoodID
	})
	if err != nil {
		return nil, fmt.Errorf("count by neighborhood: %w", err)
	}
	neighborhoods, err := s.locations.ListByType(ctx, domain.LocationTypeNeighborhood)
	if err != nil {
		return nil, fmt.Errorf("list neighborhoods: %w", err)
	}
	names := make(map[string]string, len(neighborhoods))
	for _, n := range neighborhoods {
		names[n.LocationID] = n.Name
	}
	return bucketRows(counts, func(neighborhoodID string) (string, bool) {
		name, ok := names[neighborhoodID]
		return name, ok
	}), nil
}

// bucketRows turns raw grouped counts into rows, folding every key that
// resolve rejects into the single "Otras" row.
func bucketRows(counts map[string]int, resolve func(key string) (name string, known bool)) []Row {
	total := 0
	for _, c := range counts {
		total += c
	}

	rows := make([]Row, 0, len(counts))
	other := 0
	for key, count := range counts {
		name, known := resolve(key)
		if key == "" || !known {
			other += count
			continue
		}
		rows = append(rows, Row{ID: key, Name: name, Count: count, Percentage: percentage(count, total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	if other > 0 {
		rows = append(rows, Row{Name: OtherBucket, Count: other, Percentage: percentage(other, total)})
	}
	return rows
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}
