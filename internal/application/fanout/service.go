// Package fanout computes the recipient set for an alert and dispatches the
// in-app notification record and the push transport send. It always runs
// detached from alert creation; failures are logged by the caller and never
// reach the reporter.
package fanout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alerta-api/internal/domain"
	snsinfra "github.com/alerta-api/internal/infrastructure/sns"
	"github.com/alerta-api/internal/pkg/id"
)

type Service interface {
	Dispatch(ctx context.Context, a *domain.Alert, reporter *domain.User, customer *domain.Customer) error
}

type contactStore interface {
	ListByOwner(ctx context.Context, userID, customerID string) ([]domain.Contact, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	ListActiveByUsernames(ctx context.Context, usernames []string, customerType string) ([]domain.User, error)
}

type deviceStore interface {
	TokensForUsers(ctx context.Context, userIDs []string) ([]string, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type imageStore interface {
	ObjectURL(key string) string
}

type service struct {
	contacts      contactStore
	users         userStore
	devices       deviceStore
	notifications notificationStore
	pusher        snsinfra.Pusher
	images        imageStore

	// numbersByType maps an alert type code to the settings list holding its
	// dedicated staff numbers. Injected at startup so deployments can extend
	// it without code changes.
	numbersByType map[string]domain.NumbersField
}

type ServiceDeps struct {
	ContactRepo      contactStore
	UserRepo         userStore
	DeviceRepo       deviceStore
	NotificationRepo notificationStore
	Pusher           snsinfra.Pusher
	Images           imageStore
	NumbersByType    map[string]domain.NumbersField
}

func NewService(deps ServiceDeps) Service {
	return &service{
		contacts:      deps.ContactRepo,
		users:         deps.UserRepo,
		devices:       deps.DeviceRepo,
		notifications: deps.NotificationRepo,
		pusher:        deps.Pusher,
		images:        deps.Images,
		numbersByType: deps.NumbersByType,
	}
}

// Dispatch builds the recipient set and, if anyone qualifies, persists one
// notification record and pushes to every recipient with a registered token.
// The sentinel "arrived-well" type never fans out.
func (s *service) Dispatch(ctx context.Context, a *domain.Alert, reporter *domain.User, customer *domain.Customer) error {
	if a.AlertType == nil {
		return fmt.Errorf("alert %s missing alert type", a.AlertID)
	}
	if a.AlertType.Code == domain.AlertTypeArrivedWell {
		return nil
	}

	recipients, err := s.recipients(ctx, a, reporter, customer)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	title := a.AlertType.Name
	description := fmt.Sprintf("%s reported by %s", a.AlertType.Name, reporter.FullName())
	var image *string
	if reporter.ImageKey != nil {
		url := s.images.ObjectURL(*reporter.ImageKey)
		image = &url
	}

	n := &domain.Notification{
		NotificationID: id.New(),
		AlertID:        a.AlertID,
		UserIDs:        recipients,
		Title:          title,
		Description:    description,
		Emergency:      true,
		Image:          image,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	tokens, err := s.devices.TokensForUsers(ctx, recipients)
	if err != nil {
		return fmt.Errorf("resolve push tokens: %w", err)
	}
	if len(tokens) == 0 || s.pusher == nil {
		return nil
	}
	return s.pusher.Send(ctx, snsinfra.PushMessage{
		Title:       title,
		Description: description,
		Emergency:   true,
		AlertID:     a.AlertID,
		Image:       image,
	}, tokens)
}

// recipients is the union of the reporter's subscribed active contacts and
// the tenant's configured staff numbers resolved to active accounts.
func (s *service) recipients(ctx context.Context, a *domain.Alert, reporter *domain.User, customer *domain.Customer) ([]string, error) {
	seen := make(map[string]bool)
	var userIDs []string
	add := func(userID string) {
		if userID != "" && !seen[userID] {
			seen[userID] = true
			userIDs = append(userIDs, userID)
		}
	}

	contacts, err := s.contacts.ListByOwner(ctx, reporter.UserID, a.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	for _, c := range contacts {
		if !c.SubscribedTo(a.AlertTypeID) {
			continue
		}
		contactUser, err := s.users.Get(ctx, c.ContactUserID)
		if err != nil || !contactUser.Enable {
			continue
		}
		add(contactUser.UserID)
	}

	usernames := s.staffUsernames(a.AlertType.Code, customer.Settings)
	if len(usernames) > 0 {
		staff, err := s.users.ListActiveByUsernames(ctx, usernames, reporter.CustomerType)
		if err != nil {
			return nil, fmt.Errorf("resolve staff numbers: %w", err)
		}
		for _, u := range staff {
			add(u.UserID)
		}
	}
	return userIDs, nil
}

// staffUsernames collects the security-chief, security-guard, additional and
// per-alert-type number lists. Usernames are phone numbers, stored as
// comma-separated strings on the tenant settings.
func (s *service) staffUsernames(alertTypeCode string, settings *domain.CustomerSettings) []string {
	if settings == nil {
		return nil
	}
	lists := []string{
		settings.SecurityChiefNumbers,
		settings.SecurityGuardNumbers,
		settings.AdditionalNumbers,
	}
	if field, ok := s.numbersByType[alertTypeCode]; ok {
		lists = append(lists, field.From(settings))
	}

	seen := make(map[string]bool)
	var usernames []string
	for _, list := range lists {
		for _, raw := range strings.Split(list, ",") {
			username := strings.TrimSpace(raw)
			if username != "" && !seen[username] {
				seen[username] = true
				usernames = append(usernames, username)
			}
		}
	}
	return usernames
}

// DefaultNumbersByType is the stock alert-type-code to settings-list mapping.
func DefaultNumbersByType() map[string]domain.NumbersField {
	return map[string]domain.NumbersField{
		"perimeter-violation": domain.PerimeterViolationNumbers,
		"fire":                domain.FireNumbers,
		"theft":               domain.TheftNumbers,
		"medical":             domain.MedicalNumbers,
	}
}
