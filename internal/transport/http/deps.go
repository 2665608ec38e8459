package http

import (
	"github.com/alerta-api/internal/infrastructure/dynamo"
	"github.com/alerta-api/internal/infrastructure/fulltrack"
	"github.com/alerta-api/internal/infrastructure/geocode"
	jwtinfra "github.com/alerta-api/internal/infrastructure/jwt"
	"github.com/alerta-api/internal/infrastructure/realtime"
	s3infra "github.com/alerta-api/internal/infrastructure/s3"
	"github.com/alerta-api/internal/infrastructure/sns"
	"github.com/alerta-api/internal/infrastructure/traccar"
	"github.com/alerta-api/internal/pkg/background"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AlertRepo        *dynamo.AlertRepo
	AlertTypeRepo    *dynamo.AlertTypeRepo
	AlertStateRepo   *dynamo.AlertStateRepo
	CheckpointRepo   *dynamo.CheckpointRepo
	CustomerRepo     *dynamo.CustomerRepo
	UserRepo         *dynamo.UserRepo
	DeviceRepo       *dynamo.DeviceRepo
	ContactRepo      *dynamo.ContactRepo
	LocationRepo     *dynamo.LocationRepo
	NotificationRepo *dynamo.NotificationRepo
	SnapshotRepo     *dynamo.SnapshotRepo

	S3Store         *s3infra.Store
	Pusher          sns.Pusher
	Geocoder        geocode.Client
	TraccarClient   traccar.Client
	FulltrackClient fulltrack.Client
	Hub             *realtime.Hub
	Runner          *background.Runner
	JWTProvider     *jwtinfra.Provider
}
