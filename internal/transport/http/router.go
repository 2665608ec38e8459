package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	alertapp "github.com/alerta-api/internal/application/alert"
	"github.com/alerta-api/internal/application/fanout"
	"github.com/alerta-api/internal/application/stats"
	"github.com/alerta-api/internal/application/telemetry"
	userapp "github.com/alerta-api/internal/application/user"
	"github.com/alerta-api/internal/config"
	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/transport/http/handler"
	appmiddleware "github.com/alerta-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second with a burst of 10 on the public SMS gateway.
	gatewayRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	fanoutSvc := fanout.NewService(fanout.ServiceDeps{
		ContactRepo:      deps.ContactRepo,
		UserRepo:         deps.UserRepo,
		DeviceRepo:       deps.DeviceRepo,
		NotificationRepo: deps.NotificationRepo,
		Pusher:           deps.Pusher,
		Images:           deps.S3Store,
		NumbersByType:    fanout.DefaultNumbersByType(),
	})
	telemetrySvc := telemetry.NewService(telemetry.ServiceDeps{
		SnapshotRepo:    deps.SnapshotRepo,
		TraccarClient:   deps.TraccarClient,
		FulltrackClient: deps.FulltrackClient,
		Categories:      telemetry.DefaultCategories(),
	})
	alertSvc, err := alertapp.NewService(alertapp.ServiceDeps{
		AlertRepo:      deps.AlertRepo,
		AlertTypeRepo:  deps.AlertTypeRepo,
		AlertStateRepo: deps.AlertStateRepo,
		CheckpointRepo: deps.CheckpointRepo,
		CustomerRepo:   deps.CustomerRepo,
		UserRepo:       deps.UserRepo,

		Geocoder:  deps.Geocoder,
		Fanout:    fanoutSvc,
		Telemetry: telemetrySvc,
		Realtime:  deps.Hub,
		Runner:    deps.Runner,

		SMSKeyword: cfg.SMSKeyword,
		SMSSecret:  cfg.SMSSecret,
		SMSPattern: cfg.SMSPattern,

		IssuedStateID:             cfg.IssuedStateID,
		NeighborhoodIssuedStateID: cfg.NeighborhoodIssuedStateID,
		TrackingAlertTypes:        cfg.TrackingAlertTypes,
		NeighborhoodMaxDistanceKm: cfg.NeighborhoodMaxDistanceKm,
	})
	if err != nil {
		log.Fatalf("alert service: %v", err)
	}
	statsSvc := stats.NewService(stats.ServiceDeps{
		AlertRepo:      deps.AlertRepo,
		AlertTypeRepo:  deps.AlertTypeRepo,
		AlertStateRepo: deps.AlertStateRepo,
		LocationRepo:   deps.LocationRepo,
		UserRepo:       deps.UserRepo,
	})
	userSvc := userapp.NewService(deps.UserRepo, deps.S3Store)

	healthH := handler.NewHealthHandler()
	alertH := handler.NewAlertHandler(alertSvc)
	smsH := handler.NewSMSHandler(alertSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	userH := handler.NewUserHandler(userSvc)
	wsH := handler.NewWSHandler(deps.Hub)

	r.Route("/v1", func(r chi.Router) {
		// Public routes (no auth)
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(gatewayRL.Limit).Post("/sms", smsH.Ingest)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/alerts", alertH.Create)
			r.Get("/alerts", alertH.List)
			r.Get("/alerts/{id}", alertH.Get)
			r.Post("/alerts/{id}/checkpoints", alertH.CreateCheckpoint)
			r.Get("/alerts/{id}/checkpoints", alertH.ListCheckpoints)
			r.Get("/alert-types", alertH.ListTypes)
			r.Get("/alert-states", alertH.ListStates)

			r.Get("/users/{id}", userH.Get)
			r.Post("/users/{id}/image", userH.UploadImage)

			r.Get("/ws/customers/{customerID}/alerts", wsH.SubscribeAlerts)
			r.Get("/ws/customers/{customerID}/alerts/{alertID}/checkpoints", wsH.SubscribeCheckpoints)

			// Monitoring staff only
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleOperator))

				r.Put("/alerts/{id}/state", alertH.ChangeState)
				r.Get("/statistics", statsH.Get)
			})
		})
	})

	return r
}
