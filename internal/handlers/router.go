package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Core is every maintenance operation the API exposes.
// *maintenance.Manager implements it.
type Core interface {
	VehicleService
	SchedulingService
	AssignmentService
	HistoryService
	TechnicianService
	DashboardService
}

// RouterConfig wires the API.
type RouterConfig struct {
	Core Core
	Auth AuthService
	// Authenticator resolves bearer tokens.
	Authenticator middleware.Resolver
	// LoginLimit wraps the login route; nil disables rate limiting.
	LoginLimit func(http.Handler) http.Handler
	Logger     *log.Logger
}

// NewRouter builds the HTTP handler with every route and the global
// middleware applied.
func NewRouter(cfg RouterConfig) http.Handler {
	authMW := middleware.NewAuthMiddleware(cfg.Authenticator)
	authHandler := NewAuthHandler(cfg.Auth)
	vehicles := NewVehicleHandler(cfg.Core)
	scheduling := NewSchedulingHandler(cfg.Core)
	technicians := NewTechnicianHandler(cfg.Core, cfg.Core)
	history := NewHistoryHandler(cfg.Core)
	dashboard := NewDashboardHandler(cfg.Core)

	loginLimit := cfg.LoginLimit
	if loginLimit == nil {
		loginLimit = func(h http.Handler) http.Handler { return h }
	}
	authed := func(h http.HandlerFunc, roles ...models.Role) http.Handler {
		if len(roles) == 0 {
			return authMW.Authenticate(h)
		}
		return authMW.Authenticate(authMW.RequireRole(roles...)(h))
	}
	admin := models.RoleAdmin
	technician := models.RoleTechnician

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health)

	mux.Handle("POST /auth/login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /auth/logout", authed(authHandler.Logout))

	mux.HandleFunc("POST /api/register", technicians.Register)
	mux.Handle("GET /api/register", authed(technicians.List))

	mux.Handle("POST /api/vehicles", authed(vehicles.Create, admin))
	mux.Handle("GET /api/vehicles", authed(vehicles.List, admin))
	mux.Handle("POST /api/vehicles/{vin}/odometer", authed(vehicles.AddReading, admin))
	mux.Handle("GET /api/vehicles/{vin}/odometer", authed(vehicles.Readings, admin))

	mux.Handle("GET /api/scheduling/vehicle/{vin}", authed(scheduling.Vehicle, admin))
	mux.Handle("GET /api/scheduling/available-technicians", authed(scheduling.AvailableTechnicians, admin))
	mux.Handle("POST /api/scheduling/schedule", authed(scheduling.Schedule, admin))
	mux.Handle("GET /api/scheduling/scheduledServices", authed(scheduling.ScheduledServices, admin))
	mux.Handle("GET /api/scheduling/unassigned", authed(scheduling.Unassigned, admin))
	mux.Handle("POST /api/scheduling/complete", authed(scheduling.Complete, admin))

	mux.Handle("POST /api/technician/assignments", authed(technicians.CreateAssignment, admin))
	mux.Handle("PATCH /api/technician/assignments/{serviceId}/status", authed(technicians.UpdateStatus, technician))
	mux.Handle("GET /api/technician/assignments", authed(technicians.Assignments, admin, technician))
	mux.Handle("GET /api/technician/unassigned-services", authed(technicians.PendingAssignments, admin))

	mux.Handle("POST /api/history/addService", authed(history.AddService, admin))
	mux.Handle("GET /api/history/allHistories", authed(history.AllHistories, admin))
	mux.Handle("GET /api/history/unpaidAssignments", authed(history.UnpaidAssignments, admin))

	mux.Handle("GET /api/dashboard/summary", authed(dashboard.Summary, admin, technician))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(cfg.Logger),
		middleware.SecurityHeaders,
	)
}
