// Package handlers exposes the maintenance workflow over JSON/HTTP.
// Handlers decode the request, pass the caller identity from the context
// into the core, and funnel every failure through writeError.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrInvalidJSON is returned for a body that does not decode.
var ErrInvalidJSON = apperr.Validation("INVALID_JSON", "Invalid JSON")

// VehicleService is the vehicle registry and odometer tracker.
type VehicleService interface {
	CreateVehicle(ctx context.Context, req maintenance.CreateVehicleRequest) (*models.Vehicle, error)
	ListVehicles(ctx context.Context) ([]maintenance.VehicleSummary, error)
	AddReading(ctx context.Context, vin string, mileage float64, serviceType string) (*maintenance.ReadingResult, error)
	Readings(ctx context.Context, vin string) ([]models.OdometerReading, error)
}

// SchedulingService attaches technicians to open work orders.
type SchedulingService interface {
	Vehicle(ctx context.Context, vin string) (*models.Vehicle, error)
	AvailableTechnicians(ctx context.Context, serviceType string) ([]models.AvailableTechnician, error)
	ScheduleOrUpdate(ctx context.Context, req maintenance.ScheduleRequest) (primitive.ObjectID, error)
	ScheduledServices(ctx context.Context) ([]models.Service, error)
	UnassignedServices(ctx context.Context, identity *models.Identity) ([]maintenance.UnassignedService, error)
	CompleteService(ctx context.Context, req maintenance.CompleteRequest) (*maintenance.CompletionResult, error)
}

// AssignmentService promotes and advances assignments.
type AssignmentService interface {
	CreateAssignment(ctx context.Context, serviceID string) (*maintenance.AssignmentResult, error)
	UpdateAssignmentStatus(ctx context.Context, serviceID, status string, identity *models.Identity) (*maintenance.StatusResult, error)
	TechnicianAssignments(ctx context.Context, identity *models.Identity) ([]models.Service, error)
	PendingAssignments(ctx context.Context) ([]models.Service, error)
}

// HistoryService records payments and serves history.
type HistoryService interface {
	RecordPayment(ctx context.Context, req maintenance.PaymentRequest) (*maintenance.PaymentResult, error)
	Histories(ctx context.Context) ([]models.History, error)
	UnpaidCompletedAssignments(ctx context.Context) ([]models.Service, error)
}

// TechnicianService registers and lists technicians.
type TechnicianService interface {
	RegisterTechnician(ctx context.Context, req maintenance.RegisterTechnicianRequest) (*models.Technician, error)
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
}

// DashboardService computes the dashboard counters.
type DashboardService interface {
	Summary(ctx context.Context) (*maintenance.Summary, error)
}

// decodeJSON reads a JSON body into v. An empty body decodes as {} so the
// core reports the missing fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return ErrInvalidJSON.WithMessage("Failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Fields([]apperr.FieldError{{Field: typeErr.Field, Error: "has the wrong type"}})
		}
		return ErrInvalidJSON
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteError(w, r, err)
}

// identity returns the authenticated caller. Routes that need one run
// behind AuthMiddleware.Authenticate.
func identity(r *http.Request) *models.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
