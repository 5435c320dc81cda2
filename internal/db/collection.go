package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid object id")
	ErrDuplicate = errors.New("duplicate key")
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehicleByVIN(ctx context.Context, vin string) (*models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicle models.Vehicle) error
	CountVehicles(ctx context.Context) (int64, error)
}

// ServiceCollection defines the interface for work-order operations.
type ServiceCollection interface {
	InsertService(ctx context.Context, service models.Service) error
	FindServiceByID(ctx context.Context, id string) (*models.Service, error)
	// FindOneService returns the newest (by created_at) matching service.
	FindOneService(ctx context.Context, filter ServiceFilter) (*models.Service, error)
	FindServices(ctx context.Context, filter ServiceFilter) ([]models.Service, error)
	UpdateService(ctx context.Context, service models.Service) error
	CountServices(ctx context.Context, filter ServiceFilter) (int64, error)
	DistinctTechnicianIDs(ctx context.Context, filter ServiceFilter) ([]primitive.ObjectID, error)
}

// TechnicianCollection defines the interface for technician profiles.
type TechnicianCollection interface {
	InsertTechnician(ctx context.Context, technician models.Technician) error
	FindTechnicianByID(ctx context.Context, id string) (*models.Technician, error)
	FindTechnicianByCredential(ctx context.Context, credentialID primitive.ObjectID) (*models.Technician, error)
	FindTechnicians(ctx context.Context, filter TechnicianFilter) ([]models.Technician, error)
	SetTechnicianAssigned(ctx context.Context, id primitive.ObjectID, assigned bool) error
	CountTechnicians(ctx context.Context) (int64, error)
}

// CredentialCollection defines the interface for login records.
type CredentialCollection interface {
	InsertCredential(ctx context.Context, credential models.Credential) error
	FindCredentialByID(ctx context.Context, id string) (*models.Credential, error)
	FindCredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
}

// HistoryCollection is append-only.
type HistoryCollection interface {
	InsertHistory(ctx context.Context, history models.History) error
	FindHistories(ctx context.Context) ([]models.History, error)
	FindHistoryByServiceID(ctx context.Context, serviceID primitive.ObjectID) (*models.History, error)
}

// RevokedTokenCollection stores token ids until their natural expiry.
type RevokedTokenCollection interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Transactor runs fn as one logical unit. Collection calls inside fn must
// use the ctx passed to fn.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ServiceFilter selects services. Zero-valued fields are ignored.
type ServiceFilter struct {
	VehicleVIN       string
	VehicleVINs      []string
	TechnicianID     *primitive.ObjectID
	Statuses         []models.ServiceStatus
	NotStatus        models.ServiceStatus
	PaymentStatus    models.PaymentStatus
	NotPaymentStatus models.PaymentStatus
	ExcludeID        *primitive.ObjectID
	// Unassigned selects services with neither technician id nor name.
	Unassigned bool
	// HasTechnician selects services with a technician id set.
	HasTechnician bool
}

// BSON renders the filter as a MongoDB query document.
func (f ServiceFilter) BSON() bson.M {
	q := bson.M{}
	if f.VehicleVIN != "" {
		q["vehicle_vin"] = f.VehicleVIN
	}
	if len(f.VehicleVINs) > 0 {
		q["vehicle_vin"] = bson.M{"$in": f.VehicleVINs}
	}
	if f.TechnicianID != nil {
		q["technician_id"] = *f.TechnicianID
	}
	status := bson.M{}
	if len(f.Statuses) > 0 {
		status["$in"] = f.Statuses
	}
	if f.NotStatus != "" {
		status["$ne"] = f.NotStatus
	}
	if len(status) > 0 {
		q["status"] = status
	}
	payment := bson.M{}
	if f.PaymentStatus != "" {
		payment["$eq"] = f.PaymentStatus
	}
	if f.NotPaymentStatus != "" {
		// $ne also matches documents without the field.
		payment["$ne"] = f.NotPaymentStatus
	}
	if len(payment) > 0 {
		q["payment.payment_status"] = payment
	}
	if f.ExcludeID != nil {
		q["_id"] = bson.M{"$ne": *f.ExcludeID}
	}
	if f.Unassigned {
		q["technician_id"] = nil
		q["technician_name"] = nil
	}
	if f.HasTechnician && f.TechnicianID == nil {
		q["technician_id"] = bson.M{"$ne": nil}
	}
	return q
}

// Matches applies the filter to an in-memory service.
func (f ServiceFilter) Matches(s *models.Service) bool {
	if f.VehicleVIN != "" && s.VehicleVIN != f.VehicleVIN {
		return false
	}
	if len(f.VehicleVINs) > 0 && !containsString(f.VehicleVINs, s.VehicleVIN) {
		return false
	}
	if f.TechnicianID != nil && (s.TechnicianID == nil || *s.TechnicianID != *f.TechnicianID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if s.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.NotStatus != "" && s.Status == f.NotStatus {
		return false
	}
	if f.PaymentStatus != "" && s.Payment.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.NotPaymentStatus != "" && s.Payment.PaymentStatus == f.NotPaymentStatus {
		return false
	}
	if f.ExcludeID != nil && s.ID == *f.ExcludeID {
		return false
	}
	if f.Unassigned && (s.TechnicianID != nil || s.TechnicianName != nil) {
		return false
	}
	if f.HasTechnician && s.TechnicianID == nil {
		return false
	}
	return true
}

// TechnicianFilter selects technicians. Zero-valued fields are ignored.
type TechnicianFilter struct {
	// Day is a lowercase weekday name the technician must be available on.
	Day string
}

// BSON renders the filter as a MongoDB query document.
func (f TechnicianFilter) BSON() bson.M {
	q := bson.M{}
	if f.Day != "" {
		q["availability"] = f.Day
	}
	return q
}

// Matches applies the filter to an in-memory technician.
func (f TechnicianFilter) Matches(t *models.Technician) bool {
	if f.Day != "" && !containsString(t.Availability, f.Day) {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParseID converts a hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Store groups the collections the application uses.
type Store struct {
	Vehicles    VehicleCollection
	Services    ServiceCollection
	Technicians TechnicianCollection
	Credentials CredentialCollection
	Histories   HistoryCollection
	Revoked     RevokedTokenCollection
	Tx          Transactor

	closeFn func(ctx context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}
