package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceStatus is the work-order lifecycle state.
type ServiceStatus string

const (
	StatusUnassigned     ServiceStatus = "Unassigned"
	StatusAssigned       ServiceStatus = "Assigned"
	StatusWorkInProgress ServiceStatus = "Work In Progress"
	StatusCompleted      ServiceStatus = "Completed"
)

// PaymentStatus tracks whether a service has been billed.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "Paid"
	PaymentUnpaid PaymentStatus = "Unpaid"
)

// Supported service types; technicians' skills are drawn from the same set.
const (
	ServiceOilChange   = "Oil Change"
	ServiceBrakeRepair = "Brake Repair"
	ServiceBatteryTest = "Battery Test"
)

// Skills lists every skill a technician may hold.
var Skills = []string{ServiceOilChange, ServiceBrakeRepair, ServiceBatteryTest}

// Service is a maintenance work order for one vehicle.
type Service struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VehicleVIN            string              `bson:"vehicle_vin" json:"vehicle_vin"`
	ServiceType           string              `bson:"service_type" json:"service_type"`
	Description           string              `bson:"description" json:"description"`
	DueServiceDate        *time.Time          `bson:"due_service_date" json:"due_service_date"`
	TechnicianID          *primitive.ObjectID `bson:"technician_id" json:"technician_id"`
	TechnicianName        *string             `bson:"technician_name" json:"technician_name"`
	Status                ServiceStatus       `bson:"status" json:"status"`
	ReadingID             string              `bson:"reading_id,omitempty" json:"reading_id,omitempty"`
	AssignmentDate        *time.Time          `bson:"assignment_date" json:"assignment_date"`
	CompletedOn           *time.Time          `bson:"completed_on" json:"completed_on"`
	TechnicianCompletedOn *time.Time          `bson:"technician_completed_on" json:"technician_completed_on"`
	Payment               Payment             `bson:"payment" json:"payment"`
	CreatedAt             time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `bson:"updated_at" json:"updated_at"`
}

// Payment is the billing sub-record of a service.
type Payment struct {
	PaymentStatus PaymentStatus       `bson:"payment_status" json:"payment_status"`
	Cost          float64             `bson:"cost" json:"cost"`
	HistoryID     *primitive.ObjectID `bson:"history_id" json:"history_id"`
}

// IsOpenUnpaid reports whether the service blocks new readings on its vehicle.
func (s *Service) IsOpenUnpaid() bool {
	return s.Status != StatusCompleted && s.Payment.PaymentStatus != PaymentPaid
}

// ParseServiceStatus matches s case-insensitively against the lifecycle states.
func ParseServiceStatus(s string) (ServiceStatus, bool) {
	for _, st := range []ServiceStatus{StatusUnassigned, StatusAssigned, StatusWorkInProgress, StatusCompleted} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// ParsePaymentStatus matches s case-insensitively against Paid and Unpaid.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(PaymentPaid)):
		return PaymentPaid, true
	case strings.EqualFold(strings.TrimSpace(s), string(PaymentUnpaid)):
		return PaymentUnpaid, true
	default:
		return "", false
	}
}
