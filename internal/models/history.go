package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// History is an immutable snapshot written when a service is paid.
type History struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ServiceID      primitive.ObjectID  `bson:"service_id" json:"service_id"`
	VehicleVIN     string              `bson:"vehicle_vin" json:"vehicle_vin"`
	TechnicianID   *primitive.ObjectID `bson:"technician_id" json:"technician_id"`
	TechnicianName string              `bson:"technician_name" json:"technician_name"`
	ServiceType    string              `bson:"service_type" json:"service_type"`
	DueServiceDate *time.Time          `bson:"due_service_date" json:"due_service_date"`
	PaymentStatus  PaymentStatus       `bson:"payment_status" json:"payment_status"`
	Cost           float64             `bson:"cost" json:"cost"`
	WorkStatus     ServiceStatus       `bson:"work_status" json:"work_status"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
}

// RevokedToken marks a logged-out token until it would have expired
// on its own.
type RevokedToken struct {
	JTI       string    `bson:"jti" json:"jti"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}
