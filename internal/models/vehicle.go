package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleType is the body class of a fleet vehicle.
type VehicleType string

const (
	VehicleCar   VehicleType = "Car"
	VehicleTruck VehicleType = "Truck"
)

// SupportedBrands lists the makes the workshop services.
var SupportedBrands = []string{
	"Toyota", "Honda", "Ford", "Chevrolet", "BMW", "Mercedes-Benz", "Audi",
	"Hyundai", "Kia", "Volkswagen", "Nissan", "Tata", "Mahindra", "Suzuki",
	"Renault", "AshokLeyland", "Eicher", "BharatBenz",
}

// Vehicle represents a fleet vehicle keyed by VIN.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN                string             `bson:"vin" json:"vin"`
	Type               VehicleType        `bson:"type" json:"type"`
	Make               string             `bson:"make" json:"make"`
	Model              string             `bson:"model" json:"model"`
	Year               int                `bson:"year" json:"year"`
	LastServiceDate    *time.Time         `bson:"last_service_date" json:"last_service_date"`
	NextServiceMileage *float64           `bson:"next_service_mileage" json:"next_service_mileage"`
	OdometerReadings   []OdometerReading  `bson:"odometer_readings" json:"odometer_readings"`
	ServiceDetails     []ServiceDetail    `bson:"service_details" json:"service_details"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// OdometerReading is a single mileage sample embedded in a vehicle.
type OdometerReading struct {
	ReadingID string    `bson:"reading_id" json:"reading_id"`
	Mileage   float64   `bson:"mileage" json:"mileage"`
	Date      time.Time `bson:"date" json:"date"`
}

// ServiceDetail summarizes a paid service on the vehicle's own record.
type ServiceDetail struct {
	ServiceID          primitive.ObjectID  `bson:"service_id" json:"service_id"`
	ServiceType        string              `bson:"service_type" json:"service_type"`
	TechnicianID       *primitive.ObjectID `bson:"technician_id" json:"technician_id"`
	ServiceCompletedOn time.Time           `bson:"service_completed_on" json:"service_completed_on"`
	Cost               float64             `bson:"cost" json:"cost"`
}

// NormalizeVehicleType maps "car", "TRUCK" etc. to the canonical type.
// The second return value is false for unsupported types.
func NormalizeVehicleType(s string) (VehicleType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	normalized := VehicleType(strings.ToUpper(s[:1]) + strings.ToLower(s[1:]))
	switch normalized {
	case VehicleCar, VehicleTruck:
		return normalized, true
	default:
		return "", false
	}
}

// IsSupportedBrand reports whether brand is on the workshop brand list.
func IsSupportedBrand(brand string) bool {
	for _, b := range SupportedBrands {
		if b == brand {
			return true
		}
	}
	return false
}

// HasNextServiceMileage reports whether a service interval has been set.
// Zero counts as unset.
func (v *Vehicle) HasNextServiceMileage() bool {
	return v.NextServiceMileage != nil && *v.NextServiceMileage != 0
}

// ServiceInterval returns the mileage between scheduled services.
func (v *Vehicle) ServiceInterval() float64 {
	if strings.EqualFold(string(v.Type), string(VehicleTruck)) {
		return 20000
	}
	return 10000
}
