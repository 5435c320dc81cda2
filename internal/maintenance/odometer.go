package maintenance

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReadingResult is the outcome of AddReading.
type ReadingResult struct {
	Reading            models.OdometerReading `json:"reading"`
	NextServiceMileage *float64               `json:"next_service_mileage"`
	// ServiceID is the work order the reading opened.
	ServiceID *primitive.ObjectID `json:"service_id,omitempty"`
}

// AddReading records a due odometer reading and opens an Unassigned work
// order for it.
//
// A vehicle with an open unpaid service accepts no readings. Only a reading
// at or beyond next_service_mileage (or the first reading of a vehicle with
// none set) is accepted, and it needs a service type; the new service moves
// next_service_mileage to mileage plus the vehicle's service interval.
func (m *Manager) AddReading(ctx context.Context, vin string, mileage float64, serviceType string) (*ReadingResult, error) {
	if math.IsNaN(mileage) || math.IsInf(mileage, 0) {
		return nil, ErrInvalidMileage
	}

	vehicle, err := m.vehicles.FindVehicleByVIN(ctx, vin)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, storeErr("find vehicle", err)
	}

	now := m.now()
	if latest := latestReading(vehicle.OdometerReadings); latest != nil {
		if mileage <= latest.Mileage {
			return nil, ErrMileageRegression
		}
		if now.Before(latest.Date) {
			return nil, ErrFutureDateConflict
		}
	}

	open, err := m.services.FindOneService(ctx, db.ServiceFilter{
		VehicleVIN:       vin,
		NotStatus:        models.StatusCompleted,
		NotPaymentStatus: models.PaymentPaid,
	})
	switch {
	case err == nil:
		return nil, ErrOpenUnpaidServiceExists.With("service_id", open.ID.Hex())
	case !isNotFound(err):
		return nil, storeErr("find open service", err)
	}

	hasNext := vehicle.HasNextServiceMileage()
	if !hasNext && mileage <= 0 {
		return nil, ErrInvalidMileage.WithMessage("Invalid mileage for initial reading")
	}
	if hasNext && mileage < *vehicle.NextServiceMileage {
		return nil, ErrReadingNotDue
	}
	serviceType = strings.TrimSpace(serviceType)
	if serviceType == "" {
		return nil, ErrServiceTypeRequired
	}

	reading := models.OdometerReading{
		ReadingID: fmt.Sprintf("R%03d", len(vehicle.OdometerReadings)+1),
		Mileage:   mileage,
		Date:      now,
	}
	vehicle.OdometerReadings = append(vehicle.OdometerReadings, reading)

	service := models.Service{
		ID:          primitive.NewObjectID(),
		VehicleVIN:  vin,
		ServiceType: serviceType,
		Status:      models.StatusUnassigned,
		ReadingID:   reading.ReadingID,
		Payment:     models.Payment{PaymentStatus: models.PaymentUnpaid},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	vehicle.NextServiceMileage = ptr(mileage + vehicle.ServiceInterval())

	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.services.InsertService(ctx, service); err != nil {
			return err
		}
		return m.vehicles.UpdateVehicle(ctx, *vehicle)
	})
	if err != nil {
		return nil, storeErr("record reading", err)
	}

	result := &ReadingResult{Reading: reading, NextServiceMileage: vehicle.NextServiceMileage, ServiceID: &service.ID}
	m.publish(ctx, events.Event{Type: events.ReadingRecorded, VehicleVIN: vin, Mileage: mileage})
	m.publish(ctx, events.Event{
		Type:       events.ServiceScheduled,
		ServiceID:  service.ID.Hex(),
		VehicleVIN: vin,
		Status:     string(service.Status),
	})
	m.log.WithFields(logrus.Fields{
		"vin":        vin,
		"reading_id": reading.ReadingID,
		"mileage":    mileage,
		"service_id": service.ID.Hex(),
	}).Info("Odometer reading recorded")
	return result, nil
}

// Readings returns the vehicle's readings in the order they were recorded.
func (m *Manager) Readings(ctx context.Context, vin string) ([]models.OdometerReading, error) {
	vehicle, err := m.vehicles.FindVehicleByVIN(ctx, vin)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, storeErr("find vehicle", err)
	}
	if vehicle.OdometerReadings == nil {
		return []models.OdometerReading{}, nil
	}
	return vehicle.OdometerReadings, nil
}

// latestReading returns the reading with the greatest date. On equal dates
// the one stored later wins.
func latestReading(readings []models.OdometerReading) *models.OdometerReading {
	var latest *models.OdometerReading
	for i := range readings {
		if latest == nil || !latest.Date.After(readings[i].Date) {
			latest = &readings[i]
		}
	}
	return latest
}
