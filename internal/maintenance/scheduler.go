package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleRequest updates the open work order of a vehicle.
type ScheduleRequest struct {
	VehicleVIN     string     `json:"vehicle_vin"`
	VehicleID      string     `json:"vehicle_id"`
	ServiceType    string     `json:"service_type"`
	DueServiceDate *time.Time `json:"due_service_date"`
	Description    string     `json:"description"`
	TechnicianID   string     `json:"technician_id"`
}

// UnassignedService is a work order without a technician, with the
// vehicle details the scheduling board shows next to it.
type UnassignedService struct {
	models.Service
	VehicleType     string     `json:"vehicle_type"`
	VehicleMake     string     `json:"vehicle_make"`
	VehicleModel    string     `json:"vehicle_model"`
	VehicleYear     *int       `json:"vehicle_year"`
	LastServiceDate *time.Time `json:"last_service_date"`
}

// ScheduleOrUpdate fills in the newest Unassigned service of a vehicle:
// service type, description, due date and optionally a technician. It
// never creates a service; those come from odometer readings.
func (m *Manager) ScheduleOrUpdate(ctx context.Context, req ScheduleRequest) (primitive.ObjectID, error) {
	vin := strings.TrimSpace(req.VehicleVIN)
	vehicleID := strings.TrimSpace(req.VehicleID)
	if vin == "" && vehicleID == "" {
		return primitive.NilObjectID, ErrVehicleRequired
	}

	var (
		vehicle *models.Vehicle
		err     error
	)
	if vin != "" {
		vehicle, err = m.vehicles.FindVehicleByVIN(ctx, vin)
	} else {
		vehicle, err = m.vehicles.FindVehicleByID(ctx, vehicleID)
	}
	if err != nil {
		if isNotFound(err) {
			return primitive.NilObjectID, ErrVehicleNotFound.WithMessage("Vehicle not found")
		}
		return primitive.NilObjectID, storeErr("find vehicle", err)
	}

	service, err := m.services.FindOneService(ctx, db.ServiceFilter{
		VehicleVIN: vehicle.VIN,
		Statuses:   []models.ServiceStatus{models.StatusUnassigned},
	})
	switch {
	case isNotFound(err):
		service = nil
	case err != nil:
		return primitive.NilObjectID, storeErr("find unassigned service", err)
	}

	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" && service != nil {
		serviceType = service.ServiceType
	}
	if serviceType == "" {
		return primitive.NilObjectID, ErrServiceTypeRequired
	}
	if service == nil {
		return primitive.NilObjectID, ErrNoUnassignedService
	}
	if req.DueServiceDate != nil && !req.DueServiceDate.After(m.now()) {
		return primitive.NilObjectID, ErrInvalidDueDate
	}

	if technicianID := strings.TrimSpace(req.TechnicianID); technicianID != "" {
		tech, err := m.checkTechnician(ctx, technicianID, serviceType, service.ID)
		if err != nil {
			return primitive.NilObjectID, err
		}
		service.TechnicianID = &tech.ID
		service.TechnicianName = ptr(tech.DisplayName())
	}

	service.ServiceType = serviceType
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.DueServiceDate != nil {
		service.DueServiceDate = req.DueServiceDate
	}
	service.UpdatedAt = m.now()
	if err := m.services.UpdateService(ctx, *service); err != nil {
		return primitive.NilObjectID, storeErr("update service", err)
	}

	event := events.Event{
		Type:       events.ServiceUpdated,
		ServiceID:  service.ID.Hex(),
		VehicleVIN: service.VehicleVIN,
		Status:     string(service.Status),
	}
	if service.TechnicianID != nil {
		event.TechnicianID = service.TechnicianID.Hex()
	}
	m.publish(ctx, event)
	m.log.WithField("service_id", service.ID.Hex()).Info("Service updated")
	return service.ID, nil
}

// ScheduledServices returns every service.
func (m *Manager) ScheduledServices(ctx context.Context) ([]models.Service, error) {
	services, err := m.services.FindServices(ctx, db.ServiceFilter{})
	if err != nil {
		return nil, storeErr("find services", err)
	}
	return services, nil
}

// UnassignedServices returns services with no technician attached, joined
// with their vehicle's details. Admins only.
func (m *Manager) UnassignedServices(ctx context.Context, identity *models.Identity) ([]UnassignedService, error) {
	if !identity.IsAdmin() {
		return nil, ErrAdminOnly
	}
	services, err := m.services.FindServices(ctx, db.ServiceFilter{Unassigned: true})
	if err != nil {
		return nil, storeErr("find unassigned services", err)
	}

	vehicles := map[string]*models.Vehicle{}
	out := make([]UnassignedService, 0, len(services))
	for _, s := range services {
		vehicle, ok := vehicles[s.VehicleVIN]
		if !ok {
			vehicle, err = m.vehicles.FindVehicleByVIN(ctx, s.VehicleVIN)
			if err != nil && !isNotFound(err) {
				return nil, storeErr("find vehicle", err)
			}
			vehicles[s.VehicleVIN] = vehicle
		}
		item := UnassignedService{Service: s}
		if vehicle != nil {
			item.VehicleType = string(vehicle.Type)
			item.VehicleMake = vehicle.Make
			item.VehicleModel = vehicle.Model
			if vehicle.Year != 0 {
				item.VehicleYear = ptr(vehicle.Year)
			}
			item.LastServiceDate = vehicle.LastServiceDate
		}
		out = append(out, item)
	}
	return out, nil
}
