package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentResult is returned by CreateAssignment.
type AssignmentResult struct {
	ServiceID      primitive.ObjectID `json:"service_id"`
	TechnicianName string             `json:"technician_name"`
}

// StatusResult is returned by UpdateAssignmentStatus.
type StatusResult struct {
	ServiceID             primitive.ObjectID   `json:"service_id"`
	Status                models.ServiceStatus `json:"status"`
	TechnicianCompletedOn *time.Time           `json:"technician_completed_on"`
}

// technicianStatuses are the states a technician may move their work to.
var technicianStatuses = []models.ServiceStatus{
	models.StatusAssigned,
	models.StatusWorkInProgress,
	models.StatusCompleted,
}

// CreateAssignment promotes an Unassigned service with a technician
// attached to Assigned, re-checking the technician rules.
func (m *Manager) CreateAssignment(ctx context.Context, serviceID string) (*AssignmentResult, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, ErrServiceIDRequired
	}
	service, err := m.services.FindServiceByID(ctx, serviceID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrServiceNotFound.WithMessage("Corresponding service schedule not found.")
		}
		return nil, storeErr("find service", err)
	}
	if service.Status != models.StatusUnassigned {
		return nil, ErrAlreadyAssigned
	}
	if service.TechnicianID == nil {
		return nil, ErrNoTechnicianOnService
	}
	if strings.TrimSpace(service.ServiceType) == "" {
		return nil, ErrServiceTypeRequired.WithMessage("Service record missing serviceType")
	}
	tech, err := m.checkTechnician(ctx, service.TechnicianID.Hex(), service.ServiceType, service.ID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	service.Status = models.StatusAssigned
	service.AssignmentDate = &now
	service.UpdatedAt = now
	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.services.UpdateService(ctx, *service); err != nil {
			return err
		}
		return m.technicians.SetTechnicianAssigned(ctx, tech.ID, true)
	})
	if err != nil {
		return nil, storeErr("assign service", err)
	}

	m.publish(ctx, events.Event{
		Type:         events.ServiceAssigned,
		ServiceID:    service.ID.Hex(),
		VehicleVIN:   service.VehicleVIN,
		TechnicianID: tech.ID.Hex(),
		Status:       string(service.Status),
	})
	m.log.WithFields(logrus.Fields{
		"service_id":    service.ID.Hex(),
		"technician_id": tech.ID.Hex(),
	}).Info("Service assigned")
	return &AssignmentResult{ServiceID: service.ID, TechnicianName: tech.DisplayName()}, nil
}

// UpdateAssignmentStatus lets the assigned technician move their service
// to Assigned, Work In Progress or Completed. Completed is final.
func (m *Manager) UpdateAssignmentStatus(ctx context.Context, serviceID, status string, identity *models.Identity) (*StatusResult, error) {
	if strings.TrimSpace(status) == "" {
		return nil, ErrStatusRequired
	}
	next, ok := models.ParseServiceStatus(status)
	if !ok || !containsStatus(technicianStatuses, next) {
		return nil, ErrInvalidStatus
	}

	service, err := m.services.FindServiceByID(ctx, strings.TrimSpace(serviceID))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrServiceNotFound
		}
		return nil, storeErr("find service", err)
	}
	if identity == nil || service.TechnicianID == nil || *service.TechnicianID != identity.ID {
		return nil, ErrNotYourAssignment
	}
	if service.Status == models.StatusCompleted {
		return nil, ErrServiceAlreadyCompleted
	}

	now := m.now()
	service.Status = next
	service.UpdatedAt = now
	if next == models.StatusCompleted {
		service.TechnicianCompletedOn = &now
		service.CompletedOn = ptr(now)
	}
	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.services.UpdateService(ctx, *service); err != nil {
			return err
		}
		if next == models.StatusCompleted {
			return m.technicians.SetTechnicianAssigned(ctx, *service.TechnicianID, false)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("update assignment status", err)
	}

	eventType := events.ServiceStatus
	if next == models.StatusCompleted {
		eventType = events.ServiceCompleted
	}
	m.publish(ctx, events.Event{
		Type:         eventType,
		ServiceID:    service.ID.Hex(),
		VehicleVIN:   service.VehicleVIN,
		TechnicianID: service.TechnicianID.Hex(),
		Status:       string(next),
	})
	m.log.WithFields(logrus.Fields{
		"service_id": service.ID.Hex(),
		"status":     next,
	}).Info("Assignment status updated")
	return &StatusResult{
		ServiceID:             service.ID,
		Status:                service.Status,
		TechnicianCompletedOn: service.TechnicianCompletedOn,
	}, nil
}

// PendingAssignments lists Unassigned services that already have a
// technician attached, the queue CreateAssignment works from.
func (m *Manager) PendingAssignments(ctx context.Context) ([]models.Service, error) {
	services, err := m.services.FindServices(ctx, db.ServiceFilter{
		Statuses:      []models.ServiceStatus{models.StatusUnassigned},
		HasTechnician: true,
	})
	if err != nil {
		return nil, storeErr("find pending assignments", err)
	}
	if len(services) == 0 {
		return nil, ErrNoUnassignedServices
	}
	return services, nil
}

// TechnicianAssignments lists Assigned and Completed services for admins.
// Technicians see their own Assigned, Work In Progress and Completed
// services.
func (m *Manager) TechnicianAssignments(ctx context.Context, identity *models.Identity) ([]models.Service, error) {
	if identity == nil {
		return nil, ErrUnauthorizedRole
	}
	switch identity.Role {
	case models.RoleAdmin:
		services, err := m.services.FindServices(ctx, db.ServiceFilter{
			Statuses: []models.ServiceStatus{models.StatusAssigned, models.StatusCompleted},
		})
		if err != nil {
			return nil, storeErr("find assignments", err)
		}
		return services, nil

	case models.RoleTechnician:
		tech, err := m.technicians.FindTechnicianByCredential(ctx, identity.CredentialID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrTechnicianNotFound
			}
			return nil, storeErr("find technician", err)
		}
		services, err := m.services.FindServices(ctx, db.ServiceFilter{
			TechnicianID: &tech.ID,
			Statuses:     technicianStatuses,
		})
		if err != nil {
			return nil, storeErr("find assignments", err)
		}
		if len(services) == 0 {
			return nil, ErrNoAssignmentsFound
		}
		return services, nil

	default:
		return nil, ErrUnauthorizedRole
	}
}

func containsStatus(list []models.ServiceStatus, s models.ServiceStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
