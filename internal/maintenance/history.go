package maintenance

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentRequest records the payment state of a service. Cost is applied
// only when it is a number; anything else leaves the stored cost alone.
type PaymentRequest struct {
	ServiceID     string      `json:"service_id"`
	PaymentStatus string      `json:"payment_status"`
	Cost          interface{} `json:"cost"`
}

// PaymentResult is returned by RecordPayment.
type PaymentResult struct {
	ServiceID primitive.ObjectID  `json:"service_id"`
	HistoryID *primitive.ObjectID `json:"history_id"`
}

// CompleteRequest closes a service from the admin side. Cost may be a
// number or a numeric string.
type CompleteRequest struct {
	ServiceID     string      `json:"service_id"`
	PaymentStatus string      `json:"payment_status"`
	Cost          interface{} `json:"cost"`
}

// CompletionResult is returned by CompleteService.
type CompletionResult struct {
	ServiceID   primitive.ObjectID  `json:"service_id"`
	CompletedOn *time.Time          `json:"completed_on"`
	HistoryID   *primitive.ObjectID `json:"history_id"`
}

// RecordPayment sets a service's payment status and cost. Marking it Paid
// writes the History snapshot and the vehicle's service detail once; a
// service that already has a History keeps it.
func (m *Manager) RecordPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	serviceID := strings.TrimSpace(req.ServiceID)
	if serviceID == "" || strings.TrimSpace(req.PaymentStatus) == "" {
		return nil, ErrMissingFields
	}
	status, ok := models.ParsePaymentStatus(req.PaymentStatus)
	if !ok {
		return nil, ErrInvalidPaymentStatus
	}
	service, err := m.services.FindServiceByID(ctx, serviceID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrServiceNotFound
		}
		return nil, storeErr("find service", err)
	}

	service.Payment.PaymentStatus = status
	if cost, ok := numericCost(req.Cost); ok {
		service.Payment.Cost = cost
	}
	service.UpdatedAt = m.now()

	if status != models.PaymentPaid {
		if err := m.services.UpdateService(ctx, *service); err != nil {
			return nil, storeErr("update service", err)
		}
		m.log.WithField("service_id", service.ID.Hex()).Info("Payment status updated")
		return &PaymentResult{ServiceID: service.ID}, nil
	}

	existing, err := m.existingHistory(ctx, service)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		service.Payment.HistoryID = existing
		if err := m.services.UpdateService(ctx, *service); err != nil {
			return nil, storeErr("update service", err)
		}
		return &PaymentResult{ServiceID: service.ID, HistoryID: existing}, nil
	}

	workStatus := service.Status
	if workStatus == "" {
		workStatus = models.StatusCompleted
	}
	historyID, err := m.finalize(ctx, service, workStatus, nil)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{ServiceID: service.ID, HistoryID: &historyID}, nil
}

// CompleteService marks a service Completed, optionally as Paid. A paid
// service without History gets one, as in RecordPayment.
func (m *Manager) CompleteService(ctx context.Context, req CompleteRequest) (*CompletionResult, error) {
	serviceID := strings.TrimSpace(req.ServiceID)
	if serviceID == "" {
		return nil, ErrServiceIDRequired.WithMessage("serviceId is required")
	}
	service, err := m.services.FindServiceByID(ctx, serviceID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrServiceNotFound
		}
		return nil, storeErr("find service", err)
	}

	now := m.now()
	if service.CompletedOn == nil {
		service.CompletedOn = &now
	}
	service.Status = models.StatusCompleted
	service.UpdatedAt = now
	if strings.EqualFold(strings.TrimSpace(req.PaymentStatus), string(models.PaymentPaid)) {
		service.Payment.PaymentStatus = models.PaymentPaid
		service.Payment.Cost = coerceCost(req.Cost, service.Payment.Cost)
	}

	result := &CompletionResult{ServiceID: service.ID, CompletedOn: service.CompletedOn}
	technicianID := service.TechnicianID

	if service.Payment.PaymentStatus == models.PaymentPaid {
		existing, err := m.existingHistory(ctx, service)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			historyID, err := m.finalize(ctx, service, models.StatusCompleted, technicianID)
			if err != nil {
				return nil, err
			}
			result.HistoryID = &historyID
			return result, nil
		}
		service.Payment.HistoryID = existing
		result.HistoryID = existing
	}

	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.services.UpdateService(ctx, *service); err != nil {
			return err
		}
		return m.releaseTechnician(ctx, technicianID)
	})
	if err != nil {
		return nil, storeErr("complete service", err)
	}
	m.publishCompleted(ctx, service)
	return result, nil
}

// existingHistory returns the id of a History already written for service.
func (m *Manager) existingHistory(ctx context.Context, service *models.Service) (*primitive.ObjectID, error) {
	if service.Payment.HistoryID != nil {
		return service.Payment.HistoryID, nil
	}
	history, err := m.histories.FindHistoryByServiceID(ctx, service.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storeErr("find history", err)
	}
	return &history.ID, nil
}

// finalize writes the History snapshot, appends the vehicle's service
// detail and links the History back to the service, in that order and in
// one transaction. release, when set, is the technician freed by the
// completion.
func (m *Manager) finalize(ctx context.Context, service *models.Service, workStatus models.ServiceStatus, release *primitive.ObjectID) (primitive.ObjectID, error) {
	now := m.now()
	if service.CompletedOn == nil {
		service.CompletedOn = &now
	}
	technicianName := ""
	if service.TechnicianName != nil {
		technicianName = *service.TechnicianName
	}
	history := models.History{
		ID:             primitive.NewObjectID(),
		ServiceID:      service.ID,
		VehicleVIN:     service.VehicleVIN,
		TechnicianID:   service.TechnicianID,
		TechnicianName: technicianName,
		ServiceType:    service.ServiceType,
		DueServiceDate: service.DueServiceDate,
		PaymentStatus:  models.PaymentPaid,
		Cost:           service.Payment.Cost,
		WorkStatus:     workStatus,
		CreatedAt:      now,
	}
	service.Payment.HistoryID = &history.ID

	err := m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.histories.InsertHistory(ctx, history); err != nil {
			return err
		}
		vehicle, err := m.vehicles.FindVehicleByVIN(ctx, service.VehicleVIN)
		switch {
		case err == nil:
			vehicle.ServiceDetails = append(vehicle.ServiceDetails, models.ServiceDetail{
				ServiceID:          service.ID,
				ServiceType:        service.ServiceType,
				TechnicianID:       service.TechnicianID,
				ServiceCompletedOn: *service.CompletedOn,
				Cost:               service.Payment.Cost,
			})
			vehicle.LastServiceDate = service.CompletedOn
			if err := m.vehicles.UpdateVehicle(ctx, *vehicle); err != nil {
				return err
			}
		case !isNotFound(err):
			return err
		}
		if err := m.services.UpdateService(ctx, *service); err != nil {
			return err
		}
		return m.releaseTechnician(ctx, release)
	})
	if err != nil {
		return primitive.NilObjectID, storeErr("record payment", err)
	}

	m.publish(ctx, events.Event{
		Type:       events.PaymentRecorded,
		ServiceID:  service.ID.Hex(),
		VehicleVIN: service.VehicleVIN,
		Status:     string(models.PaymentPaid),
	})
	if release != nil {
		m.publishCompleted(ctx, service)
	}
	m.log.WithFields(logrus.Fields{
		"service_id": service.ID.Hex(),
		"history_id": history.ID.Hex(),
		"cost":       history.Cost,
	}).Info("Service payment recorded")
	return history.ID, nil
}

func (m *Manager) releaseTechnician(ctx context.Context, technicianID *primitive.ObjectID) error {
	if technicianID == nil {
		return nil
	}
	err := m.technicians.SetTechnicianAssigned(ctx, *technicianID, false)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (m *Manager) publishCompleted(ctx context.Context, service *models.Service) {
	event := events.Event{
		Type:       events.ServiceCompleted,
		ServiceID:  service.ID.Hex(),
		VehicleVIN: service.VehicleVIN,
		Status:     string(service.Status),
	}
	if service.TechnicianID != nil {
		event.TechnicianID = service.TechnicianID.Hex()
	}
	m.publish(ctx, event)
}

// numericCost accepts decoded JSON numbers only.
func numericCost(v interface{}) (float64, bool) {
	switch c := v.(type) {
	case float64:
		return c, !math.IsNaN(c) && !math.IsInf(c, 0)
	case int:
		return float64(c), true
	case int64:
		return float64(c), true
	default:
		return 0, false
	}
}

// coerceCost reads a JSON number or numeric string. Anything else, and a
// string that parses to zero, keeps fallback.
func coerceCost(v interface{}, fallback float64) float64 {
	switch c := v.(type) {
	case nil:
		return fallback
	case float64:
		return c
	case int:
		return float64(c)
	}
	parsed, err := cast.ToFloat64E(v)
	if err != nil || parsed == 0 {
		return fallback
	}
	return parsed
}

// Histories returns every History record.
func (m *Manager) Histories(ctx context.Context) ([]models.History, error) {
	histories, err := m.histories.FindHistories(ctx)
	if err != nil {
		return nil, storeErr("find histories", err)
	}
	return histories, nil
}

// UnpaidCompletedAssignments returns Completed services still Unpaid.
func (m *Manager) UnpaidCompletedAssignments(ctx context.Context) ([]models.Service, error) {
	services, err := m.services.FindServices(ctx, db.ServiceFilter{
		Statuses:      []models.ServiceStatus{models.StatusCompleted},
		PaymentStatus: models.PaymentUnpaid,
	})
	if err != nil {
		return nil, storeErr("find unpaid services", err)
	}
	return services, nil
}
