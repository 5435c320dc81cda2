package maintenance

import (
	"context"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Summary holds the dashboard counters.
type Summary struct {
	TotalVehicles     int64 `json:"total_vehicles"`
	ScheduledServices int64 `json:"scheduled_services"`
	InProgress        int64 `json:"in_progress"`
	Completed         int64 `json:"completed"`
	ActiveTechnicians int64 `json:"active_technicians"`
	TotalTechnicians  int64 `json:"total_technicians"`
}

// Summary counts vehicles, services by state and technicians. Active
// technicians are the distinct technicians on Assigned services.
func (m *Manager) Summary(ctx context.Context) (*Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.TotalVehicles, err = m.vehicles.CountVehicles(ctx); err != nil {
		return nil, storeErr("count vehicles", err)
	}
	if s.ScheduledServices, err = m.services.CountServices(ctx, db.ServiceFilter{}); err != nil {
		return nil, storeErr("count services", err)
	}
	if s.InProgress, err = m.services.CountServices(ctx, db.ServiceFilter{
		Statuses: []models.ServiceStatus{models.StatusWorkInProgress, models.StatusAssigned},
	}); err != nil {
		return nil, storeErr("count services in progress", err)
	}
	if s.Completed, err = m.services.CountServices(ctx, db.ServiceFilter{
		Statuses: []models.ServiceStatus{models.StatusCompleted},
	}); err != nil {
		return nil, storeErr("count completed services", err)
	}
	active, err := m.services.DistinctTechnicianIDs(ctx, db.ServiceFilter{
		Statuses: []models.ServiceStatus{models.StatusAssigned},
	})
	if err != nil {
		return nil, storeErr("distinct technicians", err)
	}
	s.ActiveTechnicians = int64(len(active))
	if s.TotalTechnicians, err = m.technicians.CountTechnicians(ctx); err != nil {
		return nil, storeErr("count technicians", err)
	}
	return &s, nil
}
