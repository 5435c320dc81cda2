package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCore is a mock implementation of Core
type MockCore struct {
	mock.Mock
}

func (m *MockCore) CreateVehicle(ctx context.Context, req maintenance.CreateVehicleRequest) (*models.Vehicle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockCore) ListVehicles(ctx context.Context) ([]maintenance.VehicleSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]maintenance.VehicleSummary), args.Error(1)
}

func (m *MockCore) AddReading(ctx context.Context, vin string, mileage float64, serviceType string) (*maintenance.ReadingResult, error) {
	args := m.Called(ctx, vin, mileage, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.ReadingResult), args.Error(1)
}

func (m *MockCore) Readings(ctx context.Context, vin string) ([]models.OdometerReading, error) {
	args := m.Called(ctx, vin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OdometerReading), args.Error(1)
}

func (m *MockCore) Vehicle(ctx context.Context, vin string) (*models.Vehicle, error) {
	args := m.Called(ctx, vin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockCore) AvailableTechnicians(ctx context.Context, serviceType string) ([]models.AvailableTechnician, error) {
	args := m.Called(ctx, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailableTechnician), args.Error(1)
}

func (m *MockCore) ScheduleOrUpdate(ctx context.Context, req maintenance.ScheduleRequest) (primitive.ObjectID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockCore) ScheduledServices(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockCore) UnassignedServices(ctx context.Context, identity *models.Identity) ([]maintenance.UnassignedService, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]maintenance.UnassignedService), args.Error(1)
}

func (m *MockCore) CompleteService(ctx context.Context, req maintenance.CompleteRequest) (*maintenance.CompletionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.CompletionResult), args.Error(1)
}

func (m *MockCore) CreateAssignment(ctx context.Context, serviceID string) (*maintenance.AssignmentResult, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.AssignmentResult), args.Error(1)
}

func (m *MockCore) UpdateAssignmentStatus(ctx context.Context, serviceID, status string, identity *models.Identity) (*maintenance.StatusResult, error) {
	args := m.Called(ctx, serviceID, status, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.StatusResult), args.Error(1)
}

func (m *MockCore) TechnicianAssignments(ctx context.Context, identity *models.Identity) ([]models.Service, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockCore) PendingAssignments(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockCore) RecordPayment(ctx context.Context, req maintenance.PaymentRequest) (*maintenance.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.PaymentResult), args.Error(1)
}

func (m *MockCore) Histories(ctx context.Context) ([]models.History, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.History), args.Error(1)
}

func (m *MockCore) UnpaidCompletedAssignments(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockCore) RegisterTechnician(ctx context.Context, req maintenance.RegisterTechnicianRequest) (*models.Technician, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technician), args.Error(1)
}

func (m *MockCore) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Technician), args.Error(1)
}

func (m *MockCore) Summary(ctx context.Context) (*maintenance.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.Summary), args.Error(1)
}

// MockAuth is a mock implementation of AuthService and middleware.Resolver
type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockAuth) Logout(ctx context.Context, identity *models.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockAuth) Resolve(ctx context.Context, header string) (*models.Identity, error) {
	args := m.Called(ctx, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}
