package maintenance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateVehicleRequest registers a vehicle.
type CreateVehicleRequest struct {
	VIN             string     `json:"vin"`
	Type            string     `json:"type"`
	Make            string     `json:"make"`
	Model           string     `json:"model"`
	Year            int        `json:"year"`
	LastServiceDate *time.Time `json:"last_service_date"`
}

// VehicleSummary is a vehicle as listed to admins.
type VehicleSummary struct {
	models.Vehicle
	HasOpenUnpaidService bool `json:"has_open_unpaid_service"`
}

// CreateVehicle validates and stores a new vehicle. Checks run in order:
// brand, type, last service date, VIN, VIN uniqueness.
func (m *Manager) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*models.Vehicle, error) {
	brand := strings.TrimSpace(req.Make)
	if brand == "" || !models.IsSupportedBrand(brand) {
		return nil, ErrUnsupportedBrand
	}
	if strings.TrimSpace(req.Type) == "" {
		return nil, ErrVehicleTypeRequired
	}
	vehicleType, ok := models.NormalizeVehicleType(req.Type)
	if !ok {
		return nil, ErrUnsupportedVehicleType
	}

	now := m.now()
	var lastService *time.Time
	if req.LastServiceDate != nil {
		day := startOfDay(req.LastServiceDate.In(m.loc))
		if day.After(startOfDay(now.In(m.loc))) {
			return nil, ErrInvalidLastServiceDate
		}
		lastService = &day
	}

	vin := strings.TrimSpace(req.VIN)
	if vin == "" {
		return nil, ErrVINRequired
	}
	if _, err := m.vehicles.FindVehicleByVIN(ctx, vin); err == nil {
		return nil, ErrVehicleExists
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, storeErr("find vehicle", err)
	}

	vehicle := models.Vehicle{
		ID:               primitive.NewObjectID(),
		VIN:              vin,
		Type:             vehicleType,
		Make:             brand,
		Model:            strings.TrimSpace(req.Model),
		Year:             req.Year,
		LastServiceDate:  lastService,
		OdometerReadings: []models.OdometerReading{},
		ServiceDetails:   []models.ServiceDetail{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := m.vehicles.InsertVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrVehicleExists
		}
		return nil, storeErr("insert vehicle", err)
	}
	m.log.WithField("vin", vin).Info("Vehicle registered")
	return &vehicle, nil
}

// ListVehicles returns vehicles of supported brand and type, each flagged
// with whether an open unpaid service blocks new readings.
func (m *Manager) ListVehicles(ctx context.Context) ([]VehicleSummary, error) {
	vehicles, err := m.vehicles.FindVehicles(ctx)
	if err != nil {
		return nil, storeErr("find vehicles", err)
	}

	supported := make([]models.Vehicle, 0, len(vehicles))
	vins := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		if !models.IsSupportedBrand(v.Make) {
			continue
		}
		if v.Type != models.VehicleCar && v.Type != models.VehicleTruck {
			continue
		}
		supported = append(supported, v)
		vins = append(vins, v.VIN)
	}
	out := make([]VehicleSummary, 0, len(supported))
	if len(supported) == 0 {
		return out, nil
	}

	open, err := m.services.FindServices(ctx, db.ServiceFilter{
		VehicleVINs:      vins,
		NotStatus:        models.StatusCompleted,
		NotPaymentStatus: models.PaymentPaid,
	})
	if err != nil {
		return nil, storeErr("find open services", err)
	}
	blocked := make(map[string]bool, len(open))
	for _, s := range open {
		blocked[s.VehicleVIN] = true
	}
	for _, v := range supported {
		out = append(out, VehicleSummary{Vehicle: v, HasOpenUnpaidService: blocked[v.VIN]})
	}
	return out, nil
}

// Vehicle returns the vehicle with the given VIN.
func (m *Manager) Vehicle(ctx context.Context, vin string) (*models.Vehicle, error) {
	vehicle, err := m.vehicles.FindVehicleByVIN(ctx, vin)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVehicleNotFound.WithMessage("Vehicle not found")
		}
		return nil, storeErr("find vehicle", err)
	}
	return vehicle, nil
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
