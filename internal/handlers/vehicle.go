package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
)

// VehicleHandler serves the vehicle registry and odometer readings.
type VehicleHandler struct {
	vehicles VehicleService
}

// NewVehicleHandler creates a vehicle handler
func NewVehicleHandler(vehicles VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// Create registers a vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req maintenance.CreateVehicleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vehicle, err := h.vehicles.CreateVehicle(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// List returns every serviceable vehicle.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.ListVehicles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

type readingRequest struct {
	Mileage     json.RawMessage `json:"mileage"`
	ServiceType string          `json:"service_type"`
}

// AddReading records an odometer reading for the VIN in the path.
func (h *VehicleHandler) AddReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// Only a JSON number is a mileage; "1200" and null are rejected.
	var mileage float64
	if !isJSONNumber(req.Mileage) || json.Unmarshal(req.Mileage, &mileage) != nil {
		writeError(w, r, maintenance.ErrInvalidMileage)
		return
	}

	result, err := h.vehicles.AddReading(r.Context(), r.PathValue("vin"), mileage, req.ServiceType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Readings lists the odometer readings of the VIN in the path.
func (h *VehicleHandler) Readings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.vehicles.Readings(r.Context(), r.PathValue("vin"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func isJSONNumber(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}
