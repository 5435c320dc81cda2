package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVehicleType(t *testing.T) {
	tests := []struct {
		in   string
		want VehicleType
		ok   bool
	}{
		{"car", VehicleCar, true},
		{"TRUCK", VehicleTruck, true},
		{" Truck ", VehicleTruck, true},
		{"van", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeVehicleType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVehicle_ServiceInterval(t *testing.T) {
	assert.Equal(t, 20000.0, (&Vehicle{Type: VehicleTruck}).ServiceInterval())
	assert.Equal(t, 20000.0, (&Vehicle{Type: "truck"}).ServiceInterval())
	assert.Equal(t, 10000.0, (&Vehicle{Type: VehicleCar}).ServiceInterval())
}

func TestVehicle_HasNextServiceMileage(t *testing.T) {
	zero, set := 0.0, 15000.0
	assert.False(t, (&Vehicle{}).HasNextServiceMileage())
	assert.False(t, (&Vehicle{NextServiceMileage: &zero}).HasNextServiceMileage())
	assert.True(t, (&Vehicle{NextServiceMileage: &set}).HasNextServiceMileage())
}

func TestParseServiceStatus(t *testing.T) {
	st, ok := ParseServiceStatus("work in progress")
	assert.True(t, ok)
	assert.Equal(t, StatusWorkInProgress, st)

	st, ok = ParseServiceStatus("COMPLETED")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, st)

	_, ok = ParseServiceStatus("Pending")
	assert.False(t, ok)
}

func TestParsePaymentStatus(t *testing.T) {
	ps, ok := ParsePaymentStatus("paid")
	assert.True(t, ok)
	assert.Equal(t, PaymentPaid, ps)

	_, ok = ParsePaymentStatus("refunded")
	assert.False(t, ok)
}

func TestTechnician_Matching(t *testing.T) {
	tech := &Technician{
		FirstName:    "Asha ",
		LastName:     "",
		Skills:       []string{"Oil Change"},
		Availability: []string{"monday"},
	}
	assert.True(t, tech.HasSkill("oil change"))
	assert.False(t, tech.HasSkill("Brake Repair"))
	assert.True(t, tech.AvailableOn("Monday"))
	assert.False(t, tech.AvailableOn("tuesday"))
	assert.Equal(t, "Asha", tech.DisplayName())
}

func TestWeekdayName(t *testing.T) {
	tuesday := time.Date(2025, time.October, 28, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "tuesday", WeekdayName(tuesday))
}

func TestService_IsOpenUnpaid(t *testing.T) {
	assert.True(t, (&Service{Status: StatusAssigned, Payment: Payment{PaymentStatus: PaymentUnpaid}}).IsOpenUnpaid())
	assert.False(t, (&Service{Status: StatusCompleted, Payment: Payment{PaymentStatus: PaymentUnpaid}}).IsOpenUnpaid())
	assert.False(t, (&Service{Status: StatusAssigned, Payment: Payment{PaymentStatus: PaymentPaid}}).IsOpenUnpaid())
}
