package maintenance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecordPayment_Paid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service, tech := f.assigned(t, "PAY1", "p1@fleet.com")
	_, err := f.m.UpdateAssignmentStatus(ctx, service.ID.Hex(), "Completed", identityOf(tech))
	require.NoError(t, err)

	res, err := f.m.RecordPayment(ctx, PaymentRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Paid", Cost: 1250.5})
	require.NoError(t, err)
	require.NotNil(t, res.HistoryID)

	histories, err := f.m.Histories(ctx)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	h := histories[0]
	assert.Equal(t, *res.HistoryID, h.ID)
	assert.Equal(t, service.ID, h.ServiceID)
	assert.Equal(t, "PAY1", h.VehicleVIN)
	assert.Equal(t, "Ravi Kumar", h.TechnicianName)
	assert.Equal(t, models.PaymentPaid, h.PaymentStatus)
	assert.Equal(t, models.StatusCompleted, h.WorkStatus)
	assert.Equal(t, 1250.5, h.Cost)

	vehicle, err := f.store.Vehicles.FindVehicleByVIN(ctx, "PAY1")
	require.NoError(t, err)
	require.Len(t, vehicle.ServiceDetails, 1)
	assert.Equal(t, service.ID, vehicle.ServiceDetails[0].ServiceID)
	assert.Equal(t, 1250.5, vehicle.ServiceDetails[0].Cost)
	require.NotNil(t, vehicle.LastServiceDate)

	stored, err := f.store.Services.FindServiceByID(ctx, service.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.Payment.PaymentStatus)
	assert.Equal(t, res.HistoryID, stored.Payment.HistoryID)
	assert.Contains(t, f.pub.Types(), events.PaymentRecorded)

	// Paying again keeps the single History and vehicle entry.
	again, err := f.m.RecordPayment(ctx, PaymentRequest{ServiceID: service.ID.Hex(), PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, *res.HistoryID, *again.HistoryID)
	histories, err = f.m.Histories(ctx)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
	vehicle, err = f.store.Vehicles.FindVehicleByVIN(ctx, "PAY1")
	require.NoError(t, err)
	assert.Len(t, vehicle.ServiceDetails, 1)
}

func TestRecordPayment_Unpaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.dueService(t, "PAY2", models.ServiceOilChange)

	res, err := f.m.RecordPayment(ctx, PaymentRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Unpaid", Cost: 300.0})
	require.NoError(t, err)
	assert.Nil(t, res.HistoryID)

	stored, err := f.store.Services.FindServiceByID(ctx, service.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.Payment.Cost)
	histories, err := f.m.Histories(ctx)
	require.NoError(t, err)
	assert.Empty(t, histories)
}

func TestRecordPayment_NonNumericCostIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.dueService(t, "PAY3", models.ServiceOilChange)

	_, err := f.m.RecordPayment(ctx, PaymentRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Unpaid", Cost: 300.0})
	require.NoError(t, err)

	for _, cost := range []interface{}{"abc", "450", true, map[string]any{"amount": 1}} {
		_, err = f.m.RecordPayment(ctx, PaymentRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Unpaid", Cost: cost})
		require.NoError(t, err, "%v", cost)
	}

	stored, err := f.store.Services.FindServiceByID(ctx, service.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.Payment.Cost)
}

func TestRecordPayment_UsesExistingHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.dueService(t, "PAY3", models.ServiceOilChange)
	prior := models.History{ID: primitive.NewObjectID(), ServiceID: service.ID, VehicleVIN: "PAY3"}
	require.NoError(t, f.store.Histories.InsertHistory(ctx, prior))

	res, err := f.m.RecordPayment(ctx, PaymentRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Paid"})
	require.NoError(t, err)
	assert.Equal(t, prior.ID, *res.HistoryID)
	histories, err := f.m.Histories(ctx)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

func TestRecordPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.m.RecordPayment(ctx, PaymentRequest{PaymentStatus: "Paid"})
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = f.m.RecordPayment(ctx, PaymentRequest{ServiceID: "x"})
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = f.m.RecordPayment(ctx, PaymentRequest{ServiceID: "x", PaymentStatus: "Refunded"})
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
	_, err = f.m.RecordPayment(ctx, PaymentRequest{ServiceID: primitive.NewObjectID().Hex(), PaymentStatus: "Paid"})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCompleteService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service, tech := f.assigned(t, "DONE1", "d1@fleet.com")

	res, err := f.m.CompleteService(ctx, CompleteRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Paid", Cost: "500"})
	require.NoError(t, err)
	require.NotNil(t, res.HistoryID)
	require.NotNil(t, res.CompletedOn)
	assert.True(t, tuesday.Equal(*res.CompletedOn))

	stored, err := f.store.Services.FindServiceByID(ctx, service.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, 500.0, stored.Payment.Cost)

	storedTech, err := f.store.Technicians.FindTechnicianByID(ctx, tech.ID.Hex())
	require.NoError(t, err)
	assert.False(t, storedTech.IsAssigned)

	again, err := f.m.CompleteService(ctx, CompleteRequest{ServiceID: service.ID.Hex(), PaymentStatus: "Paid", Cost: 700.0})
	require.NoError(t, err)
	assert.Equal(t, *res.HistoryID, *again.HistoryID)
	histories, err := f.m.Histories(ctx)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

func TestCompleteService_Unpaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	service := f.dueService(t, "DONE2", models.ServiceOilChange)

	res, err := f.m.CompleteService(ctx, CompleteRequest{ServiceID: service.ID.Hex()})
	require.NoError(t, err)
	assert.Nil(t, res.HistoryID)

	unpaid, err := f.m.UnpaidCompletedAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, service.ID, unpaid[0].ID)

	// Nothing blocks the vehicle once its service is Completed.
	_, err = f.m.AddReading(ctx, "DONE2", 11000, models.ServiceBrakeRepair)
	assert.NoError(t, err)
}

func TestCompleteService_Rejections(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.CompleteService(context.Background(), CompleteRequest{})
	require.ErrorIs(t, err, ErrServiceIDRequired)
	assert.Equal(t, "serviceId is required", appErrOf(t, err).Message)

	_, err = f.m.CompleteService(context.Background(), CompleteRequest{ServiceID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCoerceCost(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"nil keeps fallback", nil, 99},
		{"float", 12.5, 12.5},
		{"zero float is taken", 0.0, 0},
		{"int", 40, 40},
		{"numeric string", "250.75", 250.75},
		{"zero string keeps fallback", "0", 99},
		{"garbage keeps fallback", "abc", 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceCost(tt.in, 99))
		})
	}
}
