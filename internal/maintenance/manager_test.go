package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// tuesday is 2025-10-28 10:00 UTC.
var tuesday = time.Date(2025, time.October, 28, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "hashed:" + p, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	m     *Manager
	store *db.Store
	clock *testClock
	pub   *recordingPublisher
	hook  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	clock := &testClock{t: tuesday}
	pub := &recordingPublisher{}
	store := db.NewMemoryStore()
	m := NewManager(store,
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithPublisher(pub),
		WithLogger(logrus.NewEntry(logger)),
		WithHasher(plainHasher{}),
	)
	return &fixture{m: m, store: store, clock: clock, pub: pub, hook: hook}
}

func (f *fixture) vehicle(t *testing.T, vin string, vehicleType models.VehicleType) *models.Vehicle {
	t.Helper()
	v, err := f.m.CreateVehicle(context.Background(), CreateVehicleRequest{
		VIN: vin, Type: string(vehicleType), Make: "Toyota", Model: "Hilux", Year: 2022,
	})
	require.NoError(t, err)
	return v
}

// dueService registers a vehicle and records a first reading, which opens
// an Unassigned service.
func (f *fixture) dueService(t *testing.T, vin, serviceType string) *models.Service {
	t.Helper()
	f.vehicle(t, vin, models.VehicleCar)
	res, err := f.m.AddReading(context.Background(), vin, 1000, serviceType)
	require.NoError(t, err)
	require.NotNil(t, res.ServiceID)
	s, err := f.store.Services.FindServiceByID(context.Background(), res.ServiceID.Hex())
	require.NoError(t, err)
	return s
}

func (f *fixture) technician(t *testing.T, email string, skills []string, days ...string) *models.Technician {
	t.Helper()
	tech, err := f.m.RegisterTechnician(context.Background(), RegisterTechnicianRequest{
		FirstName:    "Ravi",
		LastName:     "Kumar",
		Email:        email,
		Password:     "Passw0rd!",
		Skills:       skills,
		Availability: days,
	})
	require.NoError(t, err)
	return tech
}

func identityOf(tech *models.Technician) *models.Identity {
	return &models.Identity{ID: tech.ID, CredentialID: *tech.CredentialID, Role: models.RoleTechnician}
}

func adminIdentity() *models.Identity {
	return &models.Identity{Role: models.RoleAdmin}
}

func appErrOf(t *testing.T, err error) *apperr.Error {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e), "expected *apperr.Error, got %v", err)
	return e
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(db.NewMemoryStore(), WithPublisher(nil), WithLogger(nil), WithLocation(nil))
	assert.IsType(t, events.NopPublisher{}, m.publisher)
	assert.NotNil(t, m.log)
	assert.Equal(t, time.Local, m.loc)
}

func TestManager_TodayUsesBusinessLocation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "tuesday", f.m.today())

	// 23:30 UTC Tuesday is already Wednesday in Kolkata.
	kolkata := time.FixedZone("IST", 5*3600+1800)
	f.clock.Set(time.Date(2025, time.October, 28, 23, 30, 0, 0, time.UTC))
	m := NewManager(f.store, WithClock(f.clock.Now), WithLocation(kolkata))
	assert.Equal(t, "wednesday", m.today())
}

func TestManager_PublishFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.vehicle(t, "VIN-PUB", models.VehicleCar)

	_, err := f.m.AddReading(context.Background(), "VIN-PUB", 500, models.ServiceOilChange)
	require.NoError(t, err, "publish failures must not fail the operation")

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Failed to publish event" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestStoreErr(t *testing.T) {
	cause := errors.New("socket closed")
	err := storeErr("find vehicle", cause)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "find vehicle")
}
