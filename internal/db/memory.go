package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryData is the in-process backing store used by STORE_BACKEND=memory
// and by tests. Records are kept in insertion order and copied on the way in
// and out, so callers never share memory with the store.
type memoryData struct {
	mu          sync.RWMutex
	vehicles    []models.Vehicle
	services    []models.Service
	technicians []models.Technician
	credentials []models.Credential
	histories   []models.History
	revoked     map[string]time.Time

	// txMu serialises transactions.
	txMu sync.Mutex
	now  func() time.Time
}

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() *Store {
	m := &memoryData{revoked: map[string]time.Time{}, now: time.Now}
	return &Store{
		Vehicles:    &memoryVehicles{m},
		Services:    &memoryServices{m},
		Technicians: &memoryTechnicians{m},
		Credentials: &memoryCredentials{m},
		Histories:   &memoryHistories{m},
		Revoked:     &memoryRevoked{m},
		Tx:          &memoryTransactor{m},
	}
}

type memoryVehicles struct{ m *memoryData }

func (c *memoryVehicles) InsertVehicle(_ context.Context, vehicle models.Vehicle) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for _, v := range c.m.vehicles {
		if v.VIN == vehicle.VIN {
			return fmt.Errorf("%w: vin %s", ErrDuplicate, vehicle.VIN)
		}
	}
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	c.m.vehicles = append(c.m.vehicles, cloneVehicle(vehicle))
	return nil
}

func (c *memoryVehicles) FindVehicles(_ context.Context) ([]models.Vehicle, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(c.m.vehicles))
	for _, v := range c.m.vehicles {
		out = append(out, cloneVehicle(v))
	}
	return out, nil
}

func (c *memoryVehicles) FindVehicleByVIN(_ context.Context, vin string) (*models.Vehicle, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, v := range c.m.vehicles {
		if v.VIN == vin {
			out := cloneVehicle(v)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryVehicles) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, v := range c.m.vehicles {
		if v.ID == oid {
			out := cloneVehicle(v)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryVehicles) UpdateVehicle(_ context.Context, vehicle models.Vehicle) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for i, v := range c.m.vehicles {
		if v.ID == vehicle.ID {
			vehicle.UpdatedAt = c.m.now()
			c.m.vehicles[i] = cloneVehicle(vehicle)
			return nil
		}
	}
	return ErrNotFound
}

func (c *memoryVehicles) CountVehicles(_ context.Context) (int64, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	return int64(len(c.m.vehicles)), nil
}

type memoryServices struct{ m *memoryData }

func (c *memoryServices) InsertService(_ context.Context, service models.Service) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	for _, s := range c.m.services {
		if s.ID == service.ID {
			return fmt.Errorf("%w: service %s", ErrDuplicate, service.ID.Hex())
		}
	}
	c.m.services = append(c.m.services, cloneService(service))
	return nil
}

func (c *memoryServices) FindServiceByID(_ context.Context, id string) (*models.Service, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, s := range c.m.services {
		if s.ID == oid {
			out := cloneService(s)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryServices) FindOneService(_ context.Context, filter ServiceFilter) (*models.Service, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	var found *models.Service
	for i := range c.m.services {
		s := &c.m.services[i]
		if !filter.Matches(s) {
			continue
		}
		// Later inserts win ties, matching a descending created_at sort.
		if found == nil || !s.CreatedAt.Before(found.CreatedAt) {
			found = s
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	out := cloneService(*found)
	return &out, nil
}

func (c *memoryServices) FindServices(_ context.Context, filter ServiceFilter) ([]models.Service, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	out := []models.Service{}
	for i := range c.m.services {
		if filter.Matches(&c.m.services[i]) {
			out = append(out, cloneService(c.m.services[i]))
		}
	}
	return out, nil
}

func (c *memoryServices) UpdateService(_ context.Context, service models.Service) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for i, s := range c.m.services {
		if s.ID == service.ID {
			service.UpdatedAt = c.m.now()
			c.m.services[i] = cloneService(service)
			return nil
		}
	}
	return ErrNotFound
}

func (c *memoryServices) CountServices(_ context.Context, filter ServiceFilter) (int64, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	var n int64
	for i := range c.m.services {
		if filter.Matches(&c.m.services[i]) {
			n++
		}
	}
	return n, nil
}

func (c *memoryServices) DistinctTechnicianIDs(_ context.Context, filter ServiceFilter) ([]primitive.ObjectID, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for i := range c.m.services {
		s := &c.m.services[i]
		if s.TechnicianID == nil || !filter.Matches(s) || seen[*s.TechnicianID] {
			continue
		}
		seen[*s.TechnicianID] = true
		ids = append(ids, *s.TechnicianID)
	}
	return ids, nil
}

type memoryTechnicians struct{ m *memoryData }

func (c *memoryTechnicians) InsertTechnician(_ context.Context, technician models.Technician) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for _, t := range c.m.technicians {
		if strings.EqualFold(t.Email, technician.Email) {
			return fmt.Errorf("%w: email %s", ErrDuplicate, technician.Email)
		}
	}
	if technician.ID.IsZero() {
		technician.ID = primitive.NewObjectID()
	}
	c.m.technicians = append(c.m.technicians, cloneTechnician(technician))
	return nil
}

func (c *memoryTechnicians) FindTechnicianByID(_ context.Context, id string) (*models.Technician, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.find(func(t *models.Technician) bool { return t.ID == oid })
}

func (c *memoryTechnicians) FindTechnicianByCredential(_ context.Context, credentialID primitive.ObjectID) (*models.Technician, error) {
	return c.find(func(t *models.Technician) bool {
		return t.CredentialID != nil && *t.CredentialID == credentialID
	})
}

func (c *memoryTechnicians) find(match func(*models.Technician) bool) (*models.Technician, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for i := range c.m.technicians {
		if match(&c.m.technicians[i]) {
			out := cloneTechnician(c.m.technicians[i])
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryTechnicians) FindTechnicians(_ context.Context, filter TechnicianFilter) ([]models.Technician, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	out := []models.Technician{}
	for i := range c.m.technicians {
		if filter.Matches(&c.m.technicians[i]) {
			out = append(out, cloneTechnician(c.m.technicians[i]))
		}
	}
	return out, nil
}

func (c *memoryTechnicians) SetTechnicianAssigned(_ context.Context, id primitive.ObjectID, assigned bool) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for i := range c.m.technicians {
		if c.m.technicians[i].ID == id {
			c.m.technicians[i].IsAssigned = assigned
			c.m.technicians[i].UpdatedAt = c.m.now()
			return nil
		}
	}
	return ErrNotFound
}

func (c *memoryTechnicians) CountTechnicians(_ context.Context) (int64, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	return int64(len(c.m.technicians)), nil
}

type memoryCredentials struct{ m *memoryData }

func (c *memoryCredentials) InsertCredential(_ context.Context, credential models.Credential) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	credential.Email = strings.ToLower(credential.Email)
	for _, cr := range c.m.credentials {
		if cr.Email == credential.Email {
			return fmt.Errorf("%w: email %s", ErrDuplicate, credential.Email)
		}
	}
	if credential.ID.IsZero() {
		credential.ID = primitive.NewObjectID()
	}
	c.m.credentials = append(c.m.credentials, credential)
	return nil
}

func (c *memoryCredentials) FindCredentialByID(_ context.Context, id string) (*models.Credential, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, cr := range c.m.credentials {
		if cr.ID == oid {
			out := cr
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCredentials) FindCredentialByEmail(_ context.Context, email string) (*models.Credential, error) {
	email = strings.ToLower(email)
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, cr := range c.m.credentials {
		if cr.Email == email {
			out := cr
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

type memoryHistories struct{ m *memoryData }

func (c *memoryHistories) InsertHistory(_ context.Context, history models.History) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for _, h := range c.m.histories {
		if h.ServiceID == history.ServiceID {
			return fmt.Errorf("%w: history for service %s", ErrDuplicate, history.ServiceID.Hex())
		}
	}
	if history.ID.IsZero() {
		history.ID = primitive.NewObjectID()
	}
	c.m.histories = append(c.m.histories, cloneHistory(history))
	return nil
}

func (c *memoryHistories) FindHistories(_ context.Context) ([]models.History, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	out := make([]models.History, 0, len(c.m.histories))
	for _, h := range c.m.histories {
		out = append(out, cloneHistory(h))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *memoryHistories) FindHistoryByServiceID(_ context.Context, serviceID primitive.ObjectID) (*models.History, error) {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	for _, h := range c.m.histories {
		if h.ServiceID == serviceID {
			out := cloneHistory(h)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

type memoryRevoked struct{ m *memoryData }

func (c *memoryRevoked) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if _, ok := c.m.revoked[jti]; !ok {
		c.m.revoked[jti] = expiresAt
	}
	return nil
}

func (c *memoryRevoked) IsRevoked(_ context.Context, jti string) (bool, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	exp, ok := c.m.revoked[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(c.m.now()) {
		delete(c.m.revoked, jti)
		return false, nil
	}
	return true, nil
}

// memoryTransactor snapshots the store before fn and restores it when fn
// fails. Writes made outside the transaction while it runs are lost on
// rollback.
type memoryTransactor struct{ m *memoryData }

func (t *memoryTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.m.txMu.Lock()
	defer t.m.txMu.Unlock()

	snap := t.m.snapshot()
	if err := fn(ctx); err != nil {
		t.m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	vehicles    []models.Vehicle
	services    []models.Service
	technicians []models.Technician
	credentials []models.Credential
	histories   []models.History
}

func (m *memoryData) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := memorySnapshot{
		vehicles:    make([]models.Vehicle, 0, len(m.vehicles)),
		services:    make([]models.Service, 0, len(m.services)),
		technicians: make([]models.Technician, 0, len(m.technicians)),
		credentials: append([]models.Credential(nil), m.credentials...),
		histories:   make([]models.History, 0, len(m.histories)),
	}
	for _, v := range m.vehicles {
		snap.vehicles = append(snap.vehicles, cloneVehicle(v))
	}
	for _, s := range m.services {
		snap.services = append(snap.services, cloneService(s))
	}
	for _, t := range m.technicians {
		snap.technicians = append(snap.technicians, cloneTechnician(t))
	}
	for _, h := range m.histories {
		snap.histories = append(snap.histories, cloneHistory(h))
	}
	return snap
}

func (m *memoryData) restore(snap memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles = snap.vehicles
	m.services = snap.services
	m.technicians = snap.technicians
	m.credentials = snap.credentials
	m.histories = snap.histories
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneID(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneVehicle(v models.Vehicle) models.Vehicle {
	v.LastServiceDate = cloneTime(v.LastServiceDate)
	if v.NextServiceMileage != nil {
		m := *v.NextServiceMileage
		v.NextServiceMileage = &m
	}
	v.OdometerReadings = append([]models.OdometerReading(nil), v.OdometerReadings...)
	details := make([]models.ServiceDetail, len(v.ServiceDetails))
	for i, d := range v.ServiceDetails {
		d.TechnicianID = cloneID(d.TechnicianID)
		details[i] = d
	}
	v.ServiceDetails = details
	return v
}

func cloneService(s models.Service) models.Service {
	s.DueServiceDate = cloneTime(s.DueServiceDate)
	s.TechnicianID = cloneID(s.TechnicianID)
	if s.TechnicianName != nil {
		n := *s.TechnicianName
		s.TechnicianName = &n
	}
	s.AssignmentDate = cloneTime(s.AssignmentDate)
	s.CompletedOn = cloneTime(s.CompletedOn)
	s.TechnicianCompletedOn = cloneTime(s.TechnicianCompletedOn)
	s.Payment.HistoryID = cloneID(s.Payment.HistoryID)
	return s
}

func cloneTechnician(t models.Technician) models.Technician {
	t.Skills = append([]string(nil), t.Skills...)
	t.Availability = append([]string(nil), t.Availability...)
	t.CredentialID = cloneID(t.CredentialID)
	return t
}

func cloneHistory(h models.History) models.History {
	h.TechnicianID = cloneID(h.TechnicianID)
	h.DueServiceDate = cloneTime(h.DueServiceDate)
	return h
}
