// Package maintenance implements the fleet maintenance workflow: odometer
// readings that open work orders, technician matching and assignment,
// and payment recording that moves finished work into history.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// PasswordHasher hashes technician passwords at registration.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// Manager runs every maintenance operation against a db.Store.
type Manager struct {
	vehicles    db.VehicleCollection
	services    db.ServiceCollection
	technicians db.TechnicianCollection
	credentials db.CredentialCollection
	histories   db.HistoryCollection
	tx          db.Transactor

	hasher    PasswordHasher
	publisher events.Publisher
	log       *logrus.Entry
	now       func() time.Time
	loc       *time.Location
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLocation sets the business time zone used to decide today's weekday.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithHasher sets the password hasher used by RegisterTechnician.
func WithHasher(h PasswordHasher) Option {
	return func(m *Manager) { m.hasher = h }
}

// NewManager builds a Manager over store.
func NewManager(store *db.Store, opts ...Option) *Manager {
	m := &Manager{
		vehicles:    store.Vehicles,
		services:    store.Services,
		technicians: store.Technicians,
		credentials: store.Credentials,
		histories:   store.Histories,
		tx:          store.Tx,
		publisher:   events.NopPublisher{},
		log:         logrus.NewEntry(logrus.StandardLogger()),
		now:         time.Now,
		loc:         time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// today returns the lowercase weekday name in the business time zone.
func (m *Manager) today() string {
	return models.WeekdayName(m.now().In(m.loc))
}

// publish sends an event and logs, rather than returns, delivery failures.
func (m *Manager) publish(ctx context.Context, event events.Event) {
	event.At = m.now()
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.log.WithError(err).WithField("event", event.Type).Warn("Failed to publish event")
	}
}

// storeErr wraps a storage failure as an internal error.
func storeErr(op string, err error) error {
	return apperr.Internal("Internal server error", fmt.Errorf("%s: %w", op, err))
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID)
}

func ptr[T any](v T) *T { return &v }
