package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StringList decodes either a JSON array of strings or one comma-separated
// string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return errors.New("must be an array of strings or a comma-separated string")
	}
	*l = strings.Split(joined, ",")
	return nil
}

// RegisterTechnicianRequest creates a technician and the credential they
// sign in with.
type RegisterTechnicianRequest struct {
	FirstName    string     `json:"first_name" validate:"required"`
	LastName     string     `json:"last_name" validate:"required"`
	Email        string     `json:"email" validate:"required,email,fleet_email"`
	Password     string     `json:"password" validate:"required,strong_password"`
	Skills       StringList `json:"skills" validate:"required,min=1,dive,skill"`
	Availability StringList `json:"availability" validate:"required,min=1,dive,weekday"`
}

func (r *RegisterTechnicianRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	skills := make(StringList, 0, len(r.Skills))
	for _, s := range r.Skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		for _, known := range models.Skills {
			if strings.EqualFold(s, known) {
				s = known
				break
			}
		}
		skills = append(skills, s)
	}
	r.Skills = skills

	days := make(StringList, 0, len(r.Availability))
	for _, d := range r.Availability {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			days = append(days, d)
		}
	}
	r.Availability = days
}

// RegisterTechnician validates req and stores a technician credential and
// profile.
func (m *Manager) RegisterTechnician(ctx context.Context, req RegisterTechnicianRequest) (*models.Technician, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if _, err := m.credentials.FindCredentialByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, storeErr("find credential", err)
	}

	if m.hasher == nil {
		return nil, storeErr("register technician", errors.New("password hasher not configured"))
	}
	hash, err := m.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, storeErr("hash password", err)
	}

	now := m.now()
	credential := models.Credential{
		ID:           primitive.NewObjectID(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleTechnician,
		CreatedAt:    now,
	}
	technician := models.Technician{
		ID:           primitive.NewObjectID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Skills:       []string(req.Skills),
		Availability: []string(req.Availability),
		CredentialID: &credential.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.credentials.InsertCredential(ctx, credential); err != nil {
			return err
		}
		return m.technicians.InsertTechnician(ctx, technician)
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, storeErr("register technician", err)
	}
	m.log.WithField("technician_id", technician.ID.Hex()).Info("Technician registered")
	return &technician, nil
}

// ListTechnicians returns every technician profile.
func (m *Manager) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	technicians, err := m.technicians.FindTechnicians(ctx, db.TechnicianFilter{})
	if err != nil {
		return nil, storeErr("find technicians", err)
	}
	return technicians, nil
}

// AvailableTechnicians lists technicians available today, skilled for
// serviceType when one is given, with no open unpaid service.
func (m *Manager) AvailableTechnicians(ctx context.Context, serviceType string) ([]models.AvailableTechnician, error) {
	serviceType = strings.TrimSpace(serviceType)
	technicians, err := m.technicians.FindTechnicians(ctx, db.TechnicianFilter{Day: m.today()})
	if err != nil {
		return nil, storeErr("find technicians", err)
	}

	out := []models.AvailableTechnician{}
	for i := range technicians {
		tech := &technicians[i]
		if serviceType != "" && !tech.HasSkill(serviceType) {
			continue
		}
		active, err := m.services.CountServices(ctx, db.ServiceFilter{
			TechnicianID:     &tech.ID,
			NotStatus:        models.StatusCompleted,
			NotPaymentStatus: models.PaymentPaid,
		})
		if err != nil {
			return nil, storeErr("count technician services", err)
		}
		if active == 0 {
			out = append(out, tech.Public())
		}
	}
	return out, nil
}

// checkTechnician runs the technician rules shared by scheduling and
// assignment: existence, skill, availability today, and no other open
// service. exclude is the service being scheduled or assigned.
func (m *Manager) checkTechnician(ctx context.Context, technicianID, serviceType string, exclude primitive.ObjectID) (*models.Technician, error) {
	tech, err := m.technicians.FindTechnicianByID(ctx, technicianID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTechnicianNotFound
		}
		return nil, storeErr("find technician", err)
	}
	if !tech.HasSkill(serviceType) {
		return nil, ErrSkillMismatch
	}
	today := m.today()
	if !tech.AvailableOn(today) {
		return nil, ErrNotAvailableToday.WithMessage(fmt.Sprintf("Technician is not available today (%s)", today))
	}
	busy, err := m.services.CountServices(ctx, db.ServiceFilter{
		TechnicianID: &tech.ID,
		NotStatus:    models.StatusCompleted,
		ExcludeID:    &exclude,
	})
	if err != nil {
		return nil, storeErr("count technician services", err)
	}
	if busy > 0 {
		return nil, ErrTechnicianBusy
	}
	return tech, nil
}
