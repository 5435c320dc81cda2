package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekdays lists valid availability values, lowercase.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Technician is a workshop technician profile.
type Technician struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FirstName    string              `bson:"first_name" json:"first_name"`
	LastName     string              `bson:"last_name" json:"last_name"`
	Email        string              `bson:"email" json:"email"`
	Skills       []string            `bson:"skills" json:"skills"`
	Availability []string            `bson:"availability" json:"availability"`
	CredentialID *primitive.ObjectID `bson:"credential,omitempty" json:"-"`
	IsAssigned   bool                `bson:"is_assigned" json:"is_assigned"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// AvailableTechnician is the public projection returned to schedulers.
type AvailableTechnician struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Skills       []string           `json:"skills"`
	Availability []string           `json:"availability"`
}

// DisplayName joins first and last name.
func (t *Technician) DisplayName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// HasSkill reports whether the technician can perform serviceType.
func (t *Technician) HasSkill(serviceType string) bool {
	for _, s := range t.Skills {
		if strings.EqualFold(s, serviceType) {
			return true
		}
	}
	return false
}

// AvailableOn reports whether day (e.g. "tuesday") is in the technician's availability.
func (t *Technician) AvailableOn(day string) bool {
	for _, d := range t.Availability {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

// Public strips the technician down to the scheduler projection.
func (t *Technician) Public() AvailableTechnician {
	return AvailableTechnician{
		ID:           t.ID,
		Name:         t.DisplayName(),
		Skills:       t.Skills,
		Availability: t.Availability,
	}
}

// IsValidSkill checks skill against the supported service types.
func IsValidSkill(skill string) bool {
	for _, s := range Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// IsValidWeekday checks day against the lowercase weekday names.
func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekdayName returns the lowercase English weekday of t.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
