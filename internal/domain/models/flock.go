package models

import "time"

// FlockType is the production purpose of a flock.
type FlockType string

const (
	FlockLayers   FlockType = "layers"
	FlockBroilers FlockType = "broilers"
)

// Label returns the Spanish display name used in the dashboard.
func (t FlockType) Label() string {
	if t == FlockLayers {
		return "Postura"
	}
	return "Engorda"
}

// FlockStatus is the lifecycle state of a flock.
type FlockStatus string

const (
	FlockActive    FlockStatus = "active"
	FlockCompleted FlockStatus = "completed"
	FlockClosed    FlockStatus = "closed"
)

// Label returns the Spanish display name used in the dashboard.
func (s FlockStatus) Label() string {
	switch s {
	case FlockActive:
		return "Activa"
	case FlockCompleted:
		return "Completada"
	default:
		return "Cerrada"
	}
}

// Flock is an operational batch of birds (flocks table).
type Flock struct {
	ID              string      `json:"id"`
	FlockNumber     string      `json:"flock_number"`
	FlockType       FlockType   `json:"flock_type"`
	Breed           string      `json:"breed"`
	EntryDate       Date        `json:"entry_date"`
	InitialQuantity int         `json:"initial_quantity"`
	CurrentQuantity int         `json:"current_quantity"`
	BirthDate       *Date       `json:"birth_date"`
	ExpectedEndDate *Date       `json:"expected_end_date"`
	Status          FlockStatus `json:"status"`
	Notes           *string     `json:"notes"`
	CreatedBy       *string     `json:"created_by,omitempty"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

// Default values offered by an empty flock form.
const (
	DefaultBreed     = "Ross 308"
	DefaultFlockType = FlockLayers
)

// FlockInput is the create/edit form payload.
type FlockInput struct {
	FlockNumber     string    `json:"flock_number" validate:"required"`
	FlockType       FlockType `json:"flock_type" validate:"required,oneof=layers broilers"`
	Breed           string    `json:"breed" validate:"required"`
	EntryDate       string    `json:"entry_date" validate:"required,datetime=2006-01-02"`
	InitialQuantity int       `json:"initial_quantity" validate:"min=1"`
	BirthDate       string    `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedEndDate string    `json:"expected_end_date" validate:"omitempty,datetime=2006-01-02"`
	Notes           string    `json:"notes"`
}

// DefaultFlockInput returns the values an empty form starts with.
func DefaultFlockInput() FlockInput {
	return FlockInput{Breed: DefaultBreed, FlockType: DefaultFlockType}
}

// FlockWrite is the row payload sent on insert and update. A nil
// CurrentQuantity leaves the stored column untouched.
type FlockWrite struct {
	FlockNumber     string    `json:"flock_number"`
	FlockType       FlockType `json:"flock_type"`
	Breed           string    `json:"breed"`
	EntryDate       string    `json:"entry_date"`
	InitialQuantity int       `json:"initial_quantity"`
	CurrentQuantity *int      `json:"current_quantity,omitempty"`
	BirthDate       *string   `json:"birth_date"`
	ExpectedEndDate *string   `json:"expected_end_date"`
	Notes           *string   `json:"notes"`
}

// FlockView is a flock card as rendered by the flock list.
type FlockView struct {
	Flock
	TypeLabel        string `json:"type_label"`
	StatusLabel      string `json:"status_label"`
	EntryDateDisplay string `json:"entry_date_display"`
}

// NewFlockView decorates a flock with its display labels.
func NewFlockView(f Flock) FlockView {
	return FlockView{
		Flock:            f,
		TypeLabel:        f.FlockType.Label(),
		StatusLabel:      f.Status.Label(),
		EntryDateDisplay: f.EntryDate.Display(),
	}
}
