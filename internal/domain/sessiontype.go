package domain

import "time"

// Modality is the delivery channel of a session
type Modality string

const (
	ModalityOnline   Modality = "online"
	ModalityInPerson Modality = "in_person"
	ModalityPhone    Modality = "phone"
)

// SessionType is a catalog entry describing a bookable session kind
// The catalog is read-only for this service; bookings snapshot duration,
// price and modality at creation so later catalog changes never alter them
type SessionType struct {
	ID              int64
	Name            string
	Description     *string
	DurationMinutes int
	Price           float64
	Modality        Modality
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidModality returns true for a known modality value
func ValidModality(m string) bool {
	switch Modality(m) {
	case ModalityOnline, ModalityInPerson, ModalityPhone:
		return true
	}
	return false
}
