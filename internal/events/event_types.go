package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventHospitalCreated       EventType = "hospital_created"
	EventHospitalUpdated       EventType = "hospital_updated"
	EventHospitalDeleted       EventType = "hospital_deleted"
	EventSpecializationCreated EventType = "specialization_created"
	EventSpecializationUpdated EventType = "specialization_updated"
	EventSpecializationDeleted EventType = "specialization_deleted"
	EventUserRegistered        EventType = "user_registered"
)

// HospitalEvents lists every hospital mutation.
var HospitalEvents = []EventType{EventHospitalCreated, EventHospitalUpdated, EventHospitalDeleted}

// SpecializationEvents lists every specialization mutation.
var SpecializationEvents = []EventType{EventSpecializationCreated, EventSpecializationUpdated, EventSpecializationDeleted}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	ActorID    string      `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, resourceID, actorID string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// HospitalPayload describes the hospital a mutation touched.
type HospitalPayload struct {
	Name  string `json:"name"`
	Chain string `json:"chain,omitempty"`
	City  string `json:"city,omitempty"`
}

// SpecializationPayload describes the specialization a mutation touched.
type SpecializationPayload struct {
	Name string `json:"name"`
}

// UserRegisteredPayload describes a new account.
type UserRegisteredPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
