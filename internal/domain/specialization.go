package domain

import "time"

// DefaultSpecializationIcon is used when a specialization is created without an icon.
const DefaultSpecializationIcon = "default-icon.png"

// Specialization is a medical field offered by hospitals. Name is unique.
type Specialization struct {
	ID          string
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
}
