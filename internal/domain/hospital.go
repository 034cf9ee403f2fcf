package domain

import "time"

// Coordinates locate a hospital on the map.
type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Location is the postal address of a hospital.
type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ContactInfo holds the public contact channels of a hospital.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website,omitempty"`
}

// Photo is an image shown on the hospital page.
type Photo struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// SpecializationRef is a resolved reference from a hospital to a specialization.
type SpecializationRef struct {
	ID   string
	Name string
}

// Hospital is a directory entry. SpecializationIDs is the write-side set of
// references; Specializations is filled by the store with the references that
// still resolve.
type Hospital struct {
	ID                string
	Name              string
	Description       string
	Chain             string
	Location          Location
	ContactInfo       ContactInfo
	SpecializationIDs []string
	Specializations   []SpecializationRef
	Photos            []Photo
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SpecializationNames lists the names of the resolved specializations.
func (h *Hospital) SpecializationNames() []string {
	names := make([]string, 0, len(h.Specializations))
	for _, ref := range h.Specializations {
		names = append(names, ref.Name)
	}
	return names
}

// HospitalFilter narrows hospital listings. Empty fields are ignored.
type HospitalFilter struct {
	Specialization string
	City           string
	Chain          string
}
