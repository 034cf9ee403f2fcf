package dto

import (
	"time"

	"github.com/spec-kit/hospital-directory/internal/domain"
)

// SpecializationCreateRequest payload for POST /specializations.
type SpecializationCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon" validate:"omitempty,max=255"`
}

// SpecializationUpdateRequest payload for PUT /specializations/:id.
type SpecializationUpdateRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Icon        *string `json:"icon" validate:"omitnil,max=255"`
}

// SpecializationView is the public projection of a specialization.
type SpecializationView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewSpecializationView projects spec.
func NewSpecializationView(spec *domain.Specialization) SpecializationView {
	return SpecializationView{
		ID:          spec.ID,
		Name:        spec.Name,
		Description: spec.Description,
		Icon:        spec.Icon,
		CreatedAt:   spec.CreatedAt,
	}
}

// NewSpecializationViews projects a listing.
func NewSpecializationViews(specs []domain.Specialization) []SpecializationView {
	views := make([]SpecializationView, 0, len(specs))
	for i := range specs {
		views = append(views, NewSpecializationView(&specs[i]))
	}
	return views
}
