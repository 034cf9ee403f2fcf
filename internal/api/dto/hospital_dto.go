package dto

import (
	"time"

	"github.com/spec-kit/hospital-directory/internal/domain"
)

// CoordinatesDTO is an optional map position.
type CoordinatesDTO struct {
	Latitude  *float64 `json:"latitude" validate:"omitnil,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitnil,gte=-180,lte=180"`
}

// LocationDTO is the postal address of a hospital.
type LocationDTO struct {
	Address     string          `json:"address" validate:"required"`
	City        string          `json:"city" validate:"required"`
	State       string          `json:"state" validate:"required"`
	Coordinates *CoordinatesDTO `json:"coordinates" validate:"omitnil"`
}

// ContactInfoDTO holds the public contact channels.
type ContactInfoDTO struct {
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Website string `json:"website" validate:"omitempty,url"`
}

// PhotoDTO is one hospital image.
type PhotoDTO struct {
	URL     string `json:"url" validate:"required"`
	Caption string `json:"caption" validate:"omitempty,max=200"`
}

// HospitalCreateRequest payload for POST /hospitals.
type HospitalCreateRequest struct {
	Name            string         `json:"name" validate:"required,max=200"`
	Description     string         `json:"description" validate:"required"`
	Chain           string         `json:"chain" validate:"required,max=200"`
	Location        LocationDTO    `json:"location"`
	ContactInfo     ContactInfoDTO `json:"contactInfo"`
	Specializations []string       `json:"specializations" validate:"omitempty,dive,required"`
	Photos          []PhotoDTO     `json:"photos" validate:"omitempty,dive"`
}

// HospitalUpdateRequest payload for PUT /hospitals/:id. Absent fields keep
// their stored value.
type HospitalUpdateRequest struct {
	Name            *string         `json:"name" validate:"omitnil,min=1,max=200"`
	Description     *string         `json:"description" validate:"omitnil,min=1"`
	Chain           *string         `json:"chain" validate:"omitnil,min=1,max=200"`
	Location        *LocationDTO    `json:"location" validate:"omitnil"`
	ContactInfo     *ContactInfoDTO `json:"contactInfo" validate:"omitnil"`
	Specializations *[]string       `json:"specializations" validate:"omitnil,dive,required"`
	Photos          *[]PhotoDTO     `json:"photos" validate:"omitnil,dive"`
}

// ToDomain converts the DTO.
func (l LocationDTO) ToDomain() domain.Location {
	loc := domain.Location{Address: l.Address, City: l.City, State: l.State}
	if l.Coordinates != nil {
		loc.Coordinates = &domain.Coordinates{Latitude: l.Coordinates.Latitude, Longitude: l.Coordinates.Longitude}
	}
	return loc
}

// ToDomain converts the DTO.
func (c ContactInfoDTO) ToDomain() domain.ContactInfo {
	return domain.ContactInfo{Phone: c.Phone, Email: c.Email, Website: c.Website}
}

// PhotosToDomain converts photo DTOs.
func PhotosToDomain(photos []PhotoDTO) []domain.Photo {
	out := make([]domain.Photo, 0, len(photos))
	for _, p := range photos {
		out = append(out, domain.Photo{URL: p.URL, Caption: p.Caption})
	}
	return out
}

// HospitalView is the public projection of a hospital. Specializations are
// resolved names, never raw ids.
type HospitalView struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Chain           string             `json:"chain"`
	ContactInfo     domain.ContactInfo `json:"contactInfo"`
	Specializations []string           `json:"specializations"`
	Photos          []domain.Photo     `json:"photos"`
	Location        domain.Location    `json:"location"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewHospitalView projects hospital.
func NewHospitalView(h *domain.Hospital) HospitalView {
	photos := h.Photos
	if photos == nil {
		photos = []domain.Photo{}
	}
	return HospitalView{
		ID:              h.ID,
		Name:            h.Name,
		Description:     h.Description,
		Chain:           h.Chain,
		ContactInfo:     h.ContactInfo,
		Specializations: h.SpecializationNames(),
		Photos:          photos,
		Location:        h.Location,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

// NewHospitalViews projects a listing.
func NewHospitalViews(hospitals []domain.Hospital) []HospitalView {
	views := make([]HospitalView, 0, len(hospitals))
	for i := range hospitals {
		views = append(views, NewHospitalView(&hospitals[i]))
	}
	return views
}
