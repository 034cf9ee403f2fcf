package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hospital-directory/internal/api/dto"
	"github.com/spec-kit/hospital-directory/internal/domain"
	"github.com/spec-kit/hospital-directory/internal/service"
)

// HospitalsHandler exposes hospital endpoints.
type HospitalsHandler struct {
	hospitals *service.HospitalService
	validate  *dto.Validator
}

// NewHospitalsHandler constructs handler.
func NewHospitalsHandler(hospitals *service.HospitalService, validate *dto.Validator) *HospitalsHandler {
	return &HospitalsHandler{hospitals: hospitals, validate: validate}
}

// List handles GET /api/hospitals?specialization=&city=&chain=.
func (h *HospitalsHandler) List(c *fiber.Ctx) error {
	hospitals, err := h.hospitals.List(c.UserContext(), domain.HospitalFilter{
		Specialization: c.Query("specialization"),
		City:           c.Query("city"),
		Chain:          c.Query("chain"),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHospitalViews(hospitals))
}

// Get handles GET /api/hospitals/:id.
func (h *HospitalsHandler) Get(c *fiber.Ctx) error {
	hospital, err := h.hospitals.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHospitalView(hospital))
}

// Create handles POST /api/hospitals.
func (h *HospitalsHandler) Create(c *fiber.Ctx) error {
	var req dto.HospitalCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	hospital, err := h.hospitals.Create(c.UserContext(), actorID(c), service.HospitalInput{
		Name:              req.Name,
		Description:       req.Description,
		Chain:             req.Chain,
		Location:          req.Location.ToDomain(),
		ContactInfo:       req.ContactInfo.ToDomain(),
		SpecializationIDs: req.Specializations,
		Photos:            dto.PhotosToDomain(req.Photos),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewHospitalView(hospital))
}

// Update handles PUT /api/hospitals/:id.
func (h *HospitalsHandler) Update(c *fiber.Ctx) error {
	var req dto.HospitalUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	patch := service.HospitalPatch{
		Name:              req.Name,
		Description:       req.Description,
		Chain:             req.Chain,
		SpecializationIDs: req.Specializations,
	}
	if req.Location != nil {
		loc := req.Location.ToDomain()
		patch.Location = &loc
	}
	if req.ContactInfo != nil {
		contact := req.ContactInfo.ToDomain()
		patch.ContactInfo = &contact
	}
	if req.Photos != nil {
		photos := dto.PhotosToDomain(*req.Photos)
		patch.Photos = &photos
	}

	hospital, err := h.hospitals.Update(c.UserContext(), actorID(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHospitalView(hospital))
}

// Delete handles DELETE /api/hospitals/:id.
func (h *HospitalsHandler) Delete(c *fiber.Ctx) error {
	if err := h.hospitals.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: service.MsgHospitalDeleted})
}
