package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hospital-directory/internal/api/dto"
	"github.com/spec-kit/hospital-directory/internal/service"
)

// SpecializationsHandler exposes specialization endpoints.
type SpecializationsHandler struct {
	specs    *service.SpecializationService
	validate *dto.Validator
}

// NewSpecializationsHandler constructs handler.
func NewSpecializationsHandler(specs *service.SpecializationService, validate *dto.Validator) *SpecializationsHandler {
	return &SpecializationsHandler{specs: specs, validate: validate}
}

// List handles GET /api/specializations.
func (h *SpecializationsHandler) List(c *fiber.Ctx) error {
	specs, err := h.specs.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSpecializationViews(specs))
}

// Get handles GET /api/specializations/:id.
func (h *SpecializationsHandler) Get(c *fiber.Ctx) error {
	spec, err := h.specs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSpecializationView(spec))
}

// Create handles POST /api/specializations.
func (h *SpecializationsHandler) Create(c *fiber.Ctx) error {
	var req dto.SpecializationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	spec, err := h.specs.Create(c.UserContext(), actorID(c), service.SpecializationInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewSpecializationView(spec))
}

// Update handles PUT /api/specializations/:id.
func (h *SpecializationsHandler) Update(c *fiber.Ctx) error {
	var req dto.SpecializationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	spec, err := h.specs.Update(c.UserContext(), actorID(c), c.Params("id"), service.SpecializationPatch{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSpecializationView(spec))
}

// Delete handles DELETE /api/specializations/:id.
func (h *SpecializationsHandler) Delete(c *fiber.Ctx) error {
	if err := h.specs.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: service.MsgSpecializationDeleted})
}
