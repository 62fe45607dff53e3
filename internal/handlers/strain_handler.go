package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/growmate/growmate-backend/internal/dto"
	"github.com/growmate/growmate-backend/internal/middleware"
	"github.com/growmate/growmate-backend/internal/models"
	"github.com/growmate/growmate-backend/internal/services"
)

type StrainHandler struct {
	strainService *services.StrainService
}

func NewStrainHandler(strainService *services.StrainService) *StrainHandler {
	return &StrainHandler{strainService: strainService}
}

func strainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrStrainNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Strain not found",
		})
	case errors.Is(err, services.ErrInvalidRating):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Rating must be between 1 and 5",
		})
	case errors.Is(err, services.ErrNotEligible):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "You must have grown this strain first",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}

func (h *StrainHandler) List(c *fiber.Ctx) error {
	strains, err := h.strainService.List()
	if err != nil {
		return strainError(c, err)
	}
	return c.JSON(strains)
}

func (h *StrainHandler) Get(c *fiber.Ctx) error {
	strain, err := h.strainService.ByName(c.Params("name"))
	if err != nil {
		return strainError(c, err)
	}
	return c.JSON(strain)
}

// Create adds a strain to the catalog. Admin only; the route wiring enforces
// that.
func (h *StrainHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStrainRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "name is required",
		})
	}

	strain := &models.Strain{
		Name:              req.Name,
		Type:              req.Type,
		Description:       req.Description,
		FloweringTime:     req.FloweringTime,
		Difficulty:        req.Difficulty,
		IdealTempLow:      req.IdealTempLow,
		IdealTempHigh:     req.IdealTempHigh,
		IdealHumidityLow:  req.IdealHumidityLow,
		IdealHumidityHigh: req.IdealHumidityHigh,
		HeightLow:         req.HeightLow,
		HeightHigh:        req.HeightHigh,
	}
	if err := h.strainService.Create(strain); err != nil {
		return strainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(strain)
}

func (h *StrainHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateStrainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	strain, err := h.strainService.Rate(middleware.UserID(c), c.Params("name"), req.Rating, req.Review)
	if err != nil {
		return strainError(c, err)
	}
	return c.JSON(strain)
}

func (h *StrainHandler) Tips(c *fiber.Ctx) error {
	strain, err := h.strainService.ByName(c.Params("name"))
	if err != nil {
		return strainError(c, err)
	}

	tips, err := h.strainService.Tips(strain.ID, c.Query("stage"), 20)
	if err != nil {
		return strainError(c, err)
	}
	return c.JSON(tips)
}
