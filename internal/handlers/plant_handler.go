package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/growmate/growmate-backend/internal/dto"
	"github.com/growmate/growmate-backend/internal/middleware"
	"github.com/growmate/growmate-backend/internal/services"
)

type PlantHandler struct {
	plantService *services.PlantService
	authService  *services.AuthService
	stageService *services.StageService
	statsService *services.StatsService
}

func NewPlantHandler(
	plantService *services.PlantService,
	authService *services.AuthService,
	stageService *services.StageService,
	statsService *services.StatsService,
) *PlantHandler {
	return &PlantHandler{
		plantService: plantService,
		authService:  authService,
		stageService: stageService,
		statsService: statsService,
	}
}

func plantIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(id), err
}

func plantError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPlantNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Plant not found",
		})
	case errors.Is(err, services.ErrPlantAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "You do not have access to this plant",
		})
	case errors.Is(err, services.ErrPlantAlreadyArchived):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Plant is already archived",
		})
	case errors.Is(err, services.ErrInvalidArchiveReason):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Archive reason must be harvested or died",
		})
	case errors.Is(err, services.ErrInvalidStageName):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid growth stage",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}

func (h *PlantHandler) Create(c *fiber.Ctx) error {
	user, err := h.authService.UserByID(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreatePlantRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "name is required",
		})
	}

	plant, err := h.plantService.Create(user, services.CreatePlantInput{
		Name:         req.Name,
		Strain:       req.Strain,
		IsPublic:     req.IsPublic,
		InitialStage: req.InitialStage,
	})
	if err != nil {
		return plantError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(plant)
}

func (h *PlantHandler) List(c *fiber.Ctx) error {
	includeArchived := c.QueryBool("include_archived", false)
	plants, err := h.plantService.List(middleware.UserID(c), includeArchived)
	if err != nil {
		return plantError(c, err)
	}
	return c.JSON(plants)
}

func (h *PlantHandler) Get(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	plant, err := h.plantService.Get(middleware.UserID(c), plantID)
	if err != nil {
		return plantError(c, err)
	}
	return c.JSON(plant)
}

func (h *PlantHandler) Update(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	var req dto.UpdatePlantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	plant, err := h.plantService.Update(middleware.UserID(c), plantID, services.UpdatePlantInput{
		Name:     req.Name,
		Strain:   req.Strain,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		return plantError(c, err)
	}
	return c.JSON(plant)
}

func (h *PlantHandler) Delete(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	if err := h.plantService.Delete(middleware.UserID(c), plantID); err != nil {
		return plantError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Plant deleted"})
}

func (h *PlantHandler) Archive(c *fiber.Ctx) error {
	user, err := h.authService.UserByID(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	var req dto.ArchivePlantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	plant, earned, err := h.plantService.Archive(user, plantID, req.Reason, req.Notes)
	if err != nil {
		return plantError(c, err)
	}

	resp := dto.ArchivePlantResponse{
		ID:            plant.ID,
		ArchiveReason: plant.ArchiveReason,
	}
	for _, a := range earned {
		resp.EarnedAchievements = append(resp.EarnedAchievements, a.Name)
	}
	return c.JSON(resp)
}

// ChangeStage moves a plant to a new growth stage through the web API. The
// Signal 'stage' command is the other entry point to the same transition.
func (h *PlantHandler) ChangeStage(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	var req dto.StageChangeRequest
	if err := c.BodyParser(&req); err != nil || req.Stage == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "stage is required",
		})
	}

	plant, err := h.plantService.Get(middleware.UserID(c), plantID)
	if err != nil {
		return plantError(c, err)
	}
	if plant.OwnerID != middleware.UserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Only the owner can change the stage",
		})
	}

	stage, err := h.stageService.Advance(plant, req.Stage, req.Notes)
	if err != nil {
		return plantError(c, err)
	}
	return c.JSON(stage)
}

func (h *PlantHandler) Statistics(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	plant, err := h.plantService.Get(middleware.UserID(c), plantID)
	if err != nil {
		return plantError(c, err)
	}

	data, err := h.statsService.MeasurementsByPlant(plant.ID, 0)
	if err != nil {
		return plantError(c, err)
	}
	return c.JSON(h.statsService.Aggregate(data))
}

func (h *PlantHandler) SetPermission(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}

	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	perm, err := h.plantService.SetPermission(middleware.UserID(c), plantID, services.PermissionInput{
		UserID:      req.UserID,
		CanEdit:     req.CanEdit,
		CanWater:    req.CanWater,
		CanAddNotes: req.CanAddNotes,
	})
	if err != nil {
		return plantError(c, err)
	}
	return c.JSON(perm)
}

func (h *PlantHandler) RemovePermission(c *fiber.Ctx) error {
	plantID, err := plantIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid plant ID",
		})
	}
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	if err := h.plantService.RemovePermission(middleware.UserID(c), plantID, uint(userID)); err != nil {
		return plantError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Permission removed"})
}
