package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/linkbadge/linkbadge-backend/internal/dto"
	"github.com/linkbadge/linkbadge-backend/internal/metrics"
	"github.com/linkbadge/linkbadge-backend/internal/models"
	"github.com/linkbadge/linkbadge-backend/internal/scope"
	"github.com/linkbadge/linkbadge-backend/internal/services"
)

type QrSettingsHandler struct {
	qrService *services.QrSettingsService
}

func NewQrSettingsHandler(qrService *services.QrSettingsService) *QrSettingsHandler {
	return &QrSettingsHandler{qrService: qrService}
}

func (h *QrSettingsHandler) Get(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	q, err := h.qrService.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrQrSettingsNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "QR settings not found", Type: dto.ErrTypeNotFound,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load QR settings",
		})
	}

	return c.JSON(qrSettingsResponse(q))
}

func (h *QrSettingsHandler) Create(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateQrSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	q, err := h.qrService.Create(userID, &req)
	metrics.ObserveWrite("qr_settings", "create", err)
	if err != nil {
		if errors.Is(err, services.ErrQrSettingsExist) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "QR settings already exist", Type: dto.ErrTypeAlreadyExists,
			})
		}
		if errors.Is(err, services.ErrInvalidLayout) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(), Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create QR settings",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(qrSettingsResponse(q))
}

func (h *QrSettingsHandler) Update(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateQrSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	q, err := h.qrService.Update(userID, &req)
	metrics.ObserveWrite("qr_settings", "update", err)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLayout) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(), Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update QR settings",
		})
	}

	return c.JSON(qrSettingsResponse(q))
}

func qrSettingsResponse(q *models.QrSettings) dto.QrSettingsResponse {
	return dto.QrSettingsResponse{
		UserID:          q.UserID.String(),
		BackgroundColor: q.BackgroundColor,
		ForegroundColor: q.ForegroundColor,
		TextColor:       q.TextColor,
		CardColor:       q.CardColor,
		PageColor:       q.PageColor,
		FieldVisibility: models.DecodeVisibility(q.FieldVisibility),
		Layout:          q.Layout,
		Size:            q.Size,
		Padding:         q.Padding,
		CornerRadius:    q.CornerRadius,
		FontScale:       q.FontScale,
	}
}
