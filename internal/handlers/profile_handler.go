package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/linkbadge/linkbadge-backend/internal/dto"
	"github.com/linkbadge/linkbadge-backend/internal/metrics"
	"github.com/linkbadge/linkbadge-backend/internal/models"
	"github.com/linkbadge/linkbadge-backend/internal/scope"
	"github.com/linkbadge/linkbadge-backend/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	authService    *services.AuthService
	fileService    *services.FileService
}

func NewProfileHandler(profileService *services.ProfileService, authService *services.AuthService, fileService *services.FileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
		fileService:    fileService,
	}
}

// Get handles GET /profile. A missing document is a typed 404 so clients
// can run their default-and-create recovery.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	p, err := h.profileService.Get(userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Profile not found", Type: dto.ErrTypeNotFound,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load profile",
		})
	}

	return c.JSON(h.profileResponse(p))
}

// Create handles POST /profile - create-with-id; the document id is the
// user id, so a duplicate create is a typed 409 clients treat as non-fatal.
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	p, err := h.profileService.Create(userID, &req)
	metrics.ObserveWrite("profile", "create", err)
	if err != nil {
		if errors.Is(err, services.ErrProfileExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Profile already exists", Type: dto.ErrTypeAlreadyExists,
			})
		}
		if errors.Is(err, services.ErrNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(), Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create profile",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(h.profileResponse(p))
}

// Update handles PUT /profile - partial update with create-on-miss.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	p, err := h.profileService.Update(userID, &req)
	metrics.ObserveWrite("profile", "update", err)
	if err != nil {
		if errors.Is(err, services.ErrNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(), Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}

	return c.JSON(h.profileResponse(p))
}

// VCard handles GET /profile/vcard - the shareable identity card as
// text/vcard, the payload a QR renderer encodes.
func (h *ProfileHandler) VCard(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.Me(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found", Type: dto.ErrTypeNotFound,
		})
	}

	card, err := h.profileService.VCard(userID, user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to render vCard",
		})
	}

	c.Set(fiber.HeaderContentType, "text/vcard; charset=utf-8")
	return c.SendString(card)
}

func (h *ProfileHandler) profileResponse(p *models.Profile) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		UserID:       p.UserID.String(),
		Name:         p.Name,
		Title:        p.Title,
		Company:      p.Company,
		Email:        p.Email,
		Phone:        p.Phone,
		Socials:      models.DecodeSocials(p.Socials),
		AvatarFileID: p.AvatarFileID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.AvatarFileID != nil {
		if id, err := uuid.Parse(*p.AvatarFileID); err == nil {
			resp.AvatarURL = h.fileService.PreviewURL(id, services.PreviewOptions{
				Width: 256, Height: 256, Gravity: "center", Quality: 85,
			})
		}
	}
	return resp
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized", Type: dto.ErrTypeUnauthorized,
	})
}
