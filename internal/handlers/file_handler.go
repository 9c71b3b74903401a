package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/linkbadge/linkbadge-backend/internal/dto"
	"github.com/linkbadge/linkbadge-backend/internal/metrics"
	"github.com/linkbadge/linkbadge-backend/internal/scope"
	"github.com/linkbadge/linkbadge-backend/internal/services"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /files - multipart image upload. Type and size are
// validated before any bytes hit disk.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "File is required", Type: dto.ErrTypeValidation,
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Could not read uploaded file",
		})
	}
	defer src.Close()

	file, err := h.fileService.Save(userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, src)
	metrics.ObserveWrite("file", "create", err)
	if err != nil {
		if errors.Is(err, services.ErrBadFileType) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid image format. Only JPEG, PNG, and WebP are allowed", Type: dto.ErrTypeValidation,
			})
		}
		if errors.Is(err, services.ErrFileTooLarge) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "File exceeds the upload size limit", Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save file",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"file_id":   file.ID.String(),
		"mime_type": file.MimeType,
		"size":      file.Size,
	})
}

// View handles GET /files/:id/view - streams the stored bytes. Any
// authenticated attendee may view; only the owner may upload or delete.
func (h *FileHandler) View(c *fiber.Ctx) error {
	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fileNotFound(c)
	}

	file, err := h.fileService.Get(fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			return fileNotFound(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load file",
		})
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	return c.SendFile(file.Path)
}

// PreviewURL handles GET /files/:id/preview-url - derives a cache-busted
// display URL from the stored file id and presentation parameters.
func (h *FileHandler) PreviewURL(c *fiber.Ctx) error {
	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fileNotFound(c)
	}

	exists, err := h.fileService.Exists(fileID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check file",
		})
	}
	if !exists {
		return fileNotFound(c)
	}

	opts := services.PreviewOptions{
		Width:      c.QueryInt("width", 0),
		Height:     c.QueryInt("height", 0),
		Gravity:    c.Query("gravity"),
		Quality:    c.QueryInt("quality", 0),
		Radius:     c.QueryInt("radius", 0),
		Background: c.Query("background"),
		Output:     c.Query("output"),
	}

	return c.JSON(fiber.Map{"url": h.fileService.PreviewURL(fileID, opts)})
}

// Delete handles DELETE /files/:id. The not-found response is typed so
// clients can suppress it when cleaning up stale references.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fileNotFound(c)
	}

	err = h.fileService.Remove(userID, fileID)
	metrics.ObserveWrite("file", "delete", err)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			return fileNotFound(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete file",
		})
	}

	return c.JSON(fiber.Map{"message": "File deleted"})
}

func fileNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: "File not found", Type: dto.ErrTypeNotFound,
	})
}
