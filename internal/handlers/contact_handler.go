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

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// List handles GET /contacts - all contacts for the authenticated user,
// newest first.
func (h *ContactHandler) List(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	contacts, total, err := h.contactService.List(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch contacts",
		})
	}

	responses := make([]dto.ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = contactResponse(&contacts[i])
	}

	return c.JSON(dto.ContactListResponse{Contacts: responses, Total: total})
}

func (h *ContactHandler) Get(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidContactID(c)
	}

	contact, err := h.contactService.Get(userID, contactID)
	if err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			return contactNotFound(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch contact",
		})
	}

	return c.JSON(contactResponse(contact))
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	contact, err := h.contactService.Create(userID, &req)
	metrics.ObserveWrite("contact", "create", err)
	if err != nil {
		if errors.Is(err, services.ErrContactNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(), Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create contact",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(contactResponse(contact))
}

func (h *ContactHandler) Update(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidContactID(c)
	}

	var req dto.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	contact, err := h.contactService.Update(userID, contactID, &req)
	metrics.ObserveWrite("contact", "update", err)
	if err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			return contactNotFound(c)
		}
		if errors.Is(err, services.ErrContactNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(), Type: dto.ErrTypeValidation,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update contact",
		})
	}

	return c.JSON(contactResponse(contact))
}

func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidContactID(c)
	}

	err = h.contactService.Delete(userID, contactID)
	metrics.ObserveWrite("contact", "delete", err)
	if err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			return contactNotFound(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete contact",
		})
	}

	return c.JSON(fiber.Map{"message": "Contact deleted"})
}

// Scan handles POST /contacts/scan - a decoded QR text payload in, a stored
// contact out. The camera decode itself happens on the client.
func (h *ContactHandler) Scan(c *fiber.Ctx) error {
	userID, err := scope.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Payload == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Scan payload is required", Type: dto.ErrTypeValidation,
		})
	}

	contact, format, err := h.contactService.CreateFromScan(userID, req.Payload, req.MetAt)
	if err != nil {
		if errors.Is(err, services.ErrScanUnreadable) || errors.Is(err, services.ErrEmptyPayload) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: "Could not extract information from the scan", Type: dto.ErrTypeParseFailed,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save scanned contact",
		})
	}
	metrics.ScansParsed.WithLabelValues(format).Inc()

	return c.Status(fiber.StatusCreated).JSON(dto.ScanResponse{
		Format:  format,
		Contact: contactResponse(contact),
	})
}

func contactResponse(contact *models.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        contact.ID.String(),
		OwnerID:   contact.OwnerID.String(),
		Name:      contact.Name,
		Title:     contact.Title,
		Company:   contact.Company,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Notes:     contact.Notes,
		MetAt:     contact.MetAt,
		MetDate:   contact.MetDate,
		Socials:   models.DecodeSocials(contact.Socials),
		CreatedAt: contact.CreatedAt,
		UpdatedAt: contact.UpdatedAt,
	}
}

func invalidContactID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid contact ID", Type: dto.ErrTypeValidation,
	})
}

func contactNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: "Contact not found", Type: dto.ErrTypeNotFound,
	})
}
