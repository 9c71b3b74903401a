package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linkbadge/linkbadge-backend/internal/dto"
	"github.com/linkbadge/linkbadge-backend/internal/models"
	"github.com/linkbadge/linkbadge-backend/internal/qr"
	"github.com/linkbadge/linkbadge-backend/internal/scope"
	"gorm.io/gorm"
)

var (
	ErrContactNotFound     = errors.New("contact not found")
	ErrContactNameRequired = errors.New("contact name is required")
	ErrEmptyPayload        = errors.New("scan payload is empty")
	ErrScanUnreadable      = errors.New("could not extract information from the scan")
)

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// List returns the user's contacts, newest first.
func (s *ContactService) List(ownerID uuid.UUID) ([]models.Contact, int64, error) {
	var contacts []models.Contact
	var total int64

	s.db.Model(&models.Contact{}).Scopes(scope.ForOwner(ownerID)).Count(&total)

	err := s.db.Scopes(scope.ForOwner(ownerID)).
		Order("created_at DESC").
		Find(&contacts).Error

	return contacts, total, err
}

func (s *ContactService) Get(ownerID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.Scopes(scope.ForOwner(ownerID)).First(&contact, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return &contact, nil
}

func (s *ContactService) Create(ownerID uuid.UUID, req *dto.CreateContactRequest) (*models.Contact, error) {
	if req.Name == "" {
		return nil, ErrContactNameRequired
	}

	metDate := time.Now()
	if req.MetDate != nil {
		metDate = *req.MetDate
	}

	contact := models.Contact{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    req.Name,
		Title:   req.Title,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
		MetAt:   req.MetAt,
		MetDate: metDate,
		Socials: models.EncodeSocials(req.Socials),
	}
	if err := s.db.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &contact, nil
}

func (s *ContactService) Update(ownerID, id uuid.UUID, req *dto.UpdateContactRequest) (*models.Contact, error) {
	contact, err := s.Get(ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrContactNameRequired
		}
		contact.Name = *req.Name
	}
	if req.Title != nil {
		contact.Title = *req.Title
	}
	if req.Company != nil {
		contact.Company = *req.Company
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}
	if req.MetAt != nil {
		contact.MetAt = *req.MetAt
	}
	if req.MetDate != nil {
		contact.MetDate = *req.MetDate
	}
	if req.Socials != nil {
		contact.Socials = models.EncodeSocials(*req.Socials)
	}

	if err := s.db.Save(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

// Delete soft-deletes a contact owned by the user. Unknown ids report
// not-found; clients treat that as a stale reference and drop it.
func (s *ContactService) Delete(ownerID, id uuid.UUID) error {
	result := s.db.Scopes(scope.ForOwner(ownerID)).Where("id = ?", id).Delete(&models.Contact{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// CreateFromScan parses a scanned payload and stores the resulting contact.
// The parser itself never errors for non-empty input; a panic inside it is
// downgraded to ErrScanUnreadable so a hostile payload cannot take the scan
// endpoint down.
func (s *ContactService) CreateFromScan(ownerID uuid.UUID, payload, metAt string) (*models.Contact, string, error) {
	parsed, err := safeParse(payload)
	if err != nil {
		return nil, "", err
	}
	if parsed == nil {
		return nil, "", ErrEmptyPayload
	}

	name := parsed.Name
	if name == "" {
		name = "Unknown Contact"
	}

	contact := models.Contact{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Title:   parsed.Title,
		Company: parsed.Company,
		Email:   parsed.Email,
		Phone:   parsed.Phone,
		Notes:   parsed.Notes,
		MetAt:   metAt,
		MetDate: time.Now(),
		Socials: models.EncodeSocials(parsed.Socials),
	}
	if err := s.db.Create(&contact).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create contact: %w", err)
	}
	return &contact, parsed.Format, nil
}

func safeParse(payload string) (parsed *qr.ParsedContact, err error) {
	defer func() {
		if r := recover(); r != nil {
			parsed = nil
			err = ErrScanUnreadable
		}
	}()
	return qr.Parse(payload), nil
}
