package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/linkbadge/linkbadge-backend/internal/dto"
	"github.com/linkbadge/linkbadge-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrQrSettingsNotFound = errors.New("qr settings not found")
	ErrQrSettingsExist    = errors.New("qr settings already exist")
	ErrInvalidLayout      = errors.New("invalid layout")
)

type QrSettingsService struct {
	db *gorm.DB
}

func NewQrSettingsService(db *gorm.DB) *QrSettingsService {
	return &QrSettingsService{db: db}
}

// DefaultQrSettings are the presentation defaults clients synthesize for a
// brand-new or guest user.
func DefaultQrSettings(userID uuid.UUID) models.QrSettings {
	return models.QrSettings{
		UserID:          userID,
		BackgroundColor: "#ffffff",
		ForegroundColor: "#000000",
		TextColor:       "#1a1a1a",
		CardColor:       "#ffffff",
		PageColor:       "#f5f5f5",
		FieldVisibility: models.EncodeVisibility(map[string]bool{
			"name":    true,
			"title":   true,
			"company": true,
			"email":   true,
			"phone":   true,
		}),
		Layout:       "card",
		Size:         256,
		Padding:      16,
		CornerRadius: 12,
		FontScale:    1,
	}
}

func (s *QrSettingsService) Get(userID uuid.UUID) (*models.QrSettings, error) {
	var q models.QrSettings
	if err := s.db.First(&q, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load qr settings: %w", err)
	}
	return &q, nil
}

// Create stores settings under the user's id; the second of two concurrent
// creates surfaces as ErrQrSettingsExist with the winner's row.
func (s *QrSettingsService) Create(userID uuid.UUID, req *dto.UpdateQrSettingsRequest) (*models.QrSettings, error) {
	q := DefaultQrSettings(userID)
	if err := applyQrSettings(&q, req); err != nil {
		return nil, err
	}
	if err := s.db.Create(&q).Error; err != nil {
		var existing models.QrSettings
		if s.db.First(&existing, "user_id = ?", userID).Error == nil {
			return &existing, ErrQrSettingsExist
		}
		return nil, fmt.Errorf("failed to create qr settings: %w", err)
	}
	return &q, nil
}

// Update applies a partial update, seeding defaults when no row exists yet.
func (s *QrSettingsService) Update(userID uuid.UUID, req *dto.UpdateQrSettingsRequest) (*models.QrSettings, error) {
	q, err := s.Get(userID)
	if errors.Is(err, ErrQrSettingsNotFound) {
		fresh := DefaultQrSettings(userID)
		if err := s.db.Create(&fresh).Error; err != nil {
			if existing, gerr := s.Get(userID); gerr == nil {
				q = existing
			} else {
				return nil, fmt.Errorf("failed to create qr settings: %w", err)
			}
		} else {
			q = &fresh
		}
	} else if err != nil {
		return nil, err
	}

	if err := applyQrSettings(q, req); err != nil {
		return nil, err
	}
	if err := s.db.Save(q).Error; err != nil {
		return nil, fmt.Errorf("failed to update qr settings: %w", err)
	}
	return q, nil
}

func applyQrSettings(q *models.QrSettings, req *dto.UpdateQrSettingsRequest) error {
	if req == nil {
		return nil
	}
	if req.Layout != nil {
		valid := false
		for _, l := range models.QrLayouts {
			if l == *req.Layout {
				valid = true
				break
			}
		}
		if !valid {
			return ErrInvalidLayout
		}
		q.Layout = *req.Layout
	}
	if req.BackgroundColor != nil {
		q.BackgroundColor = *req.BackgroundColor
	}
	if req.ForegroundColor != nil {
		q.ForegroundColor = *req.ForegroundColor
	}
	if req.TextColor != nil {
		q.TextColor = *req.TextColor
	}
	if req.CardColor != nil {
		q.CardColor = *req.CardColor
	}
	if req.PageColor != nil {
		q.PageColor = *req.PageColor
	}
	if req.FieldVisibility != nil {
		q.FieldVisibility = models.EncodeVisibility(*req.FieldVisibility)
	}
	if req.Size != nil {
		q.Size = *req.Size
	}
	if req.Padding != nil {
		q.Padding = *req.Padding
	}
	if req.CornerRadius != nil {
		q.CornerRadius = *req.CornerRadius
	}
	if req.FontScale != nil {
		q.FontScale = *req.FontScale
	}
	return nil
}
