package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linkbadge/linkbadge-backend/internal/dto"
	"github.com/linkbadge/linkbadge-backend/internal/models"
	"github.com/linkbadge/linkbadge-backend/internal/qr"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrNameRequired    = errors.New("name is required")
)

type ProfileService struct {
	db    *gorm.DB
	files *FileService
}

func NewProfileService(db *gorm.DB, files *FileService) *ProfileService {
	return &ProfileService{db: db, files: files}
}

// Get returns the user's profile. Clients branch on not-found to run their
// default-and-create recovery, so the miss is a typed error, not a synthesized
// document.
func (s *ProfileService) Get(userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

// Create stores the profile under the user's own id. A concurrent create for
// the same user loses deterministically: the document id is the user id, so
// the second attempt surfaces as ErrProfileExists.
func (s *ProfileService) Create(userID uuid.UUID, req *dto.CreateProfileRequest) (*models.Profile, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}

	p := models.Profile{
		UserID:  userID,
		Name:    req.Name,
		Title:   req.Title,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Socials: models.EncodeSocials(req.Socials),
	}
	if err := s.db.Create(&p).Error; err != nil {
		var existing models.Profile
		if s.db.First(&existing, "user_id = ?", userID).Error == nil {
			return &existing, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &p, nil
}

// Update applies a partial update, creating the document from identity
// defaults when it does not exist yet (PUT is an upsert).
func (s *ProfileService) Update(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrNameRequired
		}
		p.Name = *req.Name
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Company != nil {
		p.Company = *req.Company
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Socials != nil {
		p.Socials = models.EncodeSocials(*req.Socials)
	}
	if req.AvatarFileID.Set {
		s.replaceAvatar(userID, p, req.AvatarFileID.Value)
	}

	if err := s.db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// replaceAvatar swaps the avatar reference and best-effort deletes the
// previous binary. A stale or already-removed file never blocks the update.
func (s *ProfileService) replaceAvatar(userID uuid.UUID, p *models.Profile, next *string) {
	old := p.AvatarFileID
	p.AvatarFileID = next

	if old == nil || (next != nil && *old == *next) {
		return
	}
	oldID, err := uuid.Parse(*old)
	if err != nil {
		return
	}
	if err := s.files.Remove(userID, oldID); err != nil && !errors.Is(err, ErrFileNotFound) {
		slog.Warn("failed to delete replaced avatar", "user_id", userID.String(), "file_id", *old, "error", err)
	}
}

// VCard renders the profile as shareable vCard text. A user without a
// profile document still gets a card built from their account identity.
func (s *ProfileService) VCard(userID uuid.UUID, user *models.User) (string, error) {
	p, err := s.Get(userID)
	if errors.Is(err, ErrProfileNotFound) {
		return qr.EncodeVCard(qr.Card{Name: user.Name, Email: user.Email}), nil
	}
	if err != nil {
		return "", err
	}
	return qr.EncodeVCard(qr.Card{
		Name:    p.Name,
		Title:   p.Title,
		Company: p.Company,
		Email:   p.Email,
		Phone:   p.Phone,
		Socials: models.DecodeSocials(p.Socials),
	}), nil
}

func (s *ProfileService) getOrCreate(userID uuid.UUID) (*models.Profile, error) {
	p, err := s.Get(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	fresh := models.Profile{
		UserID:  userID,
		Name:    user.Name,
		Email:   user.Email,
		Socials: models.EncodeSocials(nil),
	}
	if fresh.Name == "" {
		fresh.Name = user.Email
	}
	if err := s.db.Create(&fresh).Error; err != nil {
		// Lost a concurrent create; the winner's row is authoritative.
		if existing, gerr := s.Get(userID); gerr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &fresh, nil
}
