package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/linkbadge/linkbadge-backend/internal/config"
	"github.com/linkbadge/linkbadge-backend/internal/models"
	"github.com/linkbadge/linkbadge-backend/internal/scope"
	"gorm.io/gorm"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
	ErrBadFileType  = errors.New("unsupported file type")
)

// AllowedImageTypes is the upload MIME allow-list, checked before any bytes
// are written.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

type FileService struct {
	db        *gorm.DB
	uploadDir string
	maxBytes  int64
	baseURL   string
}

func NewFileService(db *gorm.DB, cfg *config.Config) (*FileService, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &FileService{
		db:        db,
		uploadDir: cfg.UploadDir,
		maxBytes:  cfg.MaxUploadBytes,
		baseURL:   cfg.PublicBaseURL,
	}, nil
}

// Save validates and stores an uploaded binary, returning its metadata row.
// The declared size is checked up front and re-enforced while copying, since
// multipart headers are client-controlled.
func (s *FileService) Save(ownerID uuid.UUID, filename, contentType string, size int64, src io.Reader) (*models.StoredFile, error) {
	if !AllowedImageTypes[contentType] {
		return nil, ErrBadFileType
	}
	if size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s_%s%s", ownerID.String()[:8], uuid.New().String()[:8], ext)
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.CopyN(dst, src, s.maxBytes+1)
	closeErr := dst.Close()
	if err != nil && err != io.EOF {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if closeErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", closeErr)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	file := models.StoredFile{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Path:     path,
		MimeType: contentType,
		Size:     written,
	}
	if err := s.db.Create(&file).Error; err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to store file record: %w", err)
	}
	return &file, nil
}

// Get returns the metadata row for a stored file.
func (s *FileService) Get(id uuid.UUID) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := s.db.First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return &file, nil
}

// Exists reports whether a file id refers to a stored binary.
func (s *FileService) Exists(id uuid.UUID) (bool, error) {
	_, err := s.Get(id)
	if errors.Is(err, ErrFileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a stored file owned by the user. Callers replacing or
// clearing an avatar treat ErrFileNotFound as success so a stale reference
// never blocks the flow.
func (s *FileService) Remove(ownerID, id uuid.UUID) error {
	var file models.StoredFile
	err := s.db.Scopes(scope.ForOwner(ownerID)).First(&file, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove file from disk", "path", file.Path, "error", err)
	}
	return s.db.Delete(&file).Error
}

// DeleteAllForOwner removes every stored file for a user, best effort.
func (s *FileService) DeleteAllForOwner(ownerID uuid.UUID) error {
	var files []models.StoredFile
	if err := s.db.Scopes(scope.ForOwner(ownerID)).Find(&files).Error; err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove file from disk", "path", f.Path, "error", err)
		}
	}
	return s.db.Scopes(scope.ForOwner(ownerID)).Delete(&models.StoredFile{}).Error
}

// PreviewOptions parameterize a derived display URL. Zero values are
// omitted from the query string.
type PreviewOptions struct {
	Width      int
	Height     int
	Gravity    string
	Quality    int
	Radius     int
	Background string
	Output     string
}

// PreviewURL derives a display URL for a stored file. Every derivation
// carries a fresh timestamp query parameter so upstream caches are defeated
// after the underlying asset changes.
func (s *FileService) PreviewURL(id uuid.UUID, opts PreviewOptions) string {
	return previewURL(s.baseURL, id, opts, time.Now())
}

func previewURL(base string, id uuid.UUID, opts PreviewOptions, now time.Time) string {
	q := url.Values{}
	if opts.Width > 0 {
		q.Set("width", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q.Set("height", strconv.Itoa(opts.Height))
	}
	if opts.Gravity != "" {
		q.Set("gravity", opts.Gravity)
	}
	if opts.Quality > 0 {
		q.Set("quality", strconv.Itoa(opts.Quality))
	}
	if opts.Radius > 0 {
		q.Set("radius", strconv.Itoa(opts.Radius))
	}
	if opts.Background != "" {
		q.Set("background", opts.Background)
	}
	if opts.Output != "" {
		q.Set("output", opts.Output)
	}
	q.Set("ts", strconv.FormatInt(now.UnixMilli(), 10))

	return base + "/api/files/" + id.String() + "/view?" + q.Encode()
}
