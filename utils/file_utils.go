package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/sirswa/crm_backend/models"
)

const (
	// Base URL for serving files
	baseURL = "/uploads"
	// MaxPhotoSize is the largest accepted profile photo upload (5MB)
	MaxPhotoSize = 5 * 1024 * 1024
	// Profile photos are scaled down to fit this square
	photoMaxSide = 512
)

// Allowed image extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ValidateImageType checks the extension of an uploaded image
func ValidateImageType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return &models.ErrValidation{Field: "profilePhoto", Message: "unsupported image format. Allowed formats: jpg, jpeg, png, gif"}
	}
	return nil
}

// PhotoStore keeps uploaded profile photos on local disk
type PhotoStore struct {
	dir string
}

func NewPhotoStore(dir string) *PhotoStore {
	return &PhotoStore{dir: dir}
}

// Dir is the directory served under /uploads
func (s *PhotoStore) Dir() string {
	return s.dir
}

// Init creates the upload directory
func (s *PhotoStore) Init() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return nil
}

// SaveProfilePhoto decodes the image, scales it to fit 512x512 and stores it
// under a fresh name. It returns the public URL of the stored file.
func (s *PhotoStore) SaveProfilePhoto(owner, filename string, src io.Reader) (string, error) {
	if err := ValidateImageType(filename); err != nil {
		return "", err
	}

	img, err := imaging.Decode(io.LimitReader(src, MaxPhotoSize+1), imaging.AutoOrientation(true))
	if err != nil {
		return "", &models.ErrValidation{Field: "profilePhoto", Message: "file is not a valid image"}
	}
	bounds := img.Bounds()
	if bounds.Dx() > photoMaxSide || bounds.Dy() > photoMaxSide {
		img = imaging.Fit(img, photoMaxSide, photoMaxSide, imaging.Lanczos)
	}

	if err := s.Init(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s%s", owner, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	if err := imaging.Save(img, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	return fmt.Sprintf("%s/%s", baseURL, name), nil
}

// Remove deletes a stored photo by its public URL
func (s *PhotoStore) Remove(url string) error {
	name := filepath.Base(strings.TrimPrefix(url, baseURL+"/"))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
