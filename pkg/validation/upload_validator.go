package validation

import (
	"path/filepath"
	"strings"

	apperrors "github.com/CliffortMC08/pearlite-analyser/internal/errors"
)

// UploadValidator checks uploaded micrograph files before decoding.
type UploadValidator struct {
	allowedExtensions map[string]bool
	maxSizeBytes      int64
}

// NewUploadValidator creates a validator accepting the supported raster
// formats up to the given size.
func NewUploadValidator(maxSizeBytes int64) *UploadValidator {
	return &UploadValidator{
		allowedExtensions: map[string]bool{
			".png":  true,
			".jpg":  true,
			".jpeg": true,
			".bmp":  true,
			".tif":  true,
			".tiff": true,
		},
		maxSizeBytes: maxSizeBytes,
	}
}

// ValidateUpload validates an uploaded file's name and declared size.
// An empty filename is acceptable (masks are often sent without one);
// a wrong extension or an oversized file is not.
func (v *UploadValidator) ValidateUpload(filename string, sizeBytes int64) error {
	if v.maxSizeBytes > 0 && sizeBytes > v.maxSizeBytes {
		return apperrors.NewValidationError("uploaded file too large", nil)
	}
	if filename == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil
	}
	if !v.allowedExtensions[ext] {
		return apperrors.NewValidationError("unsupported file extension "+ext, nil)
	}
	return nil
}
