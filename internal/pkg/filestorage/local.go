package filestorage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diakonovmakar/yatube-final/internal/pkg/apperrors"
)

const (
	// ImageDir is the subdirectory of the media root that holds post images.
	ImageDir = "posts"
	// MaxImageSize bounds accepted uploads.
	MaxImageSize = 5 << 20
	// MaxStoredNameLength matches the posts.image column.
	MaxStoredNameLength = 100

	suffixLength = 8 // "_" plus seven hex characters
)

var allowedImageTypes = []string{"image/gif", "image/jpeg", "image/png"}

var (
	unsafeNameChars = regexp.MustCompile(`[^-\w.]`)
	imageExtension  = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // media root
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, ImageDir), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Media directory ensured")

	return &LocalStorage{basePath: basePath, logger: logger}, nil
}

// SaveImage checks that src is a decodable GIF, JPEG or PNG and writes it
// under posts/. A name already taken gets a short random suffix.
func (ls *LocalStorage) SaveImage(filename string, src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if err := ValidateImage(data); err != nil {
		return "", err
	}

	name := SanitizeFilename(filename)
	dstPath, name, err := ls.reserve(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	stored := path.Join(ImageDir, name)
	ls.logger.Info().Str("filename", filename).Str("stored_as", stored).Msg("Image saved")
	return stored, nil
}

// reserve creates the destination file exclusively so two concurrent uploads
// of the same name cannot overwrite each other.
func (ls *LocalStorage) reserve(name string) (string, string, error) {
	candidate := name
	for attempt := 0; attempt < 5; attempt++ {
		dst := filepath.Join(ls.basePath, ImageDir, candidate)
		f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			if err := f.Close(); err != nil {
				_ = os.Remove(dst)
				return "", "", fmt.Errorf("failed to create destination file: %w", err)
			}
			return dst, candidate, nil
		}
		if !os.IsExist(err) {
			return "", "", fmt.Errorf("failed to create destination file: %w", err)
		}
		ext := filepath.Ext(name)
		candidate = strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:suffixLength-1] + ext
	}
	return "", "", fmt.Errorf("could not find a free name for %s", name)
}

// DeleteFile removes a stored image. Returns nil if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(name string) error {
	if name == "" {
		return nil
	}
	clean := path.Clean("/" + name)[1:]
	if !strings.HasPrefix(clean, ImageDir+"/") {
		return fmt.Errorf("invalid file path: %s", name)
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(clean))
	if err := os.Remove(physicalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ValidateImage accepts GIF, JPEG and PNG payloads that actually decode.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return apperrors.NewValidationError("image", "The submitted file is empty.")
	}
	if len(data) > MaxImageSize {
		return apperrors.NewValidationError("image", "The file is too large (max 5 MB).")
	}
	if !mimetype.EqualsAny(mimetype.Detect(data).String(), allowedImageTypes...) {
		return apperrors.NewValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return apperrors.NewValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return nil
}

// SanitizeFilename keeps the base name and strips characters that are unsafe
// in paths and URLs. The stem is cut so that "posts/<stem>_<suffix><ext>"
// fits MaxStoredNameLength; a stem with nothing left becomes a random one.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSpace(base)

	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !imageExtension.MatchString(ext) {
		ext = ""
	}

	stem = strings.ReplaceAll(stem, " ", "_")
	stem = unsafeNameChars.ReplaceAllString(stem, "")
	stem = strings.Trim(stem, "._")
	if stem == "" {
		stem = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}

	limit := MaxStoredNameLength - len(ImageDir+"/") - suffixLength - len(ext)
	if len(stem) > limit {
		stem = strings.TrimRight(stem[:limit], "._")
	}
	return stem + ext
}
