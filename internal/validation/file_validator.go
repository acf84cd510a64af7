package validation

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "penyusutan/internal/errors"
)

// xlsxExtension is the only accepted workbook format.
const xlsxExtension = ".xlsx"

// zipMagic opens every xlsx file.
var zipMagic = []byte("PK\x03\x04")

// HeaderSize is how many leading bytes ValidateUpload inspects.
const HeaderSize = len("PK\x03\x04")

// FileValidator checks workbooks before they reach the parser.
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a new file validator. maxBytes <= 0 disables the
// size check.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger.With(slog.String("component", "file_validator")),
		maxBytes: maxBytes,
	}
}

// ValidateUpload checks an uploaded file by name, size and leading bytes.
func (v *FileValidator) ValidateUpload(name string, size int64, header []byte) error {
	if err := v.validateName(name); err != nil {
		return err
	}

	if size == 0 {
		v.logger.Warn("Empty upload rejected", slog.String("file", name))
		return apperrors.NewAppValidationError("uploaded file is empty").WithContext("file", name)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Oversized upload rejected",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.maxBytes))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("uploaded file is %d bytes, limit is %d", size, v.maxBytes)).
			WithContext("file", name)
	}

	if !bytes.HasPrefix(header, zipMagic) {
		v.logger.Warn("Upload is not an xlsx archive", slog.String("file", name))
		return apperrors.NewAppValidationError("file content is not an xlsx workbook").WithContext("file", name)
	}

	v.logger.Debug("Upload validated", slog.String("file", name), slog.Int64("size", size))
	return nil
}

func (v *FileValidator) validateName(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Temporary Excel file rejected", slog.String("file", name))
		return apperrors.NewAppValidationError("file is a temporary Excel lock file").WithContext("file", base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext != xlsxExtension {
		v.logger.Warn("File is not an xlsx workbook",
			slog.String("file", name),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("file must be %s, got %q", xlsxExtension, ext)).WithContext("file", base)
	}
	return nil
}

// ValidateFile checks if a workbook exists on disk, is readable and passes
// the upload checks.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	defer file.Close()

	header := make([]byte, HeaderSize)
	n, _ := file.Read(header)
	return v.ValidateUpload(path, info.Size(), header[:n])
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
