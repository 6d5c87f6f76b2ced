package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "clinicreport/internal/errors"
)

// Errors returned by FileValidator, wrapped in typed AppErrors
var (
	ErrNotExist      = errors.New("does not exist")
	ErrIsDirectory   = errors.New("is a directory, not a file")
	ErrEmptyFile     = errors.New("is empty")
	ErrWrongFileType = errors.New("has an unsupported extension")
	ErrNotWritable   = errors.New("is not writable")
)

// FileValidator checks local tracker files and report directories before
// the pipeline touches them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateTrackerFile checks that path is a readable, non-empty regular file
// whose extension is one of exts (".xlsx", ".csv"). An empty exts accepts
// any extension.
func (v *FileValidator) ValidateTrackerFile(path string, exts ...string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Error("Tracker file does not exist", slog.String("file", path))
		return apperrors.NewSourceError("tracker file "+path, ErrNotExist).WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewSourceError("stat tracker file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return apperrors.NewSourceError("tracker file "+path, ErrIsDirectory).WithContext("path", path)
	}
	if info.Size() == 0 {
		return apperrors.NewSourceError("tracker file "+path, ErrEmptyFile).WithContext("path", path)
	}

	if len(exts) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		matched := false
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				matched = true
				break
			}
		}
		if !matched {
			return apperrors.NewSourceError(fmt.Sprintf("tracker file %s (want %s)", path, strings.Join(exts, ", ")), ErrWrongFileType).
				WithContext("path", path)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Tracker file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewSourceError("open tracker file", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("Tracker file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created and accepts
// new files.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("create output directory", err).WithContext("dir", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory "+dir+" "+ErrNotWritable.Error(), err).WithContext("dir", dir)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
