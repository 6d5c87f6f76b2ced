package exporter

import (
	"os"
	"path/filepath"

	apperrors "clinicreport/internal/errors"
	"clinicreport/pkg/contracts/domain"
)

// WriteFile renders doc into path. The output is written to a temporary file
// in the same directory and renamed into place, so readers never observe a
// partial report.
func WriteFile(path string, r Renderer, doc *domain.ReportDocument) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError("create output directory", err).WithContext("dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return apperrors.NewStorageError("create temporary report file", err).WithContext("dir", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := r.Render(tmp, doc); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperrors.NewStorageError("sync report file", err).WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("close report file", err).WithContext("path", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("set report file mode", err).WithContext("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperrors.NewStorageError("move report into place", err).WithContext("path", path)
	}
	return nil
}
