package config

import (
	"path/filepath"
	"strings"
)

// resolvePaths anchors relative file paths from a config file at the file's
// own directory, so a config works regardless of the working directory.
func (c *Config) resolvePaths(baseDir string) {
	c.Source.Path = resolveRelative(baseDir, c.Source.Path)
	c.Source.CredentialsFile = resolveRelative(baseDir, c.Source.CredentialsFile)
	c.Report.OutputDir = resolveRelative(baseDir, c.Report.OutputDir)
	c.Logging.FilePath = resolveRelative(baseDir, c.Logging.FilePath)
}

func resolveRelative(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" || baseDir == "." {
		return p
	}
	return filepath.Join(baseDir, p)
}

// OutputPath returns <output_dir>/<base_name>.<ext> for a report extension
func (r ReportConfig) OutputPath(ext string) string {
	return filepath.Join(r.OutputDir, r.BaseName+"."+strings.TrimPrefix(ext, "."))
}
