package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TrackerExtensions are the file types a tracker export can have
var TrackerExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds tracker exports on disk
type Discovery struct {
	extensions []string
}

// NewDiscovery creates a discovery for the given extensions, or
// TrackerExtensions when none are given.
func NewDiscovery(extensions ...string) *Discovery {
	if len(extensions) == 0 {
		extensions = TrackerExtensions
	}
	return &Discovery{extensions: extensions}
}

// FindTrackerFiles lists the matching files of dir, newest first. Hidden files
// and spreadsheet lock files ("~$name.xlsx") are ignored.
func (d *Discovery) FindTrackerFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !d.matches(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// LatestTracker returns the most recently modified tracker export in dir
func (d *Discovery) LatestTracker(dir string) (FileInfo, error) {
	files, err := d.FindTrackerFiles(dir)
	if err != nil {
		return FileInfo{}, err
	}
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("no tracker export (%s) found in %s", strings.Join(d.extensions, ", "), dir)
	}
	return files[0], nil
}

func (d *Discovery) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.extensions {
		if ext == want {
			return true
		}
	}
	return false
}
