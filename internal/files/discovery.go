package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	workbookExtension = ".xlsx"
	lockFilePrefix    = "~$"
)

// FileInfo represents information about a discovered workbook
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds asset registers on disk
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to its methods are resolved against it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindWorkbooks lists the .xlsx files directly inside dir, oldest first.
// Excel lock files are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsWorkbookName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// Expand turns path into the workbooks it names: a file is returned as is,
// a directory is searched with FindWorkbooks.
func (d *Discovery) Expand(path string) ([]FileInfo, error) {
	fullPath := d.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", fullPath, err)
	}
	if !info.IsDir() {
		return []FileInfo{{
			Path:    fullPath,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}}, nil
	}

	files, err := d.FindWorkbooks(fullPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s workbooks in %s", workbookExtension, fullPath)
	}
	return files, nil
}

// IsWorkbookName reports whether name looks like a register worth loading.
func IsWorkbookName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), workbookExtension) &&
		!strings.HasPrefix(name, lockFilePrefix)
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
