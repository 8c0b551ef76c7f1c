package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager lays out exported tables and rendered charts under one base directory,
// one sub-directory per export or report run.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateOutputDir creates the directory holding the files of one export or run
func (om *OutputManager) CreateOutputDir(id string) (string, error) {
	dir := filepath.Join(om.BaseOutputDir, filepath.Base(id))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	return dir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(id, fileName string) (string, error) {
	dir, err := om.CreateOutputDir(id)
	if err != nil {
		return "", err
	}

	// Clean the filename to remove any path separators
	return filepath.Join(dir, filepath.Base(fileName)), nil
}

// ResolveFile returns the path of an existing output file, refusing names that escape
// the base directory.
func (om *OutputManager) ResolveFile(id, fileName string) (string, error) {
	if id != filepath.Base(id) || fileName != filepath.Base(fileName) || id == ".." || fileName == ".." {
		return "", fmt.Errorf("invalid output path %s/%s", id, fileName)
	}
	path := filepath.Join(om.BaseOutputDir, id, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// GetDownloadURL generates a download URL for a file
func (om *OutputManager) GetDownloadURL(id, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", id, filepath.Base(fileName))
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".xlsx", ".xls":
		return "excel"
	case ".svg":
		return "svg"
	case ".db", ".sqlite":
		return "database"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type served for a file type
func (om *OutputManager) ContentType(fileName string) string {
	switch om.GetFileType(fileName) {
	case "csv":
		return "text/csv; charset=utf-8"
	case "json":
		return "application/json"
	case "excel":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}
