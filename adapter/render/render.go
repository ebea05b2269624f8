// Package render writes the final article sequence to disk. Renderers are
// pure formatting over the report: all filtering, ordering, and ID decisions
// happened upstream.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"cyberbites/domain"
)

const (
	fileStampLayout = "2006-01-02_15-04-05"
	printLayout     = "02 Jan 2006 15:04"
	jsonDateLayout  = "2006-01-02 15:04:05"
)

// outputPath builds <folder>/<prefix>_<utc stamp>.<ext> and makes sure the
// folder exists.
func outputPath(folder, ext string, report domain.Report) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("output folder: %w", err)
	}
	name := fmt.Sprintf("%s_%s.%s", report.Meta.Prefix, report.GeneratedAt.UTC().Format(fileStampLayout), ext)
	return filepath.Join(folder, name), nil
}
