// package formatter exports gallery artworks to CSV, Markdown and image files
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/healthart/internal/models"
)

// ExportToCSV converts artworks to CSV with columns: ID, Sequence, Recovery, Sleep, Strain, HRV, ContentType, Bytes, CreatedAt
func ExportToCSV(artworks []*models.Artwork) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Sequence", "Recovery", "Sleep", "Strain", "HRV", "ContentType", "Bytes", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, art := range artworks {
		snap := art.Snapshot()
		record := []string{
			art.ID(),
			strconv.Itoa(art.Sequence()),
			FormatMetric(&snap.RecoveryScore),
			FormatMetric(snap.SleepQuality),
			FormatMetric(snap.Strain),
			FormatMetric(snap.HRV),
			art.ContentType(),
			strconv.Itoa(len(art.Image())),
			art.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown describes an artwork in Markdown, embedding imageFilename when set
func ExportToMarkdown(art *models.Artwork, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	snap := art.Snapshot()

	buf.WriteString(fmt.Sprintf("# Recovery %s%%\n\n", FormatMetric(&snap.RecoveryScore)))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Artwork](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Created**: %s\n", art.CreatedAt().UTC().Format(time.RFC1123)))
	if snap.SleepQuality != nil {
		buf.WriteString(fmt.Sprintf("**Sleep quality**: %s%%\n", FormatMetric(snap.SleepQuality)))
	}
	if snap.Strain != nil {
		buf.WriteString(fmt.Sprintf("**Strain**: %s/21\n", FormatMetric(snap.Strain)))
	}
	if snap.HRV != nil {
		buf.WriteString(fmt.Sprintf("**HRV**: %s ms\n", FormatMetric(snap.HRV)))
	}

	buf.WriteString("\n## Prompt\n\n")
	buf.WriteString(art.Prompt())
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// FormatMetric prints an optional metric, or "-" when absent
func FormatMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Extension returns the file extension for an image content type
func Extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

// WriteImage writes the artwork image to path, adding the extension for its content type when path has none.
func WriteImage(art *models.Artwork, path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += Extension(art.ContentType())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, art.Image(), 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// ExportResult contains information about files created by WriteExport
type ExportResult struct {
	Directory string
	Image     string
	Readme    string
}

// WriteExport writes an artwork into a dedicated directory.
//
// Directory name defaults to the artwork ID. Creates {dir}/artwork{ext} and {dir}/README.md
func WriteExport(art *models.Artwork, outputDir string) (*ExportResult, error) {
	if outputDir == "" {
		outputDir = art.ID()
	}
	if outputDir == "" {
		return nil, fmt.Errorf("output directory required for unsaved artwork")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	imageName := "artwork" + Extension(art.ContentType())
	imagePath, err := WriteImage(art, filepath.Join(outputDir, imageName))
	if err != nil {
		return nil, err
	}

	mdData, err := ExportToMarkdown(art, imageName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	readme := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(readme, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &ExportResult{Directory: outputDir, Image: imagePath, Readme: readme}, nil
}
