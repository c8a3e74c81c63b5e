package imagestudio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HistoryTimestampLayout is the timestamp format shown in the history
// gallery and embedded in history download names.
const HistoryTimestampLayout = "2006-01-02 15:04:05"

// ExtensionFromMIME returns "png" when the MIME type mentions png and
// "jpg" otherwise.
func ExtensionFromMIME(mime string) string {
	if strings.Contains(mime, "png") {
		return "png"
	}
	return "jpg"
}

// DownloadName returns the download filename for the index-th (1-based)
// image of a flow result: {base}_{index}.{ext}.
func DownloadName(kind Kind, index int, mime string) string {
	return fmt.Sprintf("%s_%d.%s", kind.OutputBase(), index, ExtensionFromMIME(mime))
}

// HistoryDownloadName returns {kind}_{timestamp}.png with the timestamp's
// colons replaced so the name is safe on every filesystem.
func HistoryDownloadName(rec HistoryRecord) string {
	ts := strings.ReplaceAll(rec.CreatedAt.Format(HistoryTimestampLayout), ":", "-")
	return fmt.Sprintf("%s_%s.png", rec.Kind.Slug(), ts)
}

// Storage persists rendered images outside the session, e.g. when a
// command-line example writes results to disk.
type Storage interface {
	// SaveFile saves data under name and returns where it was written.
	SaveFile(ctx context.Context, data []byte, name string, contentType string) (string, error)
}

// DirStorage writes files into a local directory.
type DirStorage struct {
	Dir string
}

// SaveFile implements Storage.
func (d DirStorage) SaveFile(ctx context.Context, data []byte, name string, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(d.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveOutcome saves every rendered image of an outcome under its download
// name. It stops at the first failure and returns the paths saved so far.
func SaveOutcome(ctx context.Context, storage Storage, outcome *Outcome) ([]string, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if outcome == nil {
		return nil, nil
	}

	paths := make([]string, 0, len(outcome.Images))
	for _, img := range outcome.Images {
		path, err := storage.SaveFile(ctx, img.Data, img.Filename, img.MIMEType)
		if err != nil {
			return paths, fmt.Errorf("saving %s: %w", img.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// GetMIMEType guesses an image MIME type from a file extension.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
