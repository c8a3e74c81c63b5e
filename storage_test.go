package imagestudio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtensionFromMIME(t *testing.T) {
	tests := map[string]string{
		"image/png":  "png",
		"image/apng": "png",
		"image/jpeg": "jpg",
		"image/webp": "jpg",
		"":           "jpg",
	}
	for mime, want := range tests {
		if got := ExtensionFromMIME(mime); got != want {
			t.Errorf("ExtensionFromMIME(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		kind  Kind
		index int
		mime  string
		want  string
	}{
		{KindTextToImage, 1, "image/png", "generated_image_1.png"},
		{KindSimpleEdit, 2, "image/jpeg", "edited_image_2.jpg"},
		{KindPoseTransfer, 1, "image/png", "pose_transfer_1.png"},
	}
	for _, tt := range tests {
		if got := DownloadName(tt.kind, tt.index, tt.mime); got != tt.want {
			t.Errorf("DownloadName(%s, %d, %s) = %q, want %q", tt.kind, tt.index, tt.mime, got, tt.want)
		}
	}
}

func TestHistoryDownloadName(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		kind Kind
		want string
	}{
		{KindSimpleEdit, "simple_edit_2026-01-02 03-04-05.png"},
		{KindPoseTransfer, "pose_transfer_2026-01-02 03-04-05.png"},
		{KindTextToImage, "text_to_image_2026-01-02 03-04-05.png"},
	}
	for _, tt := range tests {
		got := HistoryDownloadName(HistoryRecord{Kind: tt.kind, CreatedAt: at, MIMEType: "image/jpeg"})
		if got != tt.want {
			t.Errorf("HistoryDownloadName(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestSaveOutcome(t *testing.T) {
	dir := t.TempDir()
	outcome := &Outcome{
		Kind: KindTextToImage,
		Images: []RenderedImage{
			{ExtractedImage: ExtractedImage{Data: pngBytes, MIMEType: "image/png"}, Filename: "generated_image_1.png"},
			{ExtractedImage: ExtractedImage{Data: jpegBytes, MIMEType: "image/jpeg"}, Filename: "generated_image_2.jpg"},
		},
	}

	paths, err := SaveOutcome(context.Background(), DirStorage{Dir: dir}, outcome)
	if err != nil {
		t.Fatalf("SaveOutcome() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	data, err := os.ReadFile(filepath.Join(dir, "generated_image_2.jpg"))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != string(jpegBytes) {
		t.Error("saved bytes differ")
	}
}

func TestSaveOutcome_NoStorage(t *testing.T) {
	if _, err := SaveOutcome(context.Background(), nil, &Outcome{}); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("expected ErrStorageNotConfigured, got %v", err)
	}
}

func TestGetMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.PNG":  "image/png",
		"b.jpeg": "image/jpeg",
		"c.jpg":  "image/jpeg",
		"d.webp": "image/webp",
		"e.gif":  "image/gif",
		"f":      "image/png",
	}
	for path, want := range tests {
		if got := GetMIMEType(path); got != want {
			t.Errorf("GetMIMEType(%q) = %q, want %q", path, got, want)
		}
	}
}
