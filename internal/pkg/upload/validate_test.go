package upload

import (
	"strings"
	"testing"
)

var pngHead = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestValidateImageBySniff_ValidPNG(t *testing.T) {
	t.Parallel()

	mime, err := ValidateImageBySniff("avatar.png", pngHead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("expected image/png, got %s", mime)
	}
}

func TestValidateImageBySniff_ValidJPEG(t *testing.T) {
	t.Parallel()

	head := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	mime, err := ValidateImageBySniff("photo.jpg", head)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", mime)
	}
}

func TestValidateImageBySniff_DisallowedExtension(t *testing.T) {
	t.Parallel()

	if _, err := ValidateImageBySniff("payload.svg", pngHead); err == nil {
		t.Fatalf("svg extension must be rejected")
	}
	if _, err := ValidateImageBySniff("archive.zip", pngHead); err == nil {
		t.Fatalf("non-image extension must be rejected")
	}
}

func TestValidateImageBySniff_ContentMismatch(t *testing.T) {
	t.Parallel()

	if _, err := ValidateImageBySniff("fake.png", []byte("<html><body>hi</body></html>")); err == nil {
		t.Fatalf("html content behind an image extension must be rejected")
	}
	if _, err := ValidateImageBySniff("fake.jpg", []byte(`<?xml version="1.0"?><svg></svg>`)); err == nil {
		t.Fatalf("xml content behind an image extension must be rejected")
	}
	if _, err := ValidateImageBySniff("fake.gif", []byte(strings.Repeat("A", 64))); err == nil {
		t.Fatalf("plain text behind an image extension must be rejected")
	}
}
