package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	return img
}

func TestEncodeBase64PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(64, 48)); err != nil {
		t.Fatal(err)
	}

	enc := &Encoder{}
	b64, err := enc.EncodeBase64(buf.Bytes())
	if err != nil {
		t.Fatalf("EncodeBase64 returned error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	if format != "png" {
		t.Errorf("re-encoded format = %q, want png", format)
	}
	if got := decoded.Bounds(); got.Dx() != 64 || got.Dy() != 48 {
		t.Errorf("dimensions changed to %dx%d without downscaling enabled", got.Dx(), got.Dy())
	}
}

func TestEncodeBase64JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(32, 32), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}

	enc := &Encoder{}
	b64, err := enc.EncodeBase64(buf.Bytes())
	if err != nil {
		t.Fatalf("EncodeBase64 returned error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatal(err)
	}
	if _, format, err := image.Decode(bytes.NewReader(raw)); err != nil || format != "png" {
		t.Errorf("JPEG input should re-encode as PNG, got format %q err %v", format, err)
	}
}

func TestCorrectImageOrientation(t *testing.T) {
	// 4x2 image with a single bright marker pixel at (0,0); everything
	// else stays black, so the marker's landing spot pins down the
	// transform applied for each EXIF orientation value.
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.Set(0, 0, color.Gray{Y: 255})

	tests := []struct {
		orientation      int
		wantW, wantH     int
		markerX, markerY int
	}{
		{1, 4, 2, 0, 0}, // identity
		{2, 4, 2, 3, 0}, // flip horizontal
		{3, 4, 2, 3, 1}, // rotate 180
		{4, 4, 2, 0, 1}, // flip vertical
		{5, 2, 4, 0, 3}, // transpose
		{6, 2, 4, 1, 0}, // rotate 90 clockwise
		{7, 2, 4, 1, 0}, // transverse
		{8, 2, 4, 0, 3}, // rotate 90 counter-clockwise
		{0, 4, 2, 0, 0}, // unknown value falls back to identity
	}

	for _, tt := range tests {
		got := CorrectImageOrientation(src, tt.orientation)
		bounds := got.Bounds()
		if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
			t.Errorf("orientation %d: got %dx%d, want %dx%d",
				tt.orientation, bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			continue
		}
		r, _, _, _ := got.At(tt.markerX, tt.markerY).RGBA()
		if r == 0 {
			t.Errorf("orientation %d: marker pixel not at (%d,%d)",
				tt.orientation, tt.markerX, tt.markerY)
		}
	}
}

func TestEncodeBase64CorruptImage(t *testing.T) {
	enc := &Encoder{}
	if _, err := enc.EncodeBase64([]byte("definitely not an image")); err == nil {
		t.Fatal("expected error for corrupt image data, got nil")
	}
}

func TestEncodeBase64Downscale(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(200, 100)); err != nil {
		t.Fatal(err)
	}

	enc := &Encoder{MaxDimension: 50}
	b64, err := enc.EncodeBase64(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	raw, _ := base64.StdEncoding.DecodeString(b64)
	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 25 {
		t.Errorf("downscaled to %dx%d, want 50x25 (aspect ratio preserved)", bounds.Dx(), bounds.Dy())
	}
}
