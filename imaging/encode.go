package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

// GetImageOrientation extracts the EXIF orientation from JPEG data
func GetImageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1 // Default orientation if no EXIF data or error
	}

	orientation, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientVal, err := orientation.Int(0)
	if err != nil {
		return 1
	}

	return orientVal
}

// CorrectImageOrientation applies the correct orientation to the image
func CorrectImageOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch orientation {
	case 2: // Flip horizontal
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(width-1-x, y, img.At(x, y))
			}
		}
		return newImg
	case 3: // Rotate 180
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(width-1-x, height-1-y, img.At(x, y))
			}
		}
		return newImg
	case 4: // Flip vertical
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(x, height-1-y, img.At(x, y))
			}
		}
		return newImg
	case 5: // Transpose (rotate 90 clockwise and flip)
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(y, width-1-x, img.At(x, y))
			}
		}
		return newImg
	case 6: // Rotate 90 clockwise
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(height-1-y, x, img.At(x, y))
			}
		}
		return newImg
	case 7: // Transverse (rotate 90 counter-clockwise and flip)
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(height-1-y, x, img.At(x, y))
			}
		}
		return newImg
	case 8: // Rotate 90 counter-clockwise
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(y, width-1-x, img.At(x, y))
			}
		}
		return newImg
	default: // Orientation 1 or unknown
		return img
	}
}

// Encoder converts uploaded PNG/JPEG images into the base64 PNG form
// the inference backend expects.
type Encoder struct {
	// MaxDimension caps the larger image side before re-encoding.
	// 0 keeps the original dimensions, making the PNG round-trip
	// lossless.
	MaxDimension int
}

// EncodeBase64 decodes the uploaded image, corrects its EXIF
// orientation, re-encodes it as PNG and returns the base64 string.
// A corrupt image is a hard failure for the request.
func (e *Encoder) EncodeBase64(data []byte) (string, error) {
	orientation := GetImageOrientation(data)

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if orientation != 1 {
		img = CorrectImageOrientation(img, orientation)
		log.Infof("Applied orientation correction: %d", orientation)
	}

	if e.MaxDimension > 0 {
		img = downscale(img, e.MaxDimension)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image as PNG: %w", err)
	}

	bounds := img.Bounds()
	log.Debugf("Encoded %s image: %dx%d, %d PNG bytes", format, bounds.Dx(), bounds.Dy(), buf.Len())

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// downscale scales the image to fit within maxDim while preserving
// aspect ratio. Images already within the limit are returned as-is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	if originalWidth <= maxDim && originalHeight <= maxDim {
		return img
	}

	scaleX := float64(maxDim) / float64(originalWidth)
	scaleY := float64(maxDim) / float64(originalHeight)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	newWidth := int(float64(originalWidth) * scale)
	newHeight := int(float64(originalHeight) * scale)
	if newWidth > maxDim {
		newWidth = maxDim
	}
	if newHeight > maxDim {
		newHeight = maxDim
	}

	newImg := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(newImg, newImg.Bounds(), img, img.Bounds(), draw.Over, nil)

	log.Infof("Image downscaled: %dx%d -> %dx%d", originalWidth, originalHeight, newWidth, newHeight)
	return newImg
}
