// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package media processes uploaded listing photos: decode, EXIF auto-rotate,
// downscale and re-encode, then store with a public URL.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

const (
	// MaxPhotoWidth is the longest allowed edge after processing. Listing
	// photos are display assets; anything larger wastes bandwidth.
	MaxPhotoWidth = 1920

	// photoQuality is the JPEG quality of processed photos.
	photoQuality = 80
)

// Processor normalizes listing photos to bounded JPEG output.
type Processor struct{}

// NewProcessor creates a photo processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process reads an uploaded photo and returns it as a normalized JPEG:
// auto-rotated per EXIF, fitted within MaxPhotoWidth and stripped of
// metadata by re-encoding.
func (p *Processor) Process(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo data: %w", err)
	}

	if !isSupportedFormat(data) {
		return nil, fmt.Errorf("unsupported photo format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	if bounds.Dx() > MaxPhotoWidth || bounds.Dy() > MaxPhotoWidth {
		img = imaging.Fit(img, MaxPhotoWidth, MaxPhotoWidth, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: photoQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

// isSupportedFormat checks raw bytes against the accepted photo formats.
func isSupportedFormat(data []byte) bool {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return false
	}
	switch {
	case strings.Contains(contentType, "jpeg"),
		strings.Contains(contentType, "png"),
		strings.Contains(contentType, "gif"),
		strings.Contains(contentType, "webp"):
		return true
	default:
		return false
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
