// Package output encodes rendered images to files.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for format names and extensions with no encoder
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format names an image encoding
type Format string

// Supported formats
const (
	PNG  Format = "png"
	PPM  Format = "ppm" // Plain-text P3 pixmap
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists the supported formats
func Formats() []Format {
	return []Format{PNG, PPM, BMP, TIFF}
}

// ParseFormat resolves a format name, case-insensitively
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case PNG, PPM, BMP, TIFF:
		return f, nil
	case "tif":
		return TIFF, nil
	default:
		return "", fmt.Errorf("%w %q (supported: %v)", ErrUnsupportedFormat, name, Formats())
	}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no file extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case PNG:
		return gg.NewContextForImage(img).EncodePNG(w)
	case PPM:
		return EncodePPM(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile saves img to path, creating parent directories as needed
func WriteFile(path string, img image.Image, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if format == PNG {
		if err := gg.SavePNG(path, img); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(file, img, format); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

// EncodePPM writes a plain-text P3 pixmap, one "r g b" triplet per line,
// rows from the top of the image down
func EncodePPM(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			fmt.Fprintf(bw, "%d %d %d\n", r>>8, g>>8, b>>8)
		}
	}

	return bw.Flush()
}
