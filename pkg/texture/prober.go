package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/rawscene/pkg/raw"
)

// ErrUnsupportedFormat is returned for files that are not a known image format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Prober reads image headers, and optionally pixels, to fill in texture
// properties. It implements raw.ImageProber.
type Prober struct {
	// DetectAlpha decodes the whole image to find non-opaque texels.
	DetectAlpha bool
}

// NewProber returns a prober with alpha detection enabled.
func NewProber() *Prober {
	return &Prober{DetectAlpha: true}
}

// Format reports the image format of data, sniffing magic bytes first and
// falling back to the file extension for formats without a signature.
func Format(data []byte, fileName string) (string, error) {
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown {
		if kind.MIME.Type != "image" {
			return "", fmt.Errorf("%s is %s: %w", fileName, kind.MIME.Value, ErrUnsupportedFormat)
		}
		return kind.MIME.Subtype, nil
	}
	if strings.EqualFold(filepath.Ext(fileName), ".tga") {
		return "tga", nil
	}
	return "", fmt.Errorf("%s: %w", fileName, ErrUnsupportedFormat)
}

// Probe implements raw.ImageProber.
func (p *Prober) Probe(path string) (raw.ImageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return raw.ImageInfo{}, fmt.Errorf("read texture: %w", err)
	}
	format, err := Format(data, path)
	if err != nil {
		return raw.ImageInfo{}, err
	}

	var cfg image.Config
	if format == "tga" {
		cfg, err = tga.DecodeConfig(bytes.NewReader(data))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return raw.ImageInfo{}, fmt.Errorf("decode %s header %s: %w", format, path, err)
	}
	info := raw.ImageInfo{Width: cfg.Width, Height: cfg.Height}
	if !p.DetectAlpha {
		return info, nil
	}

	var img image.Image
	if format == "tga" {
		img, err = tga.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return info, fmt.Errorf("decode %s %s: %w", format, path, err)
	}
	info.Transparent = hasAlpha(img)
	return info, nil
}

// hasAlpha reports whether any texel of img is not fully opaque.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xFFFF {
				return true
			}
		}
	}
	return false
}
