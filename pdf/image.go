package pdf

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/webp"
)

const cornerImageName = "corner-image"

type cornerImage struct {
	opts   fpdf.ImageOptions
	width  float64
	height float64
}

func imageTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	case ".webp":
		return "WEBP"
	default:
		return ""
	}
}

// openImage returns a reader fpdf can register. WebP is transcoded to PNG.
func openImage(path string) (io.Reader, string, error) {
	imageType := imageTypeForPath(path)
	if imageType == "" {
		return nil, "", fmt.Errorf("corner image must be PNG, JPEG, GIF or WebP")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read corner image: %w", err)
	}
	if imageType != "WEBP" {
		return bytes.NewReader(data), imageType, nil
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode corner image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("transcode corner image: %w", err)
	}
	return &buf, "PNG", nil
}

func prepareCornerImage(pdf *fpdf.Fpdf, cfg Config) (*cornerImage, error) {
	if cfg.CornerImagePath == "" {
		return nil, nil
	}
	r, imageType, err := openImage(cfg.CornerImagePath)
	if err != nil {
		return nil, err
	}
	opts := fpdf.ImageOptions{
		ImageType: imageType,
		ReadDpi:   true,
	}
	info := pdf.RegisterImageOptionsReader(cornerImageName, opts, r)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load corner image: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("load corner image: no image data")
	}
	width, height := info.Extent()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid corner image dimensions")
	}
	maxW, maxH := cfg.CornerImageMaxWidth, cfg.CornerImageMaxHeight
	if maxW > 0 || maxH > 0 {
		scale := 1.0
		if maxW > 0 {
			scale = math.Min(scale, maxW/width)
		}
		if maxH > 0 {
			scale = math.Min(scale, maxH/height)
		}
		width *= scale
		height *= scale
	}
	return &cornerImage{
		opts:   opts,
		width:  width,
		height: height,
	}, nil
}
