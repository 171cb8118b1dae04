package pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
)

// ErrFontConfig reports an unusable font configuration.
var ErrFontConfig = errors.New("font configuration")

type fontSet struct {
	body       string
	mono       string
	boldItalic bool
	bodyUTF8   bool
	monoUTF8   bool
	translate  func(string) string
}

// encode converts text to the byte encoding the font family expects.
func (f fontSet) encode(text string, mono bool) string {
	utf8 := f.bodyUTF8
	if mono {
		utf8 = f.monoUTF8
	}
	if utf8 || f.translate == nil {
		return text
	}
	return f.translate(text)
}

type fontFace struct {
	style string
	path  string
	data  []byte
}

func isCoreFont(name string) bool {
	switch name {
	case "Courier", "Helvetica", "Arial", "Times":
		return true
	default:
		return false
	}
}

// setupFonts registers the configured fonts with pdf.
func setupFonts(pdf *fpdf.Fpdf, cfg Config) (fontSet, error) {
	set := fontSet{
		body:       cfg.FontFamily,
		mono:       cfg.MonoFontFamily,
		boldItalic: true,
	}
	bodyFaces := []fontFace{
		{style: "", path: cfg.RegularFont, data: cfg.RegularFontBytes},
		{style: "B", path: cfg.BoldFont, data: cfg.BoldFontBytes},
		{style: "I", path: cfg.ItalicFont, data: cfg.ItalicFontBytes},
		{style: "BI", path: cfg.BoldItalicFont, data: cfg.BoldItalicFontBytes},
	}
	custom := false
	for _, face := range bodyFaces {
		if face.path != "" || len(face.data) > 0 {
			custom = true
		}
	}
	if custom {
		for i := range bodyFaces {
			data, err := loadFont(bodyFaces[i])
			if err != nil {
				return fontSet{}, err
			}
			bodyFaces[i].data = data
		}
		if len(bodyFaces[0].data) == 0 || len(bodyFaces[1].data) == 0 || len(bodyFaces[2].data) == 0 {
			return fontSet{}, fmt.Errorf("%w: regular, bold and italic fonts are required together", ErrFontConfig)
		}
		set.body = customFontFamily
		set.bodyUTF8 = true
		set.boldItalic = len(bodyFaces[3].data) > 0
		for _, face := range bodyFaces {
			if len(face.data) > 0 {
				pdf.AddUTF8FontFromBytes(set.body, face.style, face.data)
			}
		}
	} else if !isCoreFont(cfg.FontFamily) {
		return fontSet{}, fmt.Errorf("%w: %q is not a core font and no font files are set", ErrFontConfig, cfg.FontFamily)
	}

	if cfg.MonoFont != "" || len(cfg.MonoFontBytes) > 0 {
		data, err := loadFont(fontFace{path: cfg.MonoFont, data: cfg.MonoFontBytes})
		if err != nil {
			return fontSet{}, err
		}
		set.mono = customMonoFamily
		set.monoUTF8 = true
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8FontFromBytes(set.mono, style, data)
		}
	} else if !isCoreFont(cfg.MonoFontFamily) {
		return fontSet{}, fmt.Errorf("%w: %q is not a core font and no mono font file is set", ErrFontConfig, cfg.MonoFontFamily)
	}

	if !set.bodyUTF8 || !set.monoUTF8 {
		set.translate = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return fontSet{}, fmt.Errorf("%w: %w", ErrFontConfig, err)
	}
	return set, nil
}

// loadFont reads a face from disk when only its path is set and checks
// that the bytes parse as TrueType.
func loadFont(face fontFace) ([]byte, error) {
	data := face.data
	name := face.path
	if len(data) == 0 && face.path != "" {
		var err error
		data, err = os.ReadFile(face.path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrFontConfig, face.path, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	if name == "" {
		name = "embedded font"
	}
	if _, err := truetype.Parse(data); err != nil {
		return nil, fmt.Errorf("%w: %s is not a TrueType font: %w", ErrFontConfig, name, err)
	}
	return data, nil
}
