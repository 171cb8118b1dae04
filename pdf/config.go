package pdf

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds PDF rendering settings. Zero fields take their value from
// DefaultConfig.
type Config struct {
	PageSize             string     `toml:"page_size" validate:"omitempty,oneof=A3 A4 A5 Letter Legal Tabloid a3 a4 a5 letter legal tabloid"`
	Margin               float64    `toml:"margin" validate:"gte=0,lte=288"`
	FontFamily           string     `toml:"font_family"`
	MonoFontFamily       string     `toml:"mono_font_family"`
	FontSize             float64    `toml:"font_size" validate:"gte=0,lte=96"`
	LineHeight           float64    `toml:"line_height" validate:"gte=0,lte=4"`
	HeadingScale         [6]float64 `toml:"heading_scale" validate:"dive,gte=0,lte=6"`
	RegularFont          string     `toml:"regular_font"`
	BoldFont             string     `toml:"bold_font"`
	ItalicFont           string     `toml:"italic_font"`
	BoldItalicFont       string     `toml:"bold_italic_font"`
	MonoFont             string     `toml:"mono_font"`
	RegularFontBytes     []byte     `toml:"-"`
	BoldFontBytes        []byte     `toml:"-"`
	ItalicFontBytes      []byte     `toml:"-"`
	BoldItalicFontBytes  []byte     `toml:"-"`
	MonoFontBytes        []byte     `toml:"-"`
	Themed               bool       `toml:"themed"`
	Boring               bool       `toml:"boring"`
	PageNumbers          bool       `toml:"page_numbers"`
	BackgroundRGB        [3]int     `toml:"background_rgb" validate:"dive,gte=0,lte=255"`
	TextRGB              [3]int     `toml:"text_rgb" validate:"dive,gte=0,lte=255"`
	LinkRGB              [3]int     `toml:"link_rgb" validate:"dive,gte=0,lte=255"`
	CodeBackgroundRGB    [3]int     `toml:"code_background_rgb" validate:"dive,gte=0,lte=255"`
	CornerImagePath      string     `toml:"corner_image"`
	CornerImageMaxWidth  float64    `toml:"corner_image_max_width" validate:"gte=0"`
	CornerImageMaxHeight float64    `toml:"corner_image_max_height" validate:"gte=0"`
	CornerImagePadding   float64    `toml:"corner_image_padding" validate:"gte=0"`
	Title                string     `toml:"title"`
	Author               string     `toml:"author"`
	Subject              string     `toml:"subject"`
	Keywords             []string   `toml:"keywords"`
	Creator              string     `toml:"creator"`
	CreationDate         time.Time  `toml:"creation_date"`
}

const (
	customFontFamily = "body"
	customMonoFamily = "mono"
	defaultCreator   = "mdattr"
)

var (
	themedBackgroundRGB = [3]int{0, 0, 0}
	themedTextRGB       = [3]int{220, 220, 220}
	themedCodeRGB       = [3]int{32, 32, 32}
)

var configValidator = validator.New()

// DefaultConfig returns a baseline configuration: A4 pages, Helvetica body
// text and Courier code on a white background.
func DefaultConfig() Config {
	return Config{
		PageSize:       "A4",
		Margin:         48,
		FontFamily:     "Helvetica",
		MonoFontFamily: "Courier",
		FontSize:       11,
		LineHeight:     1.4,
		HeadingScale: [6]float64{
			1.9,
			1.6,
			1.3,
			1.1,
			1.0,
			1.0,
		},
		LinkRGB:              [3]int{20, 80, 200},
		CodeBackgroundRGB:    [3]int{242, 242, 242},
		CornerImageMaxWidth:  96,
		CornerImageMaxHeight: 96,
		CornerImagePadding:   8,
		Creator:              defaultCreator,
	}
}

// Validate reports configuration values that are out of range.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyConfig(dst *Config, src Config) {
	if src.PageSize != "" {
		dst.PageSize = src.PageSize
	}
	if src.Margin > 0 {
		dst.Margin = src.Margin
	}
	if src.FontFamily != "" {
		dst.FontFamily = src.FontFamily
	}
	if src.MonoFontFamily != "" {
		dst.MonoFontFamily = src.MonoFontFamily
	}
	if src.FontSize > 0 {
		dst.FontSize = src.FontSize
	}
	if src.LineHeight > 0 {
		dst.LineHeight = src.LineHeight
	}
	for i, scale := range src.HeadingScale {
		if scale > 0 {
			dst.HeadingScale[i] = scale
		}
	}
	if src.RegularFont != "" {
		dst.RegularFont = src.RegularFont
	}
	if src.BoldFont != "" {
		dst.BoldFont = src.BoldFont
	}
	if src.ItalicFont != "" {
		dst.ItalicFont = src.ItalicFont
	}
	if src.BoldItalicFont != "" {
		dst.BoldItalicFont = src.BoldItalicFont
	}
	if src.MonoFont != "" {
		dst.MonoFont = src.MonoFont
	}
	if len(src.RegularFontBytes) > 0 {
		dst.RegularFontBytes = src.RegularFontBytes
	}
	if len(src.BoldFontBytes) > 0 {
		dst.BoldFontBytes = src.BoldFontBytes
	}
	if len(src.ItalicFontBytes) > 0 {
		dst.ItalicFontBytes = src.ItalicFontBytes
	}
	if len(src.BoldItalicFontBytes) > 0 {
		dst.BoldItalicFontBytes = src.BoldItalicFontBytes
	}
	if len(src.MonoFontBytes) > 0 {
		dst.MonoFontBytes = src.MonoFontBytes
	}
	if src.Themed {
		dst.Themed = true
	}
	if src.Boring {
		dst.Boring = true
	}
	if src.PageNumbers {
		dst.PageNumbers = true
	}
	if src.BackgroundRGB != [3]int{} {
		dst.BackgroundRGB = src.BackgroundRGB
	}
	if src.TextRGB != [3]int{} {
		dst.TextRGB = src.TextRGB
	}
	if src.LinkRGB != [3]int{} {
		dst.LinkRGB = src.LinkRGB
	}
	if src.CodeBackgroundRGB != [3]int{} {
		dst.CodeBackgroundRGB = src.CodeBackgroundRGB
	}
	if src.CornerImagePath != "" {
		dst.CornerImagePath = src.CornerImagePath
	}
	if src.CornerImageMaxWidth > 0 {
		dst.CornerImageMaxWidth = src.CornerImageMaxWidth
	}
	if src.CornerImageMaxHeight > 0 {
		dst.CornerImageMaxHeight = src.CornerImageMaxHeight
	}
	if src.CornerImagePadding > 0 {
		dst.CornerImagePadding = src.CornerImagePadding
	}
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Author != "" {
		dst.Author = src.Author
	}
	if src.Subject != "" {
		dst.Subject = src.Subject
	}
	if len(src.Keywords) > 0 {
		dst.Keywords = src.Keywords
	}
	if src.Creator != "" {
		dst.Creator = src.Creator
	}
	if !src.CreationDate.IsZero() {
		dst.CreationDate = src.CreationDate
	}
}

// resolveColors fills in the palette for the chosen mode.
func resolveColors(cfg *Config) {
	switch {
	case cfg.Boring:
		cfg.Themed = false
		cfg.TextRGB = [3]int{0, 0, 0}
		cfg.LinkRGB = [3]int{0, 0, 0}
	case cfg.Themed:
		if cfg.TextRGB == [3]int{} {
			cfg.TextRGB = themedTextRGB
		}
		if cfg.BackgroundRGB == [3]int{} {
			cfg.BackgroundRGB = themedBackgroundRGB
		}
		if cfg.CodeBackgroundRGB == DefaultConfig().CodeBackgroundRGB {
			cfg.CodeBackgroundRGB = themedCodeRGB
		}
	}
}
