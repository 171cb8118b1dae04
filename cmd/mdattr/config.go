package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"pkt.systems/mdattr/pdf"
)

// fileConfig is the TOML config file layout. PDF settings live under [pdf]
// and use the same keys as pdf.Config.
type fileConfig struct {
	Theme        string     `toml:"theme"`
	Width        int        `toml:"width"`
	OSC8         string     `toml:"osc8"`
	SoftWrap     bool       `toml:"soft_wrap"`
	Boring       bool       `toml:"boring"`
	LogLevel     string     `toml:"log_level"`
	FrontMatter  *bool      `toml:"front_matter"`
	Typographer  bool       `toml:"typographer"`
	SoftBreaks   bool       `toml:"soft_breaks"`
	DocumentsDir string     `toml:"documents_dir"`
	PDF          pdf.Config `toml:"pdf"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.PDF.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyFile fills options from the config file. Flags set on the command
// line win.
func (o *cliOptions) applyFile(file fileConfig, changed func(string) bool) {
	if !changed("theme") && file.Theme != "" {
		o.themeName = file.Theme
	}
	if !changed("width") && file.Width > 0 {
		o.width = file.Width
	}
	if !changed("osc8") && file.OSC8 != "" {
		o.osc8 = file.OSC8
	}
	if !changed("soft-wrap") && file.SoftWrap {
		o.softWrap = true
	}
	if !changed("boring") && file.Boring {
		o.boring = true
	}
	if !changed("log-level") && file.LogLevel != "" {
		o.logLevel = file.LogLevel
	}
	if !changed("front-matter") && file.FrontMatter != nil {
		o.frontMatter = *file.FrontMatter
	}
	if !changed("typographer") && file.Typographer {
		o.typographer = true
	}
	if !changed("soft-breaks") && file.SoftBreaks {
		o.softBreaks = true
	}
	if !changed("documents-dir") && file.DocumentsDir != "" {
		o.documentsDir = file.DocumentsDir
	}
	o.pdf = mergePDFConfig(file.PDF, o.pdf, changed)
}

var pdfFlagFields = map[string]func(dst, src *pdf.Config){
	"pdf-page-size":           func(d, s *pdf.Config) { d.PageSize = s.PageSize },
	"pdf-margin":              func(d, s *pdf.Config) { d.Margin = s.Margin },
	"pdf-line-height":         func(d, s *pdf.Config) { d.LineHeight = s.LineHeight },
	"pdf-font-size":           func(d, s *pdf.Config) { d.FontSize = s.FontSize },
	"pdf-h1-scale":            func(d, s *pdf.Config) { d.HeadingScale[0] = s.HeadingScale[0] },
	"pdf-h2-scale":            func(d, s *pdf.Config) { d.HeadingScale[1] = s.HeadingScale[1] },
	"pdf-h3-scale":            func(d, s *pdf.Config) { d.HeadingScale[2] = s.HeadingScale[2] },
	"pdf-font-family":         func(d, s *pdf.Config) { d.FontFamily = s.FontFamily },
	"pdf-mono-font-family":    func(d, s *pdf.Config) { d.MonoFontFamily = s.MonoFontFamily },
	"pdf-regular-font":        func(d, s *pdf.Config) { d.RegularFont = s.RegularFont },
	"pdf-bold-font":           func(d, s *pdf.Config) { d.BoldFont = s.BoldFont },
	"pdf-italic-font":         func(d, s *pdf.Config) { d.ItalicFont = s.ItalicFont },
	"pdf-bold-italic-font":    func(d, s *pdf.Config) { d.BoldItalicFont = s.BoldItalicFont },
	"pdf-mono-font":           func(d, s *pdf.Config) { d.MonoFont = s.MonoFont },
	"pdf-themed":              func(d, s *pdf.Config) { d.Themed = s.Themed },
	"pdf-page-numbers":        func(d, s *pdf.Config) { d.PageNumbers = s.PageNumbers },
	"pdf-title":               func(d, s *pdf.Config) { d.Title = s.Title },
	"pdf-author":              func(d, s *pdf.Config) { d.Author = s.Author },
	"pdf-subject":             func(d, s *pdf.Config) { d.Subject = s.Subject },
	"pdf-keywords":            func(d, s *pdf.Config) { d.Keywords = s.Keywords },
	"corner-image":            func(d, s *pdf.Config) { d.CornerImagePath = s.CornerImagePath },
	"corner-image-max-width":  func(d, s *pdf.Config) { d.CornerImageMaxWidth = s.CornerImageMaxWidth },
	"corner-image-max-height": func(d, s *pdf.Config) { d.CornerImageMaxHeight = s.CornerImageMaxHeight },
	"corner-image-padding":    func(d, s *pdf.Config) { d.CornerImagePadding = s.CornerImagePadding },
}

// mergePDFConfig starts from the file settings and copies every PDF flag that
// was set explicitly. Zero fields fall back to pdf.DefaultConfig at render
// time.
func mergePDFConfig(file, flagged pdf.Config, changed func(string) bool) pdf.Config {
	out := file
	for name, set := range pdfFlagFields {
		if changed(name) {
			set(&out, &flagged)
		}
	}
	return out
}
