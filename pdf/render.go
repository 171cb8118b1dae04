package pdf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"pkt.systems/mdattr"
)

// RenderRequest contains inputs for PDF rendering.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Theme   mdattr.Theme
	Config  Config
	Convert []mdattr.Option
}

// Render converts Markdown read from req.Reader and writes a PDF.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("pdf render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("pdf render: writer is nil")
	}
	doc, err := mdattr.ConvertReader(req.Reader, req.Convert...)
	if err != nil {
		return fmt.Errorf("pdf render: %w", err)
	}
	_, err = renderDocument(req.Writer, doc, req.Theme, req.Config)
	return err
}

// RenderDocument writes doc as a PDF. Document metadata fills the PDF info
// fields that cfg leaves empty.
func RenderDocument(w io.Writer, doc *mdattr.Document, theme mdattr.Theme, cfg Config) error {
	_, err := renderDocument(w, doc, theme, cfg)
	return err
}

// RenderAttributed writes s as a PDF.
func RenderAttributed(w io.Writer, s *mdattr.AttributedString, theme mdattr.Theme, cfg Config) error {
	_, err := renderDocument(w, &mdattr.Document{Text: s}, theme, cfg)
	return err
}

// renderDocument returns the number of pages written.
func renderDocument(w io.Writer, doc *mdattr.Document, theme mdattr.Theme, reqCfg Config) (int, error) {
	if w == nil {
		return 0, fmt.Errorf("pdf render: writer is nil")
	}
	if doc == nil || doc.Text == nil {
		doc = &mdattr.Document{Text: mdattr.Plain("")}
	}
	cfg := DefaultConfig()
	applyConfig(&cfg, reqCfg)
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("pdf render: %w", err)
	}
	if cfg.FontSize <= 0 || cfg.LineHeight <= 0 {
		return 0, fmt.Errorf("pdf render: invalid font configuration")
	}
	resolveColors(&cfg)
	if theme == nil {
		theme = mdattr.DefaultTheme()
	}

	pdf := fpdf.New("P", "pt", cfg.PageSize, "")
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.Margin)
	fonts, err := setupFonts(pdf, cfg)
	if err != nil {
		return 0, fmt.Errorf("pdf render: %w", err)
	}
	pageW, _ := pdf.GetPageSize()
	if pageW-2*cfg.Margin < cfg.FontSize*10 {
		return 0, fmt.Errorf("pdf render: page too narrow for content")
	}
	corner, err := prepareCornerImage(pdf, cfg)
	if err != nil {
		return 0, fmt.Errorf("pdf render: %w", err)
	}
	setDocumentInfo(pdf, cfg, doc.Meta)

	st := styler{cfg: cfg, styles: theme.Styles(), fonts: fonts}
	layout := newPDFLayout(pdf, cfg, st, doc.Text, corner)
	layout.render(doc.Text.Lines())
	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("pdf render: layout: %w", err)
	}
	pages := pdf.PageCount()
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("pdf render: output: %w", err)
	}
	return pages, nil
}

func setDocumentInfo(pdf *fpdf.Fpdf, cfg Config, meta mdattr.Metadata) {
	if title := firstNonEmpty(cfg.Title, meta.Title); title != "" {
		pdf.SetTitle(title, true)
	}
	if author := firstNonEmpty(cfg.Author, meta.Author); author != "" {
		pdf.SetAuthor(author, true)
	}
	if subject := firstNonEmpty(cfg.Subject, meta.Subject); subject != "" {
		pdf.SetSubject(subject, true)
	}
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = meta.Keywords
	}
	if len(keywords) > 0 {
		pdf.SetKeywords(strings.Join(keywords, ", "), true)
	}
	pdf.SetCreator(cfg.Creator, true)
	date := cfg.CreationDate
	if date.IsZero() {
		date = meta.Date
	}
	if date.IsZero() {
		date = time.Now()
	}
	pdf.SetCreationDate(date)
	pdf.SetModificationDate(date)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
