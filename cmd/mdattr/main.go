package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/mdattr"
	"pkt.systems/mdattr/internal/pdfinspect"
	"pkt.systems/mdattr/pdf"
	"pkt.systems/version"
)

const (
	defaultThemeName = "default"
	defaultWidth     = 80
	defaultLogLevel  = "warn"
)

func init() {
	version.SetDefaultModule("pkt.systems/mdattr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliOptions struct {
	configPath   string
	logLevel     string
	themeName    string
	width        int
	osc8         string
	softWrap     bool
	listThemes   bool
	showVersion  bool
	outPath      string
	boring       bool
	jsonMode     bool
	pdfMode      bool
	pdfDocuments bool
	documentsDir string
	verify       bool
	frontMatter  bool
	typographer  bool
	softBreaks   bool
	pdf          pdf.Config
}

func newFlagSet(o *cliOptions, stderr io.Writer) *pflag.FlagSet {
	pdfDefaults := pdf.DefaultConfig()
	o.pdf = pdfDefaults

	flags := pflag.NewFlagSet("mdattr", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&o.configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&o.logLevel, "log-level", defaultLogLevel, "Log level: debug|info|warn|error")
	flags.StringVarP(&o.themeName, "theme", "t", defaultThemeName, "Theme name")
	flags.IntVarP(&o.width, "width", "w", 0, "Output width override (0 uses terminal width if available)")
	flags.StringVarP(&o.osc8, "osc8", "8", "auto", "OSC8 hyperlinks: auto|on|off")
	flags.BoolVar(&o.softWrap, "soft-wrap", false, "Break words longer than the line width")
	flags.BoolVar(&o.listThemes, "list-themes", false, "List available themes")
	flags.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	flags.StringVarP(&o.outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&o.boring, "boring", "b", false, "Generate non-ANSI output or boring PDF")
	flags.BoolVar(&o.jsonMode, "json", false, "Dump the attributed string as JSON")
	flags.BoolVar(&o.pdfMode, "pdf", false, "Generate a PDF instead of ANSI output")
	flags.BoolVar(&o.pdfDocuments, "pdf-documents", false, "Write the PDF into the documents directory and print its path")
	flags.StringVar(&o.documentsDir, "documents-dir", "", "Documents directory override for --pdf-documents")
	flags.BoolVar(&o.verify, "verify", false, "Validate the generated PDF and print a summary to stderr")
	flags.BoolVar(&o.frontMatter, "front-matter", true, "Strip and read leading front matter")
	flags.BoolVar(&o.typographer, "typographer", false, "Use typographic quotes and dashes")
	flags.BoolVar(&o.softBreaks, "soft-breaks", false, "Keep soft line breaks instead of joining lines")

	flags.StringVar(&o.pdf.PageSize, "pdf-page-size", pdfDefaults.PageSize, "PDF page size")
	flags.Float64Var(&o.pdf.Margin, "pdf-margin", pdfDefaults.Margin, "Page margin in points")
	flags.Float64Var(&o.pdf.LineHeight, "pdf-line-height", pdfDefaults.LineHeight, "Line height multiplier")
	flags.Float64Var(&o.pdf.FontSize, "pdf-font-size", pdfDefaults.FontSize, "Base font size in points")
	flags.Float64Var(&o.pdf.HeadingScale[0], "pdf-h1-scale", pdfDefaults.HeadingScale[0], "Scale factor for H1 headings")
	flags.Float64Var(&o.pdf.HeadingScale[1], "pdf-h2-scale", pdfDefaults.HeadingScale[1], "Scale factor for H2 headings")
	flags.Float64Var(&o.pdf.HeadingScale[2], "pdf-h3-scale", pdfDefaults.HeadingScale[2], "Scale factor for H3 headings")
	flags.StringVar(&o.pdf.FontFamily, "pdf-font-family", pdfDefaults.FontFamily, "Core font family for body text")
	flags.StringVar(&o.pdf.MonoFontFamily, "pdf-mono-font-family", pdfDefaults.MonoFontFamily, "Core font family for code")
	flags.StringVar(&o.pdf.RegularFont, "pdf-regular-font", "", "TTF path for regular font")
	flags.StringVar(&o.pdf.BoldFont, "pdf-bold-font", "", "TTF path for bold font")
	flags.StringVar(&o.pdf.ItalicFont, "pdf-italic-font", "", "TTF path for italic font")
	flags.StringVar(&o.pdf.BoldItalicFont, "pdf-bold-italic-font", "", "TTF path for bold-italic font")
	flags.StringVar(&o.pdf.MonoFont, "pdf-mono-font", "", "TTF path for code font")
	flags.BoolVar(&o.pdf.Themed, "pdf-themed", false, "Use theme colors on a dark page")
	flags.BoolVar(&o.pdf.PageNumbers, "pdf-page-numbers", false, "Print page numbers in the footer")
	flags.StringVar(&o.pdf.Title, "pdf-title", "", "Document title (defaults to front matter or first heading)")
	flags.StringVar(&o.pdf.Author, "pdf-author", "", "Document author")
	flags.StringVar(&o.pdf.Subject, "pdf-subject", "", "Document subject")
	flags.StringSliceVar(&o.pdf.Keywords, "pdf-keywords", nil, "Document keywords")
	flags.StringVar(&o.pdf.CornerImagePath, "corner-image", "", "Corner image path (PNG, JPEG, GIF or WebP)")
	flags.Float64Var(&o.pdf.CornerImageMaxWidth, "corner-image-max-width", pdfDefaults.CornerImageMaxWidth, "Corner image max width in points")
	flags.Float64Var(&o.pdf.CornerImageMaxHeight, "corner-image-max-height", pdfDefaults.CornerImageMaxHeight, "Corner image max height in points")
	flags.Float64Var(&o.pdf.CornerImagePadding, "corner-image-padding", pdfDefaults.CornerImagePadding, "Corner image padding in points")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdattr [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	return flags
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var o cliOptions
	flags := newFlagSet(&o, stderr)
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	if o.configPath != "" {
		file, err := loadConfig(normalizePath(o.configPath))
		if err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return 2
		}
		o.applyFile(file, flags.Changed)
	} else {
		o.pdf = mergePDFConfig(pdf.Config{}, o.pdf, flags.Changed)
	}

	logger := newLogger(stderr, o.logLevel)

	if o.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if o.listThemes {
		printThemes(stdout)
		return 0
	}

	theme, ok := mdattr.ThemeByName(o.themeName)
	if !ok {
		fmt.Fprintf(stderr, "unknown theme %q\n\n", o.themeName)
		printThemes(stderr)
		return 2
	}

	reader, closer, err := openInputs(ctx, flags.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "open input: %v\n", err)
		return 1
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	if !o.pdfMode && o.outPath != "" && strings.HasSuffix(strings.ToLower(o.outPath), ".pdf") {
		logger.Warn().Str("output", o.outPath).Msg("output ends with .pdf; enabling --pdf")
		o.pdfMode = true
	}
	if o.pdfDocuments {
		o.pdfMode = true
	}
	convert := o.convertOptions()

	switch {
	case o.jsonMode:
		return o.runJSON(reader, stdout, stderr, convert)
	case o.pdfMode:
		return o.runPDF(ctx, reader, stdout, stderr, theme, convert, logger)
	}

	writer, closeOut, err := resolveOutput(o.outPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}
	osc8, err := resolveOSC8(o.osc8)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --osc8 %q: %v\n", o.osc8, err)
		return 2
	}
	if o.boring {
		theme = boringTheme()
		osc8 = false
	}
	if err := mdattr.Render(mdattr.RenderRequest{
		Reader:  reader,
		Writer:  writer,
		Width:   resolveWidth(o.width, writer),
		Theme:   theme,
		Options: []mdattr.RenderOption{mdattr.WithOSC8(osc8), mdattr.WithSoftWrap(o.softWrap)},
		Convert: convert,
	}); err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	return 0
}

func (o *cliOptions) convertOptions() []mdattr.Option {
	return []mdattr.Option{
		mdattr.WithFrontMatter(o.frontMatter),
		mdattr.WithTypographer(o.typographer),
		mdattr.WithSoftBreaks(o.softBreaks),
	}
}

type jsonDocument struct {
	Title    string                   `json:"title,omitempty"`
	Author   string                   `json:"author,omitempty"`
	Subject  string                   `json:"subject,omitempty"`
	Keywords []string                 `json:"keywords,omitempty"`
	Date     *time.Time               `json:"date,omitempty"`
	Text     *mdattr.AttributedString `json:"content"`
}

func (o *cliOptions) runJSON(r io.Reader, stdout, stderr io.Writer, convert []mdattr.Option) int {
	doc, err := mdattr.ConvertReader(r, convert...)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}
	out := jsonDocument{
		Title:    doc.Meta.Title,
		Author:   doc.Meta.Author,
		Subject:  doc.Meta.Subject,
		Keywords: doc.Meta.Keywords,
		Text:     doc.Text,
	}
	if !doc.Meta.Date.IsZero() {
		out.Date = &doc.Meta.Date
	}
	writer, closeOut, err := resolveOutput(o.outPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

func (o *cliOptions) runPDF(ctx context.Context, r io.Reader, stdout, stderr io.Writer, theme mdattr.Theme, convert []mdattr.Option, logger *log.Logger) int {
	cfg, err := o.pdfConfig()
	if err != nil {
		fmt.Fprintf(stderr, "pdf fonts: %v\n", err)
		return 2
	}
	src, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(stderr, "read input: %v\n", err)
		return 1
	}
	exporter := &pdf.Exporter{
		Config:       cfg,
		Theme:        theme,
		Options:      convert,
		DocumentsDir: o.documentsDir,
		Logger:       logger,
	}

	switch {
	case o.pdfDocuments:
		path, err := exporter.ExportToDocuments(ctx, string(src))
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, path)
		return o.verifyFile(path, stderr)
	case strings.TrimSpace(o.outPath) != "":
		path := normalizePath(o.outPath)
		if err := exporter.Export(ctx, string(src), path); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		return o.verifyFile(path, stderr)
	}

	if isTerminal(stdout) {
		fmt.Fprintln(stderr, "refusing to write PDF to terminal; use -o/--output or --pdf-documents")
		return 2
	}
	var buf bytes.Buffer
	if err := pdf.Render(pdf.RenderRequest{
		Reader:  bytes.NewReader(src),
		Writer:  &buf,
		Theme:   theme,
		Config:  cfg,
		Convert: convert,
	}); err != nil {
		fmt.Fprintf(stderr, "render pdf: %v\n", err)
		return 1
	}
	if o.verify {
		report, err := pdfinspect.InspectBytes(buf.Bytes())
		if err != nil {
			fmt.Fprintf(stderr, "verify: %v\n", err)
			return 1
		}
		printReport(stderr, "stdout", report)
	}
	if _, err := stdout.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(stderr, "write pdf: %v\n", err)
		return 1
	}
	return 0
}

// pdfConfig finalises the PDF settings gathered from flags and the config
// file.
func (o *cliOptions) pdfConfig() (pdf.Config, error) {
	cfg := o.pdf
	if o.boring {
		cfg.Boring = true
	}
	fonts := []struct {
		name string
		path *string
	}{
		{"regular font", &cfg.RegularFont},
		{"bold font", &cfg.BoldFont},
		{"italic font", &cfg.ItalicFont},
		{"bold-italic font", &cfg.BoldItalicFont},
		{"mono font", &cfg.MonoFont},
	}
	for _, f := range fonts {
		if strings.TrimSpace(*f.path) == "" {
			continue
		}
		*f.path = normalizePath(strings.TrimSpace(*f.path))
		if err := ensureFont(*f.path); err != nil {
			return cfg, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if cfg.RegularFont != "" || cfg.BoldFont != "" || cfg.ItalicFont != "" {
		if cfg.RegularFont == "" || cfg.BoldFont == "" || cfg.ItalicFont == "" {
			return cfg, fmt.Errorf("regular, bold, and italic fonts must all be provided")
		}
	}
	if cfg.CornerImagePath != "" {
		cfg.CornerImagePath = normalizePath(cfg.CornerImagePath)
	}
	return cfg, nil
}

func (o *cliOptions) verifyFile(path string, stderr io.Writer) int {
	if !o.verify {
		return 0
	}
	report, err := pdfinspect.InspectFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "verify %s: %v\n", path, err)
		return 1
	}
	printReport(stderr, path, report)
	return 0
}

func printReport(w io.Writer, name string, report pdfinspect.Report) {
	fmt.Fprintf(w, "%s: %d pages, %d bytes", name, report.Pages, report.Size)
	if report.Title != "" {
		fmt.Fprintf(w, ", title %q", report.Title)
	}
	if report.Author != "" {
		fmt.Fprintf(w, ", author %q", report.Author)
	}
	fmt.Fprintln(w)
}

func newLogger(w io.Writer, level string) *log.Logger {
	return &log.Logger{
		Level:  log.ParseLevel(level),
		Writer: &log.ConsoleWriter{Writer: w, ColorOutput: isTerminal(w)},
	}
}

func printThemes(w io.Writer) {
	names := mdattr.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

func resolveWidth(width int, w io.Writer) int {
	if width > 0 {
		return width
	}
	return terminalWidth(w, defaultWidth)
}

func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if cols, err := strconv.Atoi(value); err == nil && cols > 0 {
			return cols
		}
	}
	return fallback
}

func resolveOSC8(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return mdattr.DetectOSC8Support(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}

func boringTheme() mdattr.Theme {
	return mdattr.PlainTheme()
}

func resolveOutput(path string, stdout io.Writer) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func ensureFont(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory")
	}
	if !strings.HasSuffix(strings.ToLower(info.Name()), ".ttf") {
		return fmt.Errorf("expected .ttf font file")
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
