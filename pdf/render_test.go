package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/mdattr"
	"pkt.systems/mdattr/internal/pdfinspect"
)

const kitchenSink = `---
title: Kitchen Sink
author: Ada
keywords: [markdown, pdf]
---
# Kitchen Sink

Some *emphasis*, **strong**, ~~struck~~ and ` + "`code`" + ` with a [link](https://example.com).

## Lists

- one
- two
  1. nested
  2. items
- [x] done
- [ ] todo

> quoted text
>
> > nested quote

` + "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```" + `

---

| Name | Value |
|------|------:|
| a    | 1     |
| b    | 2     |

<div>raw html</div>

![logo](https://example.com/logo.png)
`

func renderBytes(t *testing.T, markdown string, cfg Config) []byte {
	t.Helper()
	var out bytes.Buffer
	err := Render(RenderRequest{
		Reader: strings.NewReader(markdown),
		Writer: &out,
		Theme:  mdattr.DefaultTheme(),
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("%PDF")) {
		t.Fatalf("unexpected pdf header: %q", out.Bytes()[:min(8, out.Len())])
	}
	return out.Bytes()
}

func inspect(t *testing.T, data []byte) pdfinspect.Report {
	t.Helper()
	report, err := pdfinspect.InspectBytes(data)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	return report
}

func TestRenderPDFWithCoreFonts(t *testing.T) {
	data := renderBytes(t, "# Title\n\nThis is [a link](http://example.com/).", Config{
		PageSize:   "A4",
		Margin:     36,
		FontFamily: "Courier",
		FontSize:   12,
		LineHeight: 1.4,
	})
	if report := inspect(t, data); report.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", report.Pages)
	}
}

func TestRenderPDFSkipsUnsupportedRunes(t *testing.T) {
	data := renderBytes(t, "# Title\n\nEmoji 😀 should be ignored. ─── 漢字\n", Config{FontFamily: "Courier"})
	inspect(t, data)
}

func TestRenderKitchenSinkAllModes(t *testing.T) {
	cases := map[string]Config{
		"paper":  {},
		"themed": {Themed: true},
		"boring": {Boring: true},
		"letter": {PageSize: "Letter", PageNumbers: true, FontFamily: "Times"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			report := inspect(t, renderBytes(t, kitchenSink, cfg))
			if report.Pages < 1 {
				t.Fatalf("expected pages, got %d", report.Pages)
			}
		})
	}
}

func TestRenderWritesText(t *testing.T) {
	data := renderBytes(t, "Hello PDF.\n", Config{})
	pages, err := pdfinspect.PageContents(data)
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	content := pages[1]
	for _, want := range []string{"(Hello)", "(PDF.)"} {
		if !strings.Contains(content, want) {
			t.Fatalf("page content missing %s:\n%s", want, content)
		}
	}
}

func TestRenderLongDocumentPaginates(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, "Paragraph %d with enough words to wrap across the width of the page at least once or twice.\n\n", i)
	}
	b.WriteString("```\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "line %d of a long code block that is also wide enough to be cut at the right margin of the page\n", i)
	}
	b.WriteString("```\n")
	report := inspect(t, renderBytes(t, b.String(), Config{}))
	if report.Pages < 3 {
		t.Fatalf("expected several pages, got %d", report.Pages)
	}
}

func TestRenderPageNumbers(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&b, "Paragraph %d.\n\n", i)
	}
	data := renderBytes(t, b.String(), Config{PageNumbers: true})
	report := inspect(t, data)
	pages, err := pdfinspect.PageContents(data)
	if err != nil {
		t.Fatalf("contents: %v", err)
	}
	want := fmt.Sprintf("(1 / %d)", report.Pages)
	if !strings.Contains(pages[1], want) {
		t.Fatalf("first page missing %s", want)
	}
}

func TestRenderDocumentMetadata(t *testing.T) {
	data := renderBytes(t, kitchenSink, Config{CreationDate: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	report := inspect(t, data)
	if report.Title != "Kitchen Sink" {
		t.Fatalf("title = %q", report.Title)
	}
	if report.Author != "Ada" {
		t.Fatalf("author = %q", report.Author)
	}
	if !strings.Contains(report.Keywords, "markdown") {
		t.Fatalf("keywords = %q", report.Keywords)
	}
	if report.Creator != defaultCreator {
		t.Fatalf("creator = %q", report.Creator)
	}

	overridden := inspect(t, renderBytes(t, kitchenSink, Config{Title: "Override"}))
	if overridden.Title != "Override" {
		t.Fatalf("config title should win, got %q", overridden.Title)
	}
}

func TestRenderAttributed(t *testing.T) {
	var out bytes.Buffer
	text := mdattr.Convert("# Heading\n\nBody text.\n")
	if err := RenderAttributed(&out, text, nil, Config{}); err != nil {
		t.Fatalf("render attributed: %v", err)
	}
	inspect(t, out.Bytes())

	out.Reset()
	if err := RenderAttributed(&out, mdattr.Plain(""), nil, Config{}); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if report := inspect(t, out.Bytes()); report.Pages != 1 {
		t.Fatalf("empty document should have one page, got %d", report.Pages)
	}
}

func TestRenderRequestValidation(t *testing.T) {
	if err := Render(RenderRequest{Writer: &bytes.Buffer{}}); err == nil {
		t.Fatalf("expected error for nil reader")
	}
	if err := Render(RenderRequest{Reader: strings.NewReader("x")}); err == nil {
		t.Fatalf("expected error for nil writer")
	}
	if err := RenderDocument(nil, nil, nil, Config{}); err == nil {
		t.Fatalf("expected error for nil writer")
	}
}

func TestRenderRejectsInvalidConfig(t *testing.T) {
	cases := map[string]Config{
		"font size": {FontSize: 200},
		"page size": {PageSize: "B9"},
		"color":     {TextRGB: [3]int{300, 0, 0}},
		"narrow":    {Margin: 288, PageSize: "A5"},
	}
	for name, cfg := range cases {
		var out bytes.Buffer
		err := Render(RenderRequest{Reader: strings.NewReader("x"), Writer: &out, Config: cfg})
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.HasPrefix(err.Error(), "pdf render:") {
			t.Fatalf("%s: unexpected error format: %v", name, err)
		}
	}
}

func TestRenderFontErrors(t *testing.T) {
	cases := map[string]Config{
		"unknown core":   {FontFamily: "Comic"},
		"unknown mono":   {MonoFontFamily: "Fixedsys"},
		"not truetype":   {RegularFontBytes: []byte("nope"), BoldFontBytes: []byte("nope"), ItalicFontBytes: []byte("nope")},
		"incomplete set": {RegularFont: writeJunk(t, "regular.ttf")},
		"missing file":   {RegularFont: "/nonexistent/regular.ttf", BoldFont: "/nonexistent/bold.ttf", ItalicFont: "/nonexistent/italic.ttf"},
		"bad mono ttf":   {MonoFontBytes: []byte("nope")},
	}
	for name, cfg := range cases {
		var out bytes.Buffer
		err := Render(RenderRequest{Reader: strings.NewReader("x"), Writer: &out, Config: cfg})
		if !errors.Is(err, ErrFontConfig) {
			t.Fatalf("%s: expected ErrFontConfig, got %v", name, err)
		}
	}
}

func writeJunk(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "corner.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestRenderCornerImage(t *testing.T) {
	path := writePNG(t, 64, 32)
	data := renderBytes(t, kitchenSink, Config{CornerImagePath: path, CornerImageMaxWidth: 48})
	inspect(t, data)

	var out bytes.Buffer
	err := Render(RenderRequest{
		Reader: strings.NewReader("x"),
		Writer: &out,
		Config: Config{CornerImagePath: writeJunk(t, "corner.bmp")},
	})
	if err == nil {
		t.Fatalf("expected error for unsupported corner image")
	}
}

func TestImageTypeForPath(t *testing.T) {
	cases := map[string]string{
		"/tmp/foo.png":  "PNG",
		"/tmp/foo.jpg":  "JPG",
		"/tmp/foo.jpeg": "JPG",
		"/tmp/foo.GIF":  "GIF",
		"/tmp/foo.webp": "WEBP",
		"/tmp/foo.bmp":  "",
	}
	for path, want := range cases {
		if got := imageTypeForPath(path); got != want {
			t.Fatalf("imageTypeForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestApplyConfigMergesNonZero(t *testing.T) {
	cfg := DefaultConfig()
	applyConfig(&cfg, Config{FontSize: 14, HeadingScale: [6]float64{2}, Themed: true, Keywords: []string{"a"}})
	if cfg.FontSize != 14 {
		t.Fatalf("font size = %v", cfg.FontSize)
	}
	if cfg.HeadingScale[0] != 2 || cfg.HeadingScale[1] != DefaultConfig().HeadingScale[1] {
		t.Fatalf("heading scale merge = %v", cfg.HeadingScale)
	}
	if !cfg.Themed || cfg.FontFamily != "Helvetica" || len(cfg.Keywords) != 1 {
		t.Fatalf("unexpected merge result: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
