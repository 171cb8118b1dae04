package pdf

import (
	"testing"

	"pkt.systems/mdattr"
)

func TestParseANSIPrefix(t *testing.T) {
	attrs := parseANSIPrefix("\x1b[1;3;4;38;5;81m", [3]int{1, 2, 3})
	if !attrs.bold {
		t.Fatalf("expected bold")
	}
	if !attrs.italic {
		t.Fatalf("expected italic")
	}
	if !attrs.underline {
		t.Fatalf("expected underline")
	}
	want := [3]int{95, 215, 255}
	if attrs.color != want {
		t.Fatalf("unexpected color: %+v", attrs.color)
	}
}

func TestParseANSIPrefixStrikeAndReset(t *testing.T) {
	attrs := parseANSIPrefix("\x1b[9m\x1b[38;5;196m", [3]int{1, 2, 3})
	if !attrs.strike || !attrs.colorSet {
		t.Fatalf("expected strike with color, got %+v", attrs)
	}
	attrs = parseANSIPrefix("\x1b[9m\x1b[0m", [3]int{1, 2, 3})
	if attrs.strike || attrs.colorSet || attrs.color != [3]int{1, 2, 3} {
		t.Fatalf("expected reset to defaults, got %+v", attrs)
	}
}

func TestStyleToFontStyle(t *testing.T) {
	attrs := ansiAttrs{bold: true, italic: true}
	got := styleToFontStyle(attrs, false, false)
	if got != "B" {
		t.Fatalf("expected bold-only fallback, got %q", got)
	}
	got = styleToFontStyle(attrs, false, true)
	if got != "BI" {
		t.Fatalf("expected bold-italic when allowed, got %q", got)
	}
	got = styleToFontStyle(ansiAttrs{underline: true, strike: true}, true, true)
	if got != "BUS" {
		t.Fatalf("expected BUS, got %q", got)
	}
}

func testStyler(cfg Config, theme mdattr.Theme) styler {
	merged := DefaultConfig()
	applyConfig(&merged, cfg)
	resolveColors(&merged)
	return styler{
		cfg:    merged,
		styles: theme.Styles(),
		fonts:  fontSet{body: merged.FontFamily, mono: merged.MonoFontFamily, boldItalic: true},
	}
}

func TestHeadingScaleApplied(t *testing.T) {
	st := testStyler(Config{}, mdattr.DefaultTheme())
	cfg := st.cfg
	h1 := st.styleFor(mdattr.Attributes{Flags: mdattr.AttrHeading, HeadingLevel: 1})
	if h1.size != cfg.FontSize*cfg.HeadingScale[0] {
		t.Fatalf("unexpected h1 size: got %v want %v", h1.size, cfg.FontSize*cfg.HeadingScale[0])
	}
	if h1.fontFamily != cfg.FontFamily {
		t.Fatalf("unexpected h1 family: got %q want %q", h1.fontFamily, cfg.FontFamily)
	}
	if h1.fontStyle != "B" {
		t.Fatalf("expected bold h1, got %q", h1.fontStyle)
	}
	h4 := st.styleFor(mdattr.Attributes{Flags: mdattr.AttrHeading, HeadingLevel: 4})
	if h4.size != cfg.FontSize*cfg.HeadingScale[3] {
		t.Fatalf("unexpected h4 size: got %v want %v", h4.size, cfg.FontSize*cfg.HeadingScale[3])
	}
	body := st.styleFor(mdattr.Attributes{})
	if body.size != cfg.FontSize || body.fontStyle != "" {
		t.Fatalf("unexpected body style: %+v", body)
	}
}

func TestStyleForInlineAttributes(t *testing.T) {
	st := testStyler(Config{}, mdattr.DefaultTheme())
	cases := []struct {
		name  string
		attrs mdattr.Attributes
		style string
		mono  bool
	}{
		{name: "strong", attrs: mdattr.Attributes{Flags: mdattr.AttrStrong}, style: "B"},
		{name: "emphasis", attrs: mdattr.Attributes{Flags: mdattr.AttrEmphasis}, style: "I"},
		{name: "both", attrs: mdattr.Attributes{Flags: mdattr.AttrStrong | mdattr.AttrEmphasis}, style: "BI"},
		{name: "strike", attrs: mdattr.Attributes{Flags: mdattr.AttrStrikethrough}, style: "S"},
		{name: "code", attrs: mdattr.Attributes{Flags: mdattr.AttrCode}, mono: true},
		{name: "code block", attrs: mdattr.Attributes{Flags: mdattr.AttrCodeBlock}, mono: true},
		{name: "link", attrs: mdattr.Attributes{Flags: mdattr.AttrLink, URL: "https://example.com"}, style: "U"},
		{name: "table header", attrs: mdattr.Attributes{Flags: mdattr.AttrTable | mdattr.AttrTableHeader}, style: "B"},
	}
	for _, tc := range cases {
		got := st.styleFor(tc.attrs)
		if got.fontStyle != tc.style {
			t.Fatalf("%s: font style = %q, want %q", tc.name, got.fontStyle, tc.style)
		}
		if got.mono != tc.mono {
			t.Fatalf("%s: mono = %v, want %v", tc.name, got.mono, tc.mono)
		}
		if tc.mono && got.fontFamily != st.fonts.mono {
			t.Fatalf("%s: family = %q, want %q", tc.name, got.fontFamily, st.fonts.mono)
		}
	}
}

func TestStyleForColorModes(t *testing.T) {
	link := mdattr.Attributes{Flags: mdattr.AttrLink, URL: "https://example.com"}

	paper := testStyler(Config{}, mdattr.DefaultTheme())
	if got := paper.styleFor(link).color; got != paper.cfg.LinkRGB {
		t.Fatalf("paper link color = %v, want %v", got, paper.cfg.LinkRGB)
	}
	if got := paper.styleFor(mdattr.Attributes{}).color; got != [3]int{0, 0, 0} {
		t.Fatalf("paper text color = %v, want black", got)
	}

	boring := testStyler(Config{Boring: true, Themed: true}, mdattr.DefaultTheme())
	if boring.cfg.Themed {
		t.Fatalf("boring must disable themed output")
	}
	if got := boring.styleFor(link).color; got != [3]int{0, 0, 0} {
		t.Fatalf("boring link color = %v, want black", got)
	}

	themed := testStyler(Config{Themed: true}, mdattr.DefaultTheme())
	want := parseANSIPrefix(mdattr.StyleFor(link, themed.styles).Prefix, themed.cfg.TextRGB).color
	if got := themed.styleFor(link).color; got != want {
		t.Fatalf("themed link color = %v, want %v", got, want)
	}
	if themed.cfg.BackgroundRGB != themedBackgroundRGB || themed.cfg.TextRGB != themedTextRGB {
		t.Fatalf("themed defaults not applied: %+v", themed.cfg)
	}
}

func TestBoldItalicFallbackWithoutFace(t *testing.T) {
	st := testStyler(Config{}, mdattr.DefaultTheme())
	st.fonts.boldItalic = false
	got := st.styleFor(mdattr.Attributes{Flags: mdattr.AttrStrong | mdattr.AttrEmphasis})
	if got.fontStyle != "B" {
		t.Fatalf("expected bold fallback, got %q", got.fontStyle)
	}
	code := st.styleFor(mdattr.Attributes{Flags: mdattr.AttrCode | mdattr.AttrStrong | mdattr.AttrEmphasis})
	if code.fontStyle != "BI" {
		t.Fatalf("mono fonts keep bold-italic, got %q", code.fontStyle)
	}
}
