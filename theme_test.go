package mdattr

import (
	"sort"
	"strings"
	"testing"

	"pkt.systems/mdattr/internal/palette"
)

func TestThemeByName(t *testing.T) {
	expected := []string{
		"default",
		"gruvbox",
		"gruvbox-light",
		"dracula",
		"nord",
		"tokyo-night",
		"solarized-dark",
		"solarized-light",
		"github-light",
		"github-dark",
	}
	for _, name := range expected {
		theme, ok := ThemeByName(name)
		if !ok {
			t.Fatalf("expected theme %q to be available", name)
		}
		if theme.Name() != name {
			t.Fatalf("theme name = %q, want %q", theme.Name(), name)
		}
	}
	if theme, ok := ThemeByName("  NORD "); !ok || theme.Name() != "nord" {
		t.Fatalf("lookup should be case and space insensitive")
	}
	if theme, ok := ThemeByName(""); !ok || theme.Name() != "default" {
		t.Fatalf("empty name should select the default theme")
	}
	if _, ok := ThemeByName("nope"); ok {
		t.Fatalf("unknown theme should not be found")
	}

	available := AvailableThemes()
	if !sort.StringsAreSorted(available) {
		t.Fatalf("themes not sorted: %v", available)
	}
	if len(available) != len(expected) {
		t.Fatalf("available = %v", available)
	}
}

func TestStyleForCombinesBlockAndInline(t *testing.T) {
	styles := DefaultTheme().Styles()
	quoteStrong := StyleFor(Attributes{Flags: AttrQuote | AttrStrong, QuoteDepth: 1}, styles)
	if !strings.HasPrefix(quoteStrong.Prefix, combineStyles(styles.Text, styles.Quote).Prefix) {
		t.Fatalf("quote style should come first: %q", quoteStrong.Prefix)
	}
	if !strings.HasSuffix(quoteStrong.Prefix, styles.Strong.Prefix) {
		t.Fatalf("strong style should come last: %q", quoteStrong.Prefix)
	}
	marker := StyleFor(Attributes{Flags: AttrListItem | AttrListMarker | AttrStrong}, styles)
	if marker != combineStyles(styles.Text, styles.ListMarker) {
		t.Fatalf("list markers use the marker style only: %q", marker.Prefix)
	}
	code := StyleFor(Attributes{Flags: AttrCodeBlock | AttrStrong}, styles)
	if code != combineStyles(styles.Text, styles.CodeBlock) {
		t.Fatalf("code blocks ignore inline styles: %q", code.Prefix)
	}
	level := StyleFor(Attributes{Flags: AttrHeading, HeadingLevel: 9}, styles)
	if level != combineStyles(styles.Text, styles.Heading[5]) {
		t.Fatalf("heading level should clamp to 6")
	}
	strike := StyleFor(Attributes{Flags: AttrStrikethrough}, styles)
	if !strings.Contains(strike.Prefix, palette.Strike) {
		t.Fatalf("strikethrough style missing: %q", strike.Prefix)
	}
}

func TestPlainAndCustomThemes(t *testing.T) {
	plain := PlainTheme().Styles()
	if got := StyleFor(Attributes{Flags: AttrHeading | AttrStrong | AttrLink, HeadingLevel: 1}, plain); got.Prefix != "" {
		t.Fatalf("plain theme produced %q", got.Prefix)
	}
	custom := NewTheme("mine", Styles{Strong: Style{Prefix: "\x1b[1m"}})
	if custom.Name() != "mine" {
		t.Fatalf("name = %q", custom.Name())
	}
	if got := StyleFor(Attributes{Flags: AttrStrong}, custom.Styles()); got.Prefix != "\x1b[1m" {
		t.Fatalf("custom strong = %q", got.Prefix)
	}
}
