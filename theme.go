package mdattr

import (
	"sort"
	"strings"

	"pkt.systems/mdattr/internal/palette"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Styles groups the semantic styles used by the renderers.
type Styles struct {
	Text           Style
	Heading        [6]Style
	Emphasis       Style
	Strong         Style
	EmphasisStrong Style
	Strikethrough  Style
	CodeInline     Style
	CodeBlock      Style
	Quote          Style
	ListMarker     Style
	LinkText       Style
	LinkURL        Style
	ThematicBreak  Style
	TableHeader    Style
	HTML           Style
}

// Theme provides named styles for rendering attributed text.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		b.WriteString(p)
	}
	return Style{Prefix: b.String()}
}

func stylesFromPalette(p palette.Palette) Styles {
	return Styles{
		Text:           style(p.Text),
		Heading:        [6]Style{style(palette.Bold, p.H1), style(palette.Bold, p.H2), style(palette.Bold, p.H3), style(p.H4), style(p.H5), style(p.H6)},
		Emphasis:       style(palette.Italic, p.Emphasis),
		Strong:         style(palette.Bold, p.Strong),
		EmphasisStrong: style(palette.Bold, palette.Italic, p.EmphasisStrong),
		Strikethrough:  style(palette.Strike),
		CodeInline:     style(p.CodeInline),
		CodeBlock:      style(p.CodeBlock),
		Quote:          style(p.Quote),
		ListMarker:     style(p.ListMarker),
		LinkText:       style(palette.Underline, p.LinkText),
		LinkURL:        style(p.LinkURL),
		ThematicBreak:  style(p.ThematicBreak),
		TableHeader:    style(palette.Bold, p.TableHeader),
		HTML:           style(p.HTML),
	}
}

var builtinThemes = map[string]Theme{
	"default":         theme{name: "default", styles: stylesFromPalette(palette.PaletteDefault)},
	"gruvbox":         theme{name: "gruvbox", styles: stylesFromPalette(palette.PaletteGruvbox)},
	"gruvbox-light":   theme{name: "gruvbox-light", styles: stylesFromPalette(palette.PaletteGruvboxLight)},
	"dracula":         theme{name: "dracula", styles: stylesFromPalette(palette.PaletteDracula)},
	"nord":            theme{name: "nord", styles: stylesFromPalette(palette.PaletteNord)},
	"tokyo-night":     theme{name: "tokyo-night", styles: stylesFromPalette(palette.PaletteTokyoNight)},
	"solarized-dark":  theme{name: "solarized-dark", styles: stylesFromPalette(palette.PaletteSolarizedDark)},
	"solarized-light": theme{name: "solarized-light", styles: stylesFromPalette(palette.PaletteSolarizedLight)},
	"github-light":    theme{name: "github-light", styles: stylesFromPalette(palette.PaletteGithubLight)},
	"github-dark":     theme{name: "github-dark", styles: stylesFromPalette(palette.PaletteGithubDark)},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}

// PlainTheme returns a theme without any styling.
func PlainTheme() Theme {
	return NewTheme("plain", Styles{})
}

// StyleFor returns the combined style for attrs. Block styles come first so
// inline styles override their colors.
func StyleFor(attrs Attributes, styles Styles) Style {
	flags := attrs.Flags
	base := styles.Text
	switch {
	case flags.Has(AttrCodeBlock):
		return combineStyles(base, styles.CodeBlock)
	case flags.Has(AttrHTML):
		return combineStyles(base, styles.HTML)
	case flags.Has(AttrThematicBreak):
		return combineStyles(base, styles.ThematicBreak)
	case flags.Has(AttrHeading):
		level := min(max(attrs.HeadingLevel, 1), 6)
		base = combineStyles(base, styles.Heading[level-1])
	case flags.Has(AttrQuote):
		base = combineStyles(base, styles.Quote)
	}
	if flags.Has(AttrTableHeader) {
		base = combineStyles(base, styles.TableHeader)
	}
	if flags.Any(AttrListMarker | AttrTaskChecked | AttrTaskUnchecked) {
		return combineStyles(base, styles.ListMarker)
	}
	switch {
	case flags.Has(AttrStrong | AttrEmphasis):
		base = combineStyles(base, styles.EmphasisStrong)
	case flags.Has(AttrStrong):
		base = combineStyles(base, styles.Strong)
	case flags.Has(AttrEmphasis):
		base = combineStyles(base, styles.Emphasis)
	}
	if flags.Has(AttrStrikethrough) {
		base = combineStyles(base, styles.Strikethrough)
	}
	if flags.Has(AttrCode) {
		base = combineStyles(base, styles.CodeInline)
	}
	if flags.Any(AttrLink | AttrImage) {
		base = combineStyles(base, styles.LinkText)
	}
	return base
}

func combineStyles(base Style, extra Style) Style {
	if extra.Prefix == "" {
		return base
	}
	if base.Prefix == "" {
		return extra
	}
	return Style{Prefix: base.Prefix + extra.Prefix}
}
