// Package palette holds the ANSI color palettes behind the built-in themes.
package palette

import "strconv"

// SGR attribute prefixes.
const (
	Reset     = "\x1b[0m"
	Bold      = "\x1b[1m"
	Italic    = "\x1b[3m"
	Underline = "\x1b[4m"
	Strike    = "\x1b[9m"
)

// Palette assigns a foreground color prefix to each semantic role.
type Palette struct {
	Text           string
	H1             string
	H2             string
	H3             string
	H4             string
	H5             string
	H6             string
	Emphasis       string
	Strong         string
	EmphasisStrong string
	CodeInline     string
	CodeBlock      string
	Quote          string
	ListMarker     string
	LinkText       string
	LinkURL        string
	ThematicBreak  string
	TableHeader    string
	HTML           string
}

// FG returns the xterm-256 foreground prefix for idx.
func FG(idx int) string {
	if idx < 0 || idx > 255 {
		return ""
	}
	return "\x1b[38;5;" + strconv.Itoa(idx) + "m"
}

var (
	PaletteDefault = Palette{
		Text:           FG(252),
		H1:             FG(81),
		H2:             FG(117),
		H3:             FG(153),
		H4:             FG(159),
		H5:             FG(195),
		H6:             FG(250),
		Emphasis:       FG(223),
		Strong:         FG(231),
		EmphasisStrong: FG(229),
		CodeInline:     FG(180),
		CodeBlock:      FG(151),
		Quote:          FG(246),
		ListMarker:     FG(81),
		LinkText:       FG(111),
		LinkURL:        FG(67),
		ThematicBreak:  FG(240),
		TableHeader:    FG(117),
		HTML:           FG(244),
	}

	PaletteGruvbox = Palette{
		Text:           FG(223),
		H1:             FG(167),
		H2:             FG(208),
		H3:             FG(214),
		H4:             FG(142),
		H5:             FG(108),
		H6:             FG(175),
		Emphasis:       FG(214),
		Strong:         FG(229),
		EmphasisStrong: FG(208),
		CodeInline:     FG(142),
		CodeBlock:      FG(108),
		Quote:          FG(246),
		ListMarker:     FG(167),
		LinkText:       FG(109),
		LinkURL:        FG(66),
		ThematicBreak:  FG(239),
		TableHeader:    FG(214),
		HTML:           FG(245),
	}

	PaletteGruvboxLight = Palette{
		Text:           FG(237),
		H1:             FG(124),
		H2:             FG(130),
		H3:             FG(136),
		H4:             FG(100),
		H5:             FG(66),
		H6:             FG(96),
		Emphasis:       FG(136),
		Strong:         FG(235),
		EmphasisStrong: FG(130),
		CodeInline:     FG(100),
		CodeBlock:      FG(66),
		Quote:          FG(243),
		ListMarker:     FG(124),
		LinkText:       FG(24),
		LinkURL:        FG(66),
		ThematicBreak:  FG(248),
		TableHeader:    FG(130),
		HTML:           FG(244),
	}

	PaletteDracula = Palette{
		Text:           FG(255),
		H1:             FG(212),
		H2:             FG(141),
		H3:             FG(117),
		H4:             FG(84),
		H5:             FG(228),
		H6:             FG(215),
		Emphasis:       FG(228),
		Strong:         FG(215),
		EmphasisStrong: FG(212),
		CodeInline:     FG(84),
		CodeBlock:      FG(117),
		Quote:          FG(61),
		ListMarker:     FG(212),
		LinkText:       FG(117),
		LinkURL:        FG(61),
		ThematicBreak:  FG(60),
		TableHeader:    FG(141),
		HTML:           FG(103),
	}

	PaletteNord = Palette{
		Text:           FG(254),
		H1:             FG(110),
		H2:             FG(109),
		H3:             FG(116),
		H4:             FG(152),
		H5:             FG(146),
		H6:             FG(139),
		Emphasis:       FG(180),
		Strong:         FG(255),
		EmphasisStrong: FG(179),
		CodeInline:     FG(144),
		CodeBlock:      FG(152),
		Quote:          FG(60),
		ListMarker:     FG(110),
		LinkText:       FG(116),
		LinkURL:        FG(67),
		ThematicBreak:  FG(59),
		TableHeader:    FG(109),
		HTML:           FG(103),
	}

	PaletteTokyoNight = Palette{
		Text:           FG(189),
		H1:             FG(111),
		H2:             FG(141),
		H3:             FG(117),
		H4:             FG(158),
		H5:             FG(222),
		H6:             FG(210),
		Emphasis:       FG(222),
		Strong:         FG(231),
		EmphasisStrong: FG(215),
		CodeInline:     FG(150),
		CodeBlock:      FG(116),
		Quote:          FG(61),
		ListMarker:     FG(111),
		LinkText:       FG(117),
		LinkURL:        FG(68),
		ThematicBreak:  FG(238),
		TableHeader:    FG(141),
		HTML:           FG(103),
	}

	PaletteSolarizedDark = Palette{
		Text:           FG(246),
		H1:             FG(166),
		H2:             FG(136),
		H3:             FG(33),
		H4:             FG(37),
		H5:             FG(64),
		H6:             FG(61),
		Emphasis:       FG(136),
		Strong:         FG(230),
		EmphasisStrong: FG(166),
		CodeInline:     FG(37),
		CodeBlock:      FG(64),
		Quote:          FG(241),
		ListMarker:     FG(166),
		LinkText:       FG(33),
		LinkURL:        FG(61),
		ThematicBreak:  FG(240),
		TableHeader:    FG(136),
		HTML:           FG(241),
	}

	PaletteSolarizedLight = Palette{
		Text:           FG(240),
		H1:             FG(166),
		H2:             FG(136),
		H3:             FG(33),
		H4:             FG(37),
		H5:             FG(64),
		H6:             FG(61),
		Emphasis:       FG(136),
		Strong:         FG(235),
		EmphasisStrong: FG(166),
		CodeInline:     FG(37),
		CodeBlock:      FG(64),
		Quote:          FG(245),
		ListMarker:     FG(166),
		LinkText:       FG(33),
		LinkURL:        FG(61),
		ThematicBreak:  FG(250),
		TableHeader:    FG(136),
		HTML:           FG(245),
	}

	PaletteGithubLight = Palette{
		Text:           FG(235),
		H1:             FG(25),
		H2:             FG(25),
		H3:             FG(24),
		H4:             FG(24),
		H5:             FG(239),
		H6:             FG(243),
		Emphasis:       FG(236),
		Strong:         FG(232),
		EmphasisStrong: FG(232),
		CodeInline:     FG(124),
		CodeBlock:      FG(236),
		Quote:          FG(243),
		ListMarker:     FG(25),
		LinkText:       FG(26),
		LinkURL:        FG(67),
		ThematicBreak:  FG(250),
		TableHeader:    FG(25),
		HTML:           FG(244),
	}

	PaletteGithubDark = Palette{
		Text:           FG(252),
		H1:             FG(75),
		H2:             FG(75),
		H3:             FG(111),
		H4:             FG(111),
		H5:             FG(250),
		H6:             FG(246),
		Emphasis:       FG(253),
		Strong:         FG(255),
		EmphasisStrong: FG(255),
		CodeInline:     FG(216),
		CodeBlock:      FG(251),
		Quote:          FG(245),
		ListMarker:     FG(75),
		LinkText:       FG(75),
		LinkURL:        FG(67),
		ThematicBreak:  FG(238),
		TableHeader:    FG(111),
		HTML:           FG(244),
	}
)
