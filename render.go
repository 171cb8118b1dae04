package mdattr

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
)

const (
	defaultWidth     = 80
	minWidth         = 10
	ansiReset        = "\x1b[0m"
	quoteBar         = "│ "
	codeGutter       = "  "
	tableColumnSep   = " │ "
	tableRuleJoin    = "─┼─"
	defaultListShift = 2
)

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Width   int
	Theme   Theme
	Options []RenderOption
	Convert []Option
}

// Render converts Markdown from Reader and writes wrapped ANSI text to Writer.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	doc, err := ConvertReader(req.Reader, req.Convert...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return RenderAttributed(req.Writer, doc.Text, req.Width, req.Theme, req.Options...)
}

// RenderAttributed writes s to w as ANSI text wrapped at width columns.
func RenderAttributed(w io.Writer, s *AttributedString, width int, theme Theme, opts ...RenderOption) error {
	if w == nil {
		return fmt.Errorf("render: writer is nil")
	}
	var cfg renderConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if theme == nil {
		theme = DefaultTheme()
	}
	if width <= 0 {
		width = defaultWidth
	}
	width = max(width, minWidth)
	bw := bufio.NewWriter(w)
	r := &termRenderer{
		w:      bw,
		s:      s,
		width:  width,
		styles: theme.Styles(),
		cfg:    cfg,
	}
	lines := s.Lines()
	for i := 0; i < len(lines); {
		if lines[i].Block.Flags.Has(AttrTable) {
			j := i
			for j < len(lines) && lines[j].Block.Flags.Has(AttrTable) {
				j++
			}
			r.renderTable(lines[i:j])
			i = j
			continue
		}
		r.renderLine(lines[i])
		i++
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

type termRenderer struct {
	w            *bufio.Writer
	s            *AttributedString
	width        int
	styles       Styles
	cfg          renderConfig
	markerWidths []int

	curStyle string
	lineW    int
}

type atom struct {
	text      string
	attrs     Attributes
	space     bool
	urlSuffix bool
}

func (r *termRenderer) renderLine(line Line) {
	block := line.Block
	r.trackList(line)
	first, rest := r.prefixes(line)
	switch {
	case len(line.Runs) == 0:
		r.w.WriteString(strings.TrimRight(first, " "))
	case block.Flags.Has(AttrCodeBlock), block.Flags.Has(AttrHTML):
		r.w.WriteString(first)
		r.w.WriteString(codeGutter)
		r.writeStyled(strings.ReplaceAll(r.s.Text()[line.Start:line.End], "\t", "    "), StyleFor(block, r.styles))
		r.endStyle()
	case block.Flags.Has(AttrThematicBreak):
		r.w.WriteString(first)
		avail := r.width - ansi.PrintableRuneWidth(first)
		r.writeStyled(strings.Repeat("─", max(avail, 3)), StyleFor(block, r.styles))
		r.endStyle()
	default:
		r.wrapAtoms(r.atoms(line), first, rest)
	}
	r.w.WriteByte('\n')
}

// trackList records the marker width of list items so nested items and
// continuation lines line up with the text of their parent.
func (r *termRenderer) trackList(line Line) {
	depth := line.Block.ListDepth
	if depth == 0 {
		r.markerWidths = r.markerWidths[:0]
		return
	}
	if len(line.Runs) == 0 || !line.Runs[0].Flags.Has(AttrListMarker) {
		return
	}
	if len(r.markerWidths) > depth-1 {
		r.markerWidths = r.markerWidths[:depth-1]
	}
	for len(r.markerWidths) < depth-1 {
		r.markerWidths = append(r.markerWidths, defaultListShift)
	}
	marker := r.s.Text()[line.Runs[0].Start:line.Runs[0].End]
	r.markerWidths = append(r.markerWidths, runewidth.StringWidth(marker))
}

func (r *termRenderer) listIndent(levels int) int {
	total := 0
	for i := 0; i < levels; i++ {
		if i < len(r.markerWidths) {
			total += r.markerWidths[i]
		} else {
			total += defaultListShift
		}
	}
	return total
}

// prefixes returns the prefix of the first visual line and of wrapped lines.
func (r *termRenderer) prefixes(line Line) (string, string) {
	block := line.Block
	var quote string
	if block.QuoteDepth > 0 {
		var b strings.Builder
		if p := r.styles.Quote.Prefix; p != "" {
			b.WriteString(p)
		}
		b.WriteString(strings.Repeat(quoteBar, block.QuoteDepth))
		if r.styles.Quote.Prefix != "" {
			b.WriteString(ansiReset)
		}
		quote = b.String()
	}
	depth := block.ListDepth
	if depth == 0 {
		return quote, quote
	}
	full := quote + strings.Repeat(" ", r.listIndent(depth))
	if len(line.Runs) > 0 && line.Runs[0].Flags.Has(AttrListMarker) {
		return quote + strings.Repeat(" ", r.listIndent(depth-1)), full
	}
	return full, full
}

func (r *termRenderer) atoms(line Line) []atom {
	text := r.s.Text()
	out := make([]atom, 0, len(line.Runs)*2)
	for i, run := range line.Runs {
		out = appendWords(out, text[run.Start:run.End], run.Attributes)
		if r.cfg.osc8 || !run.Flags.Has(AttrLink) || run.URL == "" {
			continue
		}
		if i+1 < len(line.Runs) && line.Runs[i+1].Flags.Has(AttrLink) && line.Runs[i+1].URL == run.URL {
			continue
		}
		if linkText(text, line.Runs, i) == run.URL || strings.TrimPrefix(run.URL, "mailto:") == linkText(text, line.Runs, i) {
			continue
		}
		limit := max(r.width-4, minWidth)
		out = append(out, atom{text: " ", space: true}, atom{text: "(" + fitURL(run.URL, limit) + ")", urlSuffix: true})
	}
	return out
}

// linkText returns the text of the link ending at run i.
func linkText(text string, runs []Run, i int) string {
	url := runs[i].URL
	start := i
	for start > 0 && runs[start-1].Flags.Has(AttrLink) && runs[start-1].URL == url {
		start--
	}
	return text[runs[start].Start:runs[i].End]
}

func appendWords(out []atom, text string, attrs Attributes) []atom {
	for text != "" {
		isSpace := text[0] == ' '
		end := 0
		for end < len(text) && (text[end] == ' ') == isSpace {
			end++
		}
		out = append(out, atom{text: text[:end], attrs: attrs, space: isSpace})
		text = text[end:]
	}
	return out
}

func (r *termRenderer) wrapAtoms(atoms []atom, first, rest string) {
	r.w.WriteString(first)
	avail := max(r.width-ansi.PrintableRuneWidth(first), 1)
	r.lineW = 0
	var spaces []atom
	for i := 0; i < len(atoms); {
		if atoms[i].space {
			spaces = append(spaces, atoms[i])
			i++
			continue
		}
		j := i
		for j < len(atoms) && !atoms[j].space {
			j++
		}
		word := atoms[i:j]
		i = j
		ww := atomsWidth(word)
		sw := atomsWidth(spaces)
		if r.lineW > 0 && r.lineW+sw+ww > avail {
			r.newline(rest)
			avail = max(r.width-ansi.PrintableRuneWidth(rest), 1)
		} else {
			for _, sp := range spaces {
				r.emit(sp)
			}
		}
		spaces = spaces[:0]
		if ww > avail && r.cfg.softWrap {
			r.emitSplitWord(word, avail, rest)
			continue
		}
		for _, a := range word {
			r.emit(a)
		}
	}
	r.endStyle()
}

func (r *termRenderer) emitSplitWord(word []atom, avail int, rest string) {
	for _, a := range word {
		for _, ch := range a.text {
			cw := runewidth.RuneWidth(ch)
			if r.lineW > 0 && r.lineW+cw > avail {
				r.newline(rest)
				avail = max(r.width-ansi.PrintableRuneWidth(rest), 1)
			}
			r.emit(atom{text: string(ch), attrs: a.attrs, urlSuffix: a.urlSuffix})
		}
	}
}

func (r *termRenderer) newline(prefix string) {
	r.endStyle()
	r.w.WriteByte('\n')
	r.w.WriteString(prefix)
	r.lineW = 0
}

func (r *termRenderer) emit(a atom) {
	st := StyleFor(a.attrs, r.styles)
	if a.urlSuffix {
		st = combineStyles(r.styles.Text, r.styles.LinkURL)
	}
	if r.cfg.osc8 && !a.space && a.attrs.Flags.Has(AttrLink) && a.attrs.URL != "" {
		r.writeStyled("", st)
		r.w.WriteString(osc8Start)
		r.w.WriteString(a.attrs.URL)
		r.w.WriteString("\x1b\\")
		r.w.WriteString(a.text)
		r.w.WriteString(osc8End)
	} else {
		r.writeStyled(a.text, st)
	}
	r.lineW += runewidth.StringWidth(a.text)
}

func (r *termRenderer) writeStyled(text string, st Style) {
	if st.Prefix != r.curStyle {
		if r.curStyle != "" {
			r.w.WriteString(ansiReset)
		}
		r.w.WriteString(st.Prefix)
		r.curStyle = st.Prefix
	}
	r.w.WriteString(text)
}

func (r *termRenderer) endStyle() {
	if r.curStyle != "" {
		r.w.WriteString(ansiReset)
		r.curStyle = ""
	}
}

func atomsWidth(atoms []atom) int {
	total := 0
	for _, a := range atoms {
		total += runewidth.StringWidth(a.text)
	}
	return total
}

type tableRow struct {
	cells  []string
	header bool
}

func (r *termRenderer) renderTable(lines []Line) {
	first, _ := r.prefixes(lines[0])
	rows := make([]tableRow, 0, len(lines))
	var widths []int
	for _, line := range lines {
		row := tableRow{cells: r.tableCells(line)}
		if len(line.Runs) > 0 && line.Runs[0].Flags.Has(AttrTableHeader) {
			row.header = true
		}
		for i, cell := range row.cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(cell))
		}
		rows = append(rows, row)
	}
	avail := r.width - ansi.PrintableRuneWidth(first)
	fitColumns(widths, avail-len(tableColumnSep)*(len(widths)-1))
	sep := combineStyles(r.styles.Text, r.styles.ThematicBreak)
	for _, row := range rows {
		r.w.WriteString(first)
		for i, w := range widths {
			if i > 0 {
				r.writeStyled(tableColumnSep, sep)
				r.endStyle()
			}
			cell := ""
			if i < len(row.cells) {
				cell = row.cells[i]
			}
			if ansi.PrintableRuneWidth(cell) > w {
				cell = truncate.StringWithTail(cell, uint(w), "…") + ansiReset
			}
			r.w.WriteString(padding.String(cell, uint(w)))
		}
		r.w.WriteByte('\n')
		if row.header {
			r.w.WriteString(first)
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("─", w)
			}
			r.writeStyled(strings.Join(parts, tableRuleJoin), sep)
			r.endStyle()
			r.w.WriteByte('\n')
		}
	}
}

// tableCells splits a table line at tabs and styles each cell.
func (r *termRenderer) tableCells(line Line) []string {
	text := r.s.Text()
	var cells []string
	var cell strings.Builder
	flush := func() {
		cells = append(cells, cell.String())
		cell.Reset()
	}
	for _, run := range line.Runs {
		chunk := text[run.Start:run.End]
		st := StyleFor(run.Attributes, r.styles)
		for {
			tab := strings.IndexByte(chunk, '\t')
			part := chunk
			if tab >= 0 {
				part = chunk[:tab]
			}
			if part != "" {
				if st.Prefix != "" {
					cell.WriteString(st.Prefix)
					cell.WriteString(part)
					cell.WriteString(ansiReset)
				} else {
					cell.WriteString(part)
				}
			}
			if tab < 0 {
				break
			}
			flush()
			chunk = chunk[tab+1:]
		}
	}
	flush()
	return cells
}

// fitColumns shrinks the widest columns until the total fits avail.
func fitColumns(widths []int, avail int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > avail {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			return
		}
		widths[widest]--
		total--
	}
}
