package pdf

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"pkt.systems/mdattr"
)

const (
	headingSpaceBefore = 0.35
	headingSpaceAfter  = 0.2
	paragraphGap       = 0.5
	quoteStep          = 1.1
	listShift          = 1.6
	cellPadding        = 4
	codePadding        = 4
	pageCountAlias     = "{nb}"
	ellipsis           = "…"
)

type pdfLayout struct {
	pdf          *fpdf.Fpdf
	cfg          Config
	st           styler
	s            *mdattr.AttributedString
	corner       *cornerImage
	cornerBottom float64
	pageW        float64
	pageH        float64
	y            float64
	markerWidths []float64
	outline      int
	styleCache   map[mdattr.Attributes]pdfStyle
}

// word is a measured piece of a run.
type word struct {
	text  string
	enc   string
	attrs mdattr.Attributes
	style pdfStyle
	width float64
	space bool
}

func newPDFLayout(pdf *fpdf.Fpdf, cfg Config, st styler, s *mdattr.AttributedString, corner *cornerImage) *pdfLayout {
	l := &pdfLayout{
		pdf:        pdf,
		cfg:        cfg,
		st:         st,
		s:          s,
		corner:     corner,
		outline:    -1,
		styleCache: make(map[mdattr.Attributes]pdfStyle),
	}
	l.pageW, l.pageH = pdf.GetPageSize()
	pdf.SetHeaderFunc(l.header)
	if cfg.PageNumbers {
		pdf.AliasNbPages(pageCountAlias)
		pdf.SetFooterFunc(l.footer)
	}
	return l
}

func (l *pdfLayout) header() {
	if l.cfg.Themed {
		bg := l.cfg.BackgroundRGB
		l.pdf.SetFillColor(bg[0], bg[1], bg[2])
		l.pdf.Rect(0, 0, l.pageW, l.pageH, "F")
	}
	if l.corner != nil && l.pdf.PageNo() == 1 {
		x := l.pageW - l.cfg.Margin - l.corner.width
		y := l.cfg.Margin
		l.pdf.ImageOptions(cornerImageName, x, y, l.corner.width, l.corner.height, false, l.corner.opts, 0, "")
		l.cornerBottom = y + l.corner.height + l.cfg.CornerImagePadding
	}
}

func (l *pdfLayout) footer() {
	size := l.cfg.FontSize * 0.8
	st := pdfStyle{fontFamily: l.st.fonts.body, size: size, color: l.cfg.TextRGB}
	l.apply(st)
	text := fmt.Sprintf("%d / %s", l.pdf.PageNo(), pageCountAlias)
	w := l.pdf.GetStringWidth(text)
	l.pdf.Text((l.pageW-w)/2, l.pageH-l.cfg.Margin/2, text)
}

func (l *pdfLayout) addPage() {
	l.pdf.AddPage()
	l.y = l.cfg.Margin
}

func (l *pdfLayout) top() float64    { return l.cfg.Margin }
func (l *pdfLayout) bottom() float64 { return l.pageH - l.cfg.Margin }

// right returns the right edge of the text area at the current position.
func (l *pdfLayout) right() float64 {
	right := l.pageW - l.cfg.Margin
	if l.corner != nil && l.pdf.PageNo() == 1 && l.y < l.cornerBottom {
		right -= l.corner.width + l.cfg.CornerImagePadding
	}
	return right
}

// ensureSpace starts a new page when h does not fit below the cursor.
func (l *pdfLayout) ensureSpace(h float64) {
	if l.y+h > l.bottom() && l.y > l.top() {
		l.addPage()
	}
}

func (l *pdfLayout) render(lines []mdattr.Line) {
	l.addPage()
	for i := 0; i < len(lines); {
		line := lines[i]
		block := line.Block
		switch {
		case block.Flags.Has(mdattr.AttrTable):
			j := i
			for j < len(lines) && lines[j].Block.Flags.Has(mdattr.AttrTable) {
				j++
			}
			l.renderTable(lines[i:j])
			i = j
			continue
		case block.Flags.Any(mdattr.AttrCodeBlock | mdattr.AttrHTML):
			l.renderCodeLine(line)
		case len(line.Runs) == 0:
			l.trackList(line)
			l.renderGap(block)
		case block.Flags.Has(mdattr.AttrThematicBreak):
			l.renderRule(block)
		default:
			l.renderTextLine(line)
		}
		i++
	}
}

func (l *pdfLayout) baseLineHeight() float64 {
	return l.cfg.FontSize * l.cfg.LineHeight
}

func (l *pdfLayout) renderGap(block mdattr.Attributes) {
	if l.y <= l.top() {
		return
	}
	h := l.baseLineHeight() * paragraphGap
	if l.y+h > l.bottom() {
		l.addPage()
		return
	}
	l.drawQuoteBars(block, l.y, h)
	l.y += h
}

func (l *pdfLayout) quoteIndent(depth int) float64 {
	return float64(depth) * l.cfg.FontSize * quoteStep
}

// trackList records marker widths so nested items and continuation lines
// line up with the text of their parent.
func (l *pdfLayout) trackList(line mdattr.Line) {
	depth := line.Block.ListDepth
	if depth == 0 {
		l.markerWidths = l.markerWidths[:0]
		return
	}
	if len(line.Runs) == 0 || !line.Runs[0].Flags.Has(mdattr.AttrListMarker) {
		return
	}
	if len(l.markerWidths) > depth-1 {
		l.markerWidths = l.markerWidths[:depth-1]
	}
	for len(l.markerWidths) < depth-1 {
		l.markerWidths = append(l.markerWidths, l.cfg.FontSize*listShift)
	}
	marker := l.newWord(l.s.RunText(line.Runs[0]), line.Runs[0].Attributes)
	l.markerWidths = append(l.markerWidths, max(marker.width, l.cfg.FontSize*listShift))
}

func (l *pdfLayout) listIndent(levels int) float64 {
	total := 0.0
	for i := 0; i < levels; i++ {
		if i < len(l.markerWidths) {
			total += l.markerWidths[i]
		} else {
			total += l.cfg.FontSize * listShift
		}
	}
	return total
}

func (l *pdfLayout) renderTextLine(line mdattr.Line) {
	block := line.Block
	l.trackList(line)
	lineH := l.st.sizeFor(block) * l.cfg.LineHeight
	heading := block.Flags.Has(mdattr.AttrHeading)
	if heading {
		size := l.st.sizeFor(block)
		if l.y > l.top() {
			l.y += size * headingSpaceBefore
		}
		l.ensureSpace(lineH + l.baseLineHeight())
		l.bookmark(l.s.Text()[line.Start:line.End], block)
	}
	base := l.cfg.Margin + l.quoteIndent(block.QuoteDepth)
	rest := base + l.listIndent(block.ListDepth)
	first := rest
	if block.ListDepth > 0 && line.Runs[0].Flags.Has(mdattr.AttrListMarker) {
		first = base + l.listIndent(block.ListDepth-1)
	}
	l.wrapWords(l.words(line), first, rest, lineH, block)
	if heading {
		l.y += l.st.sizeFor(block) * headingSpaceAfter
	}
}

// bookmark adds a heading to the document outline. Outline levels may only
// grow by one at a time.
func (l *pdfLayout) bookmark(text string, block mdattr.Attributes) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	lvl := min(max(block.HeadingLevel-1, 0), l.outline+1)
	l.outline = lvl
	st := l.styleFor(block)
	l.apply(st)
	l.pdf.Bookmark(l.st.fonts.encode(text, st.mono), lvl, l.y)
}

func (l *pdfLayout) words(line mdattr.Line) []word {
	out := make([]word, 0, len(line.Runs)*2)
	for _, run := range line.Runs {
		text := l.s.RunText(run)
		for text != "" {
			isSpace := text[0] == ' '
			end := 0
			for end < len(text) && (text[end] == ' ') == isSpace {
				end++
			}
			w := l.newWord(text[:end], run.Attributes)
			w.space = isSpace
			out = append(out, w)
			text = text[end:]
		}
	}
	return out
}

func (l *pdfLayout) styleFor(attrs mdattr.Attributes) pdfStyle {
	if st, ok := l.styleCache[attrs]; ok {
		return st
	}
	st := l.st.styleFor(attrs)
	l.styleCache[attrs] = st
	return st
}

func (l *pdfLayout) newWord(text string, attrs mdattr.Attributes) word {
	st := l.styleFor(attrs)
	w := word{
		text:  text,
		enc:   l.st.fonts.encode(text, st.mono),
		attrs: attrs,
		style: st,
	}
	w.width = l.measure(w.enc, st)
	return w
}

func (l *pdfLayout) measure(enc string, st pdfStyle) float64 {
	l.apply(st)
	return l.pdf.GetStringWidth(enc)
}

func (l *pdfLayout) apply(st pdfStyle) {
	l.pdf.SetFont(st.fontFamily, st.fontStyle, st.size)
	l.pdf.SetTextColor(st.color[0], st.color[1], st.color[2])
}

func wordsWidth(words []word) float64 {
	total := 0.0
	for _, w := range words {
		total += w.width
	}
	return total
}

// wrapWords places words on as many visual lines as needed. Spaces at a
// break are dropped; words wider than a line are split by rune.
func (l *pdfLayout) wrapWords(words []word, first, rest, lineH float64, block mdattr.Attributes) {
	left := first
	row := make([]word, 0, len(words))
	rowW := 0.0
	flush := func() {
		l.emitRow(row, left, lineH, block)
		row = row[:0]
		rowW = 0
		left = rest
	}
	var spaces []word
	for i := 0; i < len(words); {
		if words[i].space {
			spaces = append(spaces, words[i])
			i++
			continue
		}
		j := i
		for j < len(words) && !words[j].space {
			j++
		}
		group := words[i:j]
		i = j
		gw := wordsWidth(group)
		sw := wordsWidth(spaces)
		avail := l.right() - left
		if len(row) > 0 && rowW+sw+gw > avail {
			flush()
			avail = l.right() - left
		} else {
			row = append(row, spaces...)
			rowW += sw
		}
		spaces = spaces[:0]
		if gw <= avail {
			row = append(row, group...)
			rowW += gw
			continue
		}
		for _, w := range group {
			var cur strings.Builder
			for _, r := range w.text {
				rw := l.measure(l.st.fonts.encode(string(r), w.style.mono), w.style)
				if rowW+rw > avail && rowW > 0 {
					if cur.Len() > 0 {
						row = append(row, l.newWord(cur.String(), w.attrs))
						cur.Reset()
					}
					flush()
					avail = l.right() - left
				}
				cur.WriteRune(r)
				rowW += rw
			}
			if cur.Len() > 0 {
				row = append(row, l.newWord(cur.String(), w.attrs))
			}
		}
	}
	row = append(row, spaces...)
	flush()
}

func (l *pdfLayout) emitRow(row []word, left, lineH float64, block mdattr.Attributes) {
	if l.y+lineH > l.bottom() && l.y > l.top() {
		l.addPage()
	}
	top := l.y
	l.drawQuoteBars(block, top, lineH)
	size := l.cfg.FontSize
	for _, w := range row {
		size = max(size, w.style.size)
	}
	baseline := top + (lineH+size*0.7)/2
	x := left
	for _, w := range row {
		l.apply(w.style)
		l.pdf.Text(x, baseline, w.enc)
		if url := w.attrs.URL; url != "" && !strings.HasPrefix(url, "#") && w.attrs.Flags.Any(mdattr.AttrLink|mdattr.AttrImage) {
			l.pdf.LinkString(x, top, w.width, lineH, url)
		}
		x += w.width
	}
	l.y += lineH
}

func (l *pdfLayout) drawQuoteBars(block mdattr.Attributes, top, h float64) {
	if block.QuoteDepth == 0 {
		return
	}
	c := l.st.accentColor(l.st.styles.Quote)
	l.pdf.SetDrawColor(c[0], c[1], c[2])
	l.pdf.SetLineWidth(1.5)
	step := l.cfg.FontSize * quoteStep
	for d := 0; d < block.QuoteDepth; d++ {
		x := l.cfg.Margin + float64(d)*step + step/4
		l.pdf.Line(x, top, x, top+h)
	}
}

func (l *pdfLayout) renderRule(block mdattr.Attributes) {
	lineH := l.baseLineHeight()
	l.ensureSpace(lineH)
	top := l.y
	l.drawQuoteBars(block, top, lineH)
	left := l.cfg.Margin + l.quoteIndent(block.QuoteDepth) + l.listIndent(block.ListDepth)
	c := l.st.accentColor(l.st.styles.ThematicBreak)
	l.pdf.SetDrawColor(c[0], c[1], c[2])
	l.pdf.SetLineWidth(0.8)
	l.pdf.Line(left, top+lineH/2, l.right(), top+lineH/2)
	l.y += lineH
}

// renderCodeLine draws one line of a code or HTML block. Lines are never
// re-flowed; overlong lines are cut at the text width and continued.
func (l *pdfLayout) renderCodeLine(line mdattr.Line) {
	block := line.Block
	st := l.styleFor(block)
	lineH := l.baseLineHeight()
	left := l.cfg.Margin + l.quoteIndent(block.QuoteDepth) + l.listIndent(block.ListDepth)
	text := strings.ReplaceAll(l.s.Text()[line.Start:line.End], "\t", "    ")
	fill := block.Flags.Has(mdattr.AttrCodeBlock) && !l.cfg.Boring
	for _, piece := range l.splitToWidth(text, st, l.right()-left-2*codePadding) {
		if l.y+lineH > l.bottom() && l.y > l.top() {
			l.addPage()
		}
		top := l.y
		l.drawQuoteBars(block, top, lineH)
		if fill {
			c := l.cfg.CodeBackgroundRGB
			l.pdf.SetFillColor(c[0], c[1], c[2])
			l.pdf.Rect(left, top, l.right()-left, lineH, "F")
		}
		if piece != "" {
			l.apply(st)
			l.pdf.Text(left+codePadding, top+(lineH+st.size*0.7)/2, l.st.fonts.encode(piece, st.mono))
		}
		l.y += lineH
	}
}

func (l *pdfLayout) splitToWidth(text string, st pdfStyle, avail float64) []string {
	if text == "" || l.measure(l.st.fonts.encode(text, st.mono), st) <= avail {
		return []string{text}
	}
	var out []string
	var cur strings.Builder
	curW := 0.0
	for _, r := range text {
		rw := l.measure(l.st.fonts.encode(string(r), st.mono), st)
		if curW+rw > avail && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curW = 0
		}
		cur.WriteRune(r)
		curW += rw
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

type tableCell struct {
	words []word
	width float64
}

type tableRow struct {
	cells  []tableCell
	header bool
}

func (l *pdfLayout) renderTable(lines []mdattr.Line) {
	block := lines[0].Block
	left := l.cfg.Margin + l.quoteIndent(block.QuoteDepth) + l.listIndent(block.ListDepth)
	rows := make([]tableRow, 0, len(lines))
	var widths []float64
	for _, line := range lines {
		row := tableRow{cells: l.tableCells(line)}
		if len(line.Runs) > 0 && line.Runs[0].Flags.Has(mdattr.AttrTableHeader) {
			row.header = true
		}
		for i, cell := range row.cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], cell.width+2*cellPadding)
		}
		rows = append(rows, row)
	}
	total := 0.0
	for _, w := range widths {
		total += w
	}
	if avail := l.right() - left; total > avail && total > 0 {
		scale := avail / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	rowH := l.baseLineHeight() + cellPadding
	border := l.st.accentColor(l.st.styles.ThematicBreak)
	for _, row := range rows {
		if l.y+rowH > l.bottom() && l.y > l.top() {
			l.addPage()
		}
		top := l.y
		l.drawQuoteBars(block, top, rowH)
		x := left
		for i, w := range widths {
			l.pdf.SetDrawColor(border[0], border[1], border[2])
			l.pdf.SetLineWidth(0.5)
			style := "D"
			if row.header && !l.cfg.Boring {
				c := l.cfg.CodeBackgroundRGB
				l.pdf.SetFillColor(c[0], c[1], c[2])
				style = "FD"
			}
			l.pdf.Rect(x, top, w, rowH, style)
			if i < len(row.cells) {
				l.drawCell(row.cells[i], x+cellPadding, top, w-2*cellPadding, rowH)
			}
			x += w
		}
		l.y += rowH
	}
}

// drawCell writes a cell on one line, truncating with an ellipsis.
func (l *pdfLayout) drawCell(cell tableCell, x, top, limit, rowH float64) {
	used := 0.0
	for _, w := range cell.words {
		enc := w.enc
		width := w.width
		truncated := false
		if used+width > limit {
			enc, width = l.truncate(w, limit-used)
			truncated = true
		}
		if enc != "" {
			l.apply(w.style)
			l.pdf.Text(x+used, top+(rowH+w.style.size*0.7)/2, enc)
			if url := w.attrs.URL; url != "" && !strings.HasPrefix(url, "#") {
				l.pdf.LinkString(x+used, top, width, rowH, url)
			}
		}
		used += width
		if truncated {
			return
		}
	}
}

func (l *pdfLayout) truncate(w word, limit float64) (string, float64) {
	tail := l.st.fonts.encode(ellipsis, w.style.mono)
	runes := []rune(w.text)
	for n := len(runes); n >= 0; n-- {
		enc := l.st.fonts.encode(string(runes[:n]), w.style.mono) + tail
		if width := l.measure(enc, w.style); width <= limit {
			return enc, width
		}
	}
	return "", 0
}

// tableCells splits a table line at tabs.
func (l *pdfLayout) tableCells(line mdattr.Line) []tableCell {
	var cells []tableCell
	var cur tableCell
	for _, run := range line.Runs {
		chunk := l.s.RunText(run)
		for {
			tab := strings.IndexByte(chunk, '\t')
			part := chunk
			if tab >= 0 {
				part = chunk[:tab]
			}
			if part != "" {
				w := l.newWord(part, run.Attributes)
				cur.words = append(cur.words, w)
				cur.width += w.width
			}
			if tab < 0 {
				break
			}
			cells = append(cells, cur)
			cur = tableCell{}
			chunk = chunk[tab+1:]
		}
	}
	return append(cells, cur)
}
