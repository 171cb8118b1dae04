package mdattr

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	bulletMarker        = "• "
	thematicBreakText   = "───"
	taskCheckedMarker   = "[x] "
	taskUncheckedMarker = "[ ] "
)

var lineBreakTag = regexp.MustCompile(`(?i)^<br\s*/?>$`)

// Converter turns Markdown into attributed text. It is safe for concurrent use.
type Converter struct {
	cfg convertConfig
	md  goldmark.Markdown
}

// NewConverter returns a Converter configured by opts.
func NewConverter(opts ...Option) *Converter {
	cfg := defaultConvertConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	var exts []goldmark.Extender
	if cfg.gfm {
		exts = append(exts, extension.GFM)
	}
	if cfg.typographer {
		exts = append(exts, extension.Typographer)
	}
	return &Converter{
		cfg: cfg,
		md:  goldmark.New(goldmark.WithExtensions(exts...)),
	}
}

var (
	defaultConverterOnce sync.Once
	defaultConverter     *Converter
)

func converterFor(opts []Option) *Converter {
	if len(opts) == 0 {
		defaultConverterOnce.Do(func() {
			defaultConverter = NewConverter()
		})
		return defaultConverter
	}
	return NewConverter(opts...)
}

// Convert returns the attributed form of markdown. It never fails: input
// that is not valid UTF-8 is sanitised and malformed Markdown is rendered
// on a best-effort basis.
func Convert(markdown string, opts ...Option) *AttributedString {
	return converterFor(opts).Convert([]byte(markdown)).Text
}

// ConvertDocument converts markdown and returns its metadata alongside the text.
func ConvertDocument(markdown string, opts ...Option) *Document {
	return converterFor(opts).Convert([]byte(markdown))
}

// ConvertReader reads all of r and converts it. Only read errors are returned.
func ConvertReader(r io.Reader, opts ...Option) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("convert: reader is nil")
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("convert: read: %w", err)
	}
	return converterFor(opts).Convert(src), nil
}

// Convert converts src. The returned Document and its Text are never nil.
func (c *Converter) Convert(src []byte) *Document {
	src = sanitize(src)
	doc := &Document{}
	if c.cfg.frontMatter {
		doc.Meta, src = splitFrontMatter(src)
	}
	root := c.md.Parser().Parse(text.NewReader(src))
	w := &astWriter{src: src, softBreaks: c.cfg.softBreaks}
	_ = ast.Walk(root, w.walk)
	w.b.TrimTrailingNewlines()
	doc.Text = w.b.AttributedString()
	if doc.Meta.Title == "" {
		doc.Meta.Title = w.firstH1
	}
	return doc
}

type listState struct {
	ordered bool
	marker  byte
	next    int
}

type astWriter struct {
	src        []byte
	softBreaks bool
	b          Builder
	cur        Attributes
	stack      []Attributes
	lists      []listState

	headingStart int
	firstH1      string

	// newlines before keep are line content (hard breaks, table rows) and
	// do not count toward block separation.
	keep     int
	rowStart int
}

func (w *astWriter) push() {
	w.stack = append(w.stack, w.cur)
}

func (w *astWriter) pop() {
	if n := len(w.stack); n > 0 {
		w.cur = w.stack[n-1]
		w.stack = w.stack[:n-1]
	}
}

// container returns the attributes carried by newlines between blocks at
// the current position.
func (w *astWriter) container() Attributes {
	return Attributes{
		Flags:      w.cur.Flags & (AttrQuote | AttrListItem),
		QuoteDepth: w.cur.QuoteDepth,
		ListDepth:  w.cur.ListDepth,
	}
}

func (w *astWriter) beginBlock(n ast.Node) {
	sep := separation(n)
	if sep == 0 || w.b.Len() == 0 {
		return
	}
	have := min(w.b.TrailingNewlines(), w.b.Len()-w.keep)
	if have < sep {
		w.b.Append(strings.Repeat("\n", sep-have), w.container())
	}
}

func startsBlock(n ast.Node) bool {
	if n.Type() != ast.TypeBlock {
		return false
	}
	switch n.Kind() {
	case ast.KindDocument, extast.KindTableHeader, extast.KindTableRow, extast.KindTableCell:
		return false
	}
	return true
}

func separation(n ast.Node) int {
	if n.PreviousSibling() == nil {
		return 0
	}
	switch parent := n.Parent().(type) {
	case *ast.List:
		if parent.IsTight {
			return 1
		}
	case *ast.ListItem:
		if list, ok := parent.Parent().(*ast.List); ok && list.IsTight {
			return 1
		}
	}
	return 2
}

func (w *astWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering && startsBlock(n) {
		w.beginBlock(n)
	}
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.push()
			w.cur.Flags |= AttrHeading
			w.cur.HeadingLevel = node.Level
			w.headingStart = w.b.Len()
		} else {
			if node.Level == 1 && w.firstH1 == "" {
				w.firstH1 = strings.TrimSpace(w.b.text.String()[w.headingStart:])
			}
			w.pop()
		}
	case *ast.ThematicBreak:
		if entering {
			attrs := w.container()
			attrs.Flags |= AttrThematicBreak
			w.b.Append(thematicBreakText, attrs)
		}
	case *ast.CodeBlock:
		if entering {
			w.appendCodeBlock(node.Lines(), "")
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			w.appendCodeBlock(node.Lines(), string(node.Language(w.src)))
		}
		return ast.WalkSkipChildren, nil
	case *ast.HTMLBlock:
		if entering {
			w.appendHTMLBlock(node)
		}
		return ast.WalkSkipChildren, nil
	case *ast.Blockquote:
		if entering {
			w.push()
			w.cur.Flags |= AttrQuote
			w.cur.QuoteDepth++
		} else {
			w.pop()
		}
	case *ast.List:
		if entering {
			w.lists = append(w.lists, listState{ordered: node.IsOrdered(), marker: node.Marker, next: node.Start})
		} else if len(w.lists) > 0 {
			w.lists = w.lists[:len(w.lists)-1]
		}
	case *ast.ListItem:
		if entering {
			w.push()
			w.cur.Flags |= AttrListItem
			w.cur.ListDepth = len(w.lists)
			w.appendListMarker()
		} else {
			w.pop()
		}
	case *extast.Table:
		if entering {
			w.push()
			w.cur.Flags |= AttrTable
		} else {
			if w.b.Len() == w.rowStart {
				// an empty last row still needs a line of its own
				w.appendEmptyLine()
			}
			w.pop()
		}
	case *extast.TableHeader:
		if entering {
			w.push()
			w.cur.Flags |= AttrTableHeader
			w.rowStart = w.b.Len()
		} else {
			w.pop()
		}
	case *extast.TableRow:
		if entering {
			if node.PreviousSibling() != nil {
				w.appendBreak()
			}
			w.rowStart = w.b.Len()
		}
	case *extast.TableCell:
		if entering && node.PreviousSibling() != nil {
			w.b.Append("\t", w.cur)
		}
	case *extast.TaskCheckBox:
		if entering {
			attrs := w.cur
			marker := taskUncheckedMarker
			attrs.Flags |= AttrTaskUnchecked
			if node.IsChecked {
				marker = taskCheckedMarker
				attrs.Flags = attrs.Flags&^AttrTaskUnchecked | AttrTaskChecked
			}
			w.b.Append(marker, attrs)
		}
	case *ast.Text:
		if entering {
			w.appendText(node)
		}
	case *ast.String:
		if entering {
			value := node.Value
			switch {
			case node.IsCode():
				// typographic substitutions arrive as entity references
				value = util.ResolveEntityNames(value)
			case !node.IsRaw():
				value = decodeInline(value)
			}
			w.b.Append(string(value), w.cur)
		}
	case *ast.CodeSpan:
		if entering {
			attrs := w.cur
			attrs.Flags |= AttrCode
			w.b.Append(codeSpanText(node, w.src), attrs)
		}
		return ast.WalkSkipChildren, nil
	case *ast.Emphasis:
		if entering {
			w.push()
			if node.Level >= 2 {
				w.cur.Flags |= AttrStrong
			} else {
				w.cur.Flags |= AttrEmphasis
			}
		} else {
			w.pop()
		}
	case *extast.Strikethrough:
		if entering {
			w.push()
			w.cur.Flags |= AttrStrikethrough
		} else {
			w.pop()
		}
	case *ast.Link:
		if entering {
			w.push()
			w.cur.Flags |= AttrLink
			w.cur.URL = string(node.Destination)
			w.cur.Title = string(node.Title)
		} else {
			w.pop()
		}
	case *ast.Image:
		if entering {
			w.push()
			w.cur.Flags |= AttrImage
			w.cur.URL = string(node.Destination)
			w.cur.Title = string(node.Title)
			if !hasVisibleText(node, w.src) {
				w.b.Append(w.cur.URL, w.cur)
				return ast.WalkSkipChildren, nil
			}
		} else {
			w.pop()
		}
	case *ast.AutoLink:
		if entering {
			attrs := w.cur
			attrs.Flags |= AttrLink
			attrs.URL = string(node.URL(w.src))
			w.b.Append(string(node.Label(w.src)), attrs)
		}
		return ast.WalkSkipChildren, nil
	case *ast.RawHTML:
		if entering {
			var raw bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(w.src))
			}
			if lineBreakTag.Match(bytes.TrimSpace(raw.Bytes())) {
				w.appendBreak()
			}
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (w *astWriter) appendListMarker() {
	if len(w.lists) == 0 {
		return
	}
	list := &w.lists[len(w.lists)-1]
	marker := bulletMarker
	if list.ordered {
		marker = strconv.Itoa(list.next) + string(list.marker) + " "
		list.next++
	}
	attrs := w.cur
	attrs.Flags |= AttrListMarker
	w.b.Append(marker, attrs)
}

func (w *astWriter) appendText(node *ast.Text) {
	value := node.Segment.Value(w.src)
	if !node.IsRaw() {
		value = decodeInline(value)
	}
	w.b.Append(string(value), w.cur)
	switch {
	case node.HardLineBreak():
		w.appendBreak()
	case node.SoftLineBreak():
		if w.softBreaks {
			w.appendBreak()
		} else {
			w.b.Append(" ", w.cur)
		}
	}
}

// appendBreak ends the current line inside a block.
func (w *astWriter) appendBreak() {
	w.b.Append("\n", w.cur.Block())
	w.keep = w.b.Len()
}

// appendEmptyLine terminates an empty line with a newline carrying the
// current block, so the line keeps its block context.
func (w *astWriter) appendEmptyLine() {
	w.keep = w.b.Len()
	w.b.Append("\n", w.cur.Block())
}

func (w *astWriter) appendCodeBlock(lines *text.Segments, language string) {
	var buf strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(w.src))
	}
	w.push()
	w.cur = w.container()
	w.cur.Flags |= AttrCodeBlock
	w.cur.Language = language
	if code := strings.TrimRight(buf.String(), "\n"); code != "" {
		w.b.Append(code, w.cur)
	} else {
		w.appendEmptyLine()
	}
	w.pop()
}

func (w *astWriter) appendHTMLBlock(node *ast.HTMLBlock) {
	if node.HTMLBlockType == ast.HTMLBlockType2 {
		return
	}
	var buf strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(w.src))
	}
	if node.HasClosure() {
		buf.Write(node.ClosureLine.Value(w.src))
	}
	attrs := w.container()
	attrs.Flags |= AttrHTML
	w.b.Append(strings.TrimRight(buf.String(), "\n"), attrs)
}

func codeSpanText(node ast.Node, src []byte) string {
	var buf strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	return strings.ReplaceAll(buf.String(), "\n", " ")
}

func hasVisibleText(node ast.Node, src []byte) bool {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			if len(bytes.TrimSpace(t.Segment.Value(src))) > 0 {
				return true
			}
		case *ast.String:
			if len(bytes.TrimSpace(t.Value)) > 0 {
				return true
			}
		default:
			if hasVisibleText(c, src) {
				return true
			}
		}
	}
	return false
}

func decodeInline(b []byte) []byte {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}

// sanitize drops invalid UTF-8, NUL and control bytes, a leading BOM and
// normalises line endings.
func sanitize(src []byte) []byte {
	src = trimBOM(src)
	dst := make([]byte, len(src))
	clean := sanitizeBytes(dst, src)
	if bytes.IndexByte(clean, '\r') >= 0 {
		clean = bytes.ReplaceAll(clean, []byte("\r\n"), []byte("\n"))
		clean = bytes.ReplaceAll(clean, []byte("\r"), []byte("\n"))
	}
	return clean
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
