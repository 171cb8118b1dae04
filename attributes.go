package mdattr

import "strings"

// Attr is a set of style flags attached to a run of text.
type Attr uint32

const (
	// AttrStrong marks strong emphasis (**text**).
	AttrStrong Attr = 1 << iota
	// AttrEmphasis marks emphasis (*text*).
	AttrEmphasis
	// AttrStrikethrough marks GFM strikethrough (~~text~~).
	AttrStrikethrough
	// AttrCode marks an inline code span.
	AttrCode
	// AttrLink marks link text; Attributes.URL holds the destination.
	AttrLink
	// AttrImage marks image alt text; Attributes.URL holds the source.
	AttrImage
	// AttrHeading marks heading text; Attributes.HeadingLevel holds 1-6.
	AttrHeading
	// AttrCodeBlock marks the lines of a fenced or indented code block.
	AttrCodeBlock
	// AttrQuote marks text inside a block quote; Attributes.QuoteDepth holds the nesting.
	AttrQuote
	// AttrListItem marks text inside a list item; Attributes.ListDepth holds the nesting.
	AttrListItem
	// AttrListMarker marks the bullet or number that opens a list item.
	AttrListMarker
	// AttrTaskChecked marks a checked task box.
	AttrTaskChecked
	// AttrTaskUnchecked marks an unchecked task box.
	AttrTaskUnchecked
	// AttrThematicBreak marks a horizontal rule.
	AttrThematicBreak
	// AttrTable marks table cells and separators.
	AttrTable
	// AttrTableHeader marks header row cells.
	AttrTableHeader
	// AttrHTML marks verbatim HTML block lines.
	AttrHTML
)

// blockAttrs are flags that describe the block a line belongs to rather
// than inline styling.
const blockAttrs = AttrHeading | AttrCodeBlock | AttrQuote | AttrListItem | AttrThematicBreak | AttrTable | AttrHTML

var attrNames = [...]string{
	"strong",
	"emphasis",
	"strikethrough",
	"code",
	"link",
	"image",
	"heading",
	"code-block",
	"quote",
	"list-item",
	"list-marker",
	"task-checked",
	"task-unchecked",
	"thematic-break",
	"table",
	"table-header",
	"html",
}

// Has reports whether all bits of flag are set.
func (a Attr) Has(flag Attr) bool {
	return flag != 0 && a&flag == flag
}

// Any reports whether at least one bit of flags is set.
func (a Attr) Any(flags Attr) bool {
	return a&flags != 0
}

func (a Attr) String() string {
	if a == 0 {
		return "plain"
	}
	var b strings.Builder
	for i, name := range attrNames {
		if a&(1<<uint(i)) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	return b.String()
}

// Attributes is the complete styling of a run. It is comparable with ==.
type Attributes struct {
	Flags        Attr
	HeadingLevel int
	URL          string
	Title        string
	Language     string
	QuoteDepth   int
	ListDepth    int
}

// Block returns only the block-level part of a, dropping inline styling.
func (a Attributes) Block() Attributes {
	out := Attributes{
		Flags:      a.Flags & blockAttrs,
		QuoteDepth: a.QuoteDepth,
		ListDepth:  a.ListDepth,
	}
	if out.Flags.Has(AttrHeading) {
		out.HeadingLevel = a.HeadingLevel
	}
	if out.Flags.Has(AttrCodeBlock) {
		out.Language = a.Language
	}
	return out
}

// IsZero reports whether a carries no styling.
func (a Attributes) IsZero() bool {
	return a == Attributes{}
}
