package mdattr

import (
	"encoding/json"
	"strings"
)

// Run is a maximal byte range of Text sharing one Attributes value.
// Start and End are byte offsets into the owning AttributedString, End exclusive.
type Run struct {
	Start int
	End   int
	Attributes
}

// Len returns the byte length of the run.
func (r Run) Len() int { return r.End - r.Start }

// AttributedString is immutable styled text: the visible characters of a
// Markdown document together with contiguous attribute runs covering them.
//
// Runs never overlap, never are empty, cover the text exactly and adjacent
// runs always differ. The zero value is an empty string.
type AttributedString struct {
	text string
	runs []Run
}

// Plain returns an AttributedString with text and no styling.
func Plain(text string) *AttributedString {
	var b Builder
	b.Append(text, Attributes{})
	return b.AttributedString()
}

// Text returns the visible characters.
func (s *AttributedString) Text() string {
	if s == nil {
		return ""
	}
	return s.text
}

func (s *AttributedString) String() string { return s.Text() }

// Len returns the length of the text in bytes.
func (s *AttributedString) Len() int {
	if s == nil {
		return 0
	}
	return len(s.text)
}

// Runs returns a copy of the attribute runs.
func (s *AttributedString) Runs() []Run {
	if s == nil || len(s.runs) == 0 {
		return nil
	}
	out := make([]Run, len(s.runs))
	copy(out, s.runs)
	return out
}

// RunText returns the text covered by r.
func (s *AttributedString) RunText(r Run) string {
	return s.text[r.Start:r.End]
}

// AttributesAt returns the attributes at byte offset i and the run that
// contains it. ok is false when i is out of range.
func (s *AttributedString) AttributesAt(i int) (Attributes, Run, bool) {
	if s == nil || i < 0 || i >= len(s.text) {
		return Attributes{}, Run{}, false
	}
	lo, hi := 0, len(s.runs)
	for lo < hi {
		mid := (lo + hi) / 2
		r := s.runs[mid]
		switch {
		case i < r.Start:
			hi = mid
		case i >= r.End:
			lo = mid + 1
		default:
			return r.Attributes, r, true
		}
	}
	return Attributes{}, Run{}, false
}

// Slice returns the attributed substring [start, end). Offsets are clamped.
func (s *AttributedString) Slice(start, end int) *AttributedString {
	if s == nil {
		return &AttributedString{}
	}
	start = max(0, min(start, len(s.text)))
	end = max(start, min(end, len(s.text)))
	var b Builder
	for _, r := range s.runs {
		if r.End <= start || r.Start >= end {
			continue
		}
		b.Append(s.text[max(r.Start, start):min(r.End, end)], r.Attributes)
	}
	return b.AttributedString()
}

// Equal reports whether s and o have the same text and runs.
func (s *AttributedString) Equal(o *AttributedString) bool {
	if s.Text() != o.Text() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	if len(s.runs) != len(o.runs) {
		return false
	}
	for i := range s.runs {
		if s.runs[i] != o.runs[i] {
			return false
		}
	}
	return true
}

// Line is one newline-delimited line of an AttributedString.
type Line struct {
	// Start and End delimit the line content, excluding the newline.
	Start int
	End   int
	// Runs are the runs of the line, clipped to it. Empty lines have none.
	Runs []Run
	// Block is the block context of the line: the block part of its first
	// run, or of its terminating newline when the line is empty.
	Block Attributes
}

// Lines splits s at '\n'. A trailing newline does not produce an extra line.
func (s *AttributedString) Lines() []Line {
	if s.Len() == 0 {
		return nil
	}
	lines := make([]Line, 0, strings.Count(s.text, "\n")+1)
	ri := 0
	start := 0
	for start <= len(s.text) {
		end := strings.IndexByte(s.text[start:], '\n')
		if end < 0 {
			end = len(s.text)
		} else {
			end += start
		}
		if start == len(s.text) {
			break
		}
		line := Line{Start: start, End: end}
		for ri < len(s.runs) && s.runs[ri].End <= start {
			ri++
		}
		for j := ri; j < len(s.runs) && s.runs[j].Start < end; j++ {
			r := s.runs[j]
			r.Start = max(r.Start, start)
			r.End = min(r.End, end)
			if r.Start < r.End {
				line.Runs = append(line.Runs, r)
			}
		}
		switch {
		case len(line.Runs) > 0:
			line.Block = line.Runs[0].Block()
		case end < len(s.text):
			if attrs, _, ok := s.AttributesAt(end); ok {
				line.Block = attrs.Block()
			}
		}
		lines = append(lines, line)
		start = end + 1
	}
	return lines
}

type jsonRun struct {
	Text         string `json:"text"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Flags        string `json:"attrs"`
	HeadingLevel int    `json:"heading_level,omitempty"`
	URL          string `json:"url,omitempty"`
	Title        string `json:"title,omitempty"`
	Language     string `json:"language,omitempty"`
	QuoteDepth   int    `json:"quote_depth,omitempty"`
	ListDepth    int    `json:"list_depth,omitempty"`
}

// MarshalJSON encodes the text and its runs.
func (s *AttributedString) MarshalJSON() ([]byte, error) {
	out := struct {
		Text string    `json:"text"`
		Runs []jsonRun `json:"runs"`
	}{Text: s.Text(), Runs: make([]jsonRun, 0, len(s.Runs()))}
	for _, r := range s.Runs() {
		out.Runs = append(out.Runs, jsonRun{
			Text:         s.RunText(r),
			Start:        r.Start,
			End:          r.End,
			Flags:        r.Flags.String(),
			HeadingLevel: r.HeadingLevel,
			URL:          r.URL,
			Title:        r.Title,
			Language:     r.Language,
			QuoteDepth:   r.QuoteDepth,
			ListDepth:    r.ListDepth,
		})
	}
	return json.Marshal(out)
}

// Builder accumulates attributed text. The zero value is ready to use.
type Builder struct {
	text strings.Builder
	runs []Run
}

// Append adds text with attrs, extending the previous run when the
// attributes are equal. Empty text is ignored.
func (b *Builder) Append(text string, attrs Attributes) {
	if text == "" {
		return
	}
	start := b.text.Len()
	b.text.WriteString(text)
	end := b.text.Len()
	if n := len(b.runs); n > 0 && b.runs[n-1].Attributes == attrs {
		b.runs[n-1].End = end
		return
	}
	b.runs = append(b.runs, Run{Start: start, End: end, Attributes: attrs})
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return b.text.Len() }

// TrailingNewlines counts the consecutive '\n' bytes at the end of the text.
func (b *Builder) TrailingNewlines() int {
	s := b.text.String()
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\n'; i-- {
		n++
	}
	return n
}

// TrimTrailingNewlines removes newlines at the end of the text.
func (b *Builder) TrimTrailingNewlines() {
	n := b.TrailingNewlines()
	if n == 0 {
		return
	}
	s := b.text.String()
	cut := len(s) - n
	b.text.Reset()
	b.text.WriteString(s[:cut])
	for len(b.runs) > 0 {
		last := &b.runs[len(b.runs)-1]
		if last.Start >= cut {
			b.runs = b.runs[:len(b.runs)-1]
			continue
		}
		if last.End > cut {
			last.End = cut
		}
		break
	}
}

// AttributedString returns an immutable snapshot of the builder contents.
func (b *Builder) AttributedString() *AttributedString {
	runs := make([]Run, len(b.runs))
	copy(runs, b.runs)
	return &AttributedString{text: b.text.String(), runs: runs}
}
