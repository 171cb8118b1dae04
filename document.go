package mdattr

import (
	"bytes"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// Document is converted Markdown together with its metadata.
type Document struct {
	Meta Metadata
	Text *AttributedString
}

// Metadata describes a document. It is read from front matter; Title falls
// back to the first level-one heading.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords []string
	Date     time.Time
}

type frontMatterEnvelope struct {
	Title       string    `yaml:"title" toml:"title" json:"title"`
	Author      string    `yaml:"author" toml:"author" json:"author"`
	Subject     string    `yaml:"subject" toml:"subject" json:"subject"`
	Description string    `yaml:"description" toml:"description" json:"description"`
	Summary     string    `yaml:"summary" toml:"summary" json:"summary"`
	Keywords    []string  `yaml:"keywords" toml:"keywords" json:"keywords"`
	Tags        []string  `yaml:"tags" toml:"tags" json:"tags"`
	Date        time.Time `yaml:"date" toml:"date" json:"date"`
}

// splitFrontMatter separates leading front matter from the body. Input
// without front matter, or with front matter that does not decode, is
// returned unchanged.
func splitFrontMatter(src []byte) (Metadata, []byte) {
	if !hasFrontMatterDelimiter(src) {
		return Metadata{}, src
	}
	var env frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(src), &env)
	if err != nil {
		return Metadata{}, src
	}
	meta := Metadata{
		Title:   strings.TrimSpace(env.Title),
		Author:  strings.TrimSpace(env.Author),
		Subject: firstNonEmpty(env.Subject, env.Description, env.Summary),
		Date:    env.Date,
	}
	meta.Keywords = append(meta.Keywords, env.Keywords...)
	meta.Keywords = append(meta.Keywords, env.Tags...)
	return meta, body
}

func hasFrontMatterDelimiter(src []byte) bool {
	line := src
	if i := bytes.IndexByte(src, '\n'); i >= 0 {
		line = src[:i]
	}
	line = bytes.TrimRight(line, " \t")
	switch string(line) {
	case "---", "+++", "{":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
