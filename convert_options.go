package mdattr

// Option configures Markdown conversion.
type Option func(*convertConfig)

type convertConfig struct {
	frontMatter bool
	gfm         bool
	softBreaks  bool
	typographer bool
}

func defaultConvertConfig() convertConfig {
	return convertConfig{
		frontMatter: true,
		gfm:         true,
	}
}

// WithFrontMatter enables or disables front matter detection. When enabled,
// a leading YAML, TOML or JSON front matter block is removed from the text
// and used as document metadata.
func WithFrontMatter(enabled bool) Option {
	return func(cfg *convertConfig) {
		cfg.frontMatter = enabled
	}
}

// WithGFM enables or disables the GitHub Flavored Markdown extensions
// (tables, strikethrough, task lists and bare URL links).
func WithGFM(enabled bool) Option {
	return func(cfg *convertConfig) {
		cfg.gfm = enabled
	}
}

// WithSoftBreaks keeps soft line breaks as newlines instead of spaces.
func WithSoftBreaks(enabled bool) Option {
	return func(cfg *convertConfig) {
		cfg.softBreaks = enabled
	}
}

// WithTypographer replaces straight quotes, dashes and ellipses with their
// typographic forms.
func WithTypographer(enabled bool) Option {
	return func(cfg *convertConfig) {
		cfg.typographer = enabled
	}
}
