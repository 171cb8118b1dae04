// Package mdattr converts Markdown to attributed text.
//
// An AttributedString holds the visible characters of a document with the
// Markdown syntax removed, together with contiguous attribute runs that say
// how each byte range is styled: emphasis, code, links, headings, list and
// quote nesting, tables. Renderers consume the runs; this package ships a
// terminal renderer and the pdf subpackage writes PDF documents.
//
// Core properties:
//   - CommonMark with GitHub Flavored Markdown extensions
//   - Conversion never fails; invalid input is sanitised and rendered best effort
//   - Results are immutable and safe for concurrent use
//   - Theme-driven styling via ANSI prefixes, shared with the PDF renderer
//
// Example:
//
//	text := mdattr.Convert("# Hello\n\nMarkdown *in*, attributes out.\n")
//	for _, run := range text.Runs() {
//		fmt.Printf("%q %s\n", text.RunText(run), run.Flags)
//	}
//
//	err := mdattr.RenderAttributed(os.Stdout, text, 80, mdattr.DefaultTheme())
//	if err != nil {
//		log.Fatal(err)
//	}
package mdattr
