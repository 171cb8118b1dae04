// Package pdf lays out attributed text as PDF and writes PDF files.
//
// Render converts Markdown from an io.Reader; RenderDocument and
// RenderAttributed take already converted text. Styling comes from the same
// themes as the terminal renderer: set Config.Themed to use theme colors on
// a dark page, or leave it unset for black text on white paper. Boring drops
// color entirely.
//
// Example:
//
//	cfg := pdf.DefaultConfig()
//	cfg.PageSize = "Letter"
//	cfg.PageNumbers = true
//
//	err := pdf.Render(pdf.RenderRequest{
//		Reader: strings.NewReader("# Report\n\nHello PDF.\n"),
//		Writer: outFile,
//		Theme:  mdattr.DefaultTheme(),
//		Config: cfg,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Exporter writes files. Export targets an explicit path and
// ExportToDocuments picks a unique name in the user's documents directory:
//
//	var exp pdf.Exporter
//	path, err := exp.ExportToDocuments(ctx, markdown)
//
// Core PDF fonts are used by default. For full Unicode coverage set
// RegularFont, BoldFont and ItalicFont (or the *FontBytes fields) to
// TrueType files.
package pdf
