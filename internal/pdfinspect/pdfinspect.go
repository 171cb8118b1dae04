// Package pdfinspect reads back PDF files produced by the renderer.
package pdfinspect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Report summarises a PDF.
type Report struct {
	Pages     int
	Size      int64
	Encrypted bool
	Title     string
	Author    string
	Subject   string
	Keywords  string
	Creator   string
}

var disableConfig sync.Once

func config() *model.Configuration {
	disableConfig.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// Inspect reads and validates a PDF.
func Inspect(rs io.ReadSeeker) (Report, error) {
	ctx, err := api.ReadContext(rs, config())
	if err != nil {
		return Report{}, fmt.Errorf("pdfinspect: read: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return Report{}, fmt.Errorf("pdfinspect: validate: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return Report{}, fmt.Errorf("pdfinspect: page count: %w", err)
	}
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return Report{}, fmt.Errorf("pdfinspect: size: %w", err)
	}
	return Report{
		Pages:     ctx.PageCount,
		Size:      size,
		Encrypted: ctx.Encrypt != nil,
		Title:     ctx.Title,
		Author:    ctx.Author,
		Subject:   ctx.Subject,
		Keywords:  ctx.Keywords,
		Creator:   ctx.Creator,
	}, nil
}

// InspectBytes inspects an in-memory PDF.
func InspectBytes(data []byte) (Report, error) {
	return Inspect(bytes.NewReader(data))
}

// InspectFile inspects the PDF at path.
func InspectFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("pdfinspect: %w", err)
	}
	defer f.Close()
	return Inspect(f)
}

var contentFileRe = regexp.MustCompile(`_Content_page_(\d+)\.txt$`)

// PageContents returns the decoded content stream of every page, keyed by
// page number.
func PageContents(data []byte) (map[int]string, error) {
	dir, err := os.MkdirTemp("", "pdfinspect-*")
	if err != nil {
		return nil, fmt.Errorf("pdfinspect: %w", err)
	}
	defer os.RemoveAll(dir)
	if err := api.ExtractContent(bytes.NewReader(data), dir, "doc", nil, config()); err != nil {
		return nil, fmt.Errorf("pdfinspect: extract content: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pdfinspect: %w", err)
	}
	pages := make(map[int]string, len(entries))
	for _, entry := range entries {
		m := contentFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("pdfinspect: %w", err)
		}
		pages[n] += string(content)
	}
	return pages, nil
}
