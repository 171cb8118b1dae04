package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"pkt.systems/mdattr"
)

// ErrorKind classifies export failures.
type ErrorKind int

const (
	KindInvalidPath ErrorKind = iota + 1
	KindRender
	KindWrite
	KindCanceled
)

// Sentinels matched by ExportError.Is.
var (
	ErrInvalidPath = errors.New("invalid output path")
	ErrRender      = errors.New("render failed")
	ErrWrite       = errors.New("write failed")
	ErrCanceled    = errors.New("export canceled")
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidPath:
		return "invalid-path"
	case KindRender:
		return "render"
	case KindWrite:
		return "write"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidPath:
		return ErrInvalidPath
	case KindRender:
		return ErrRender
	case KindWrite:
		return ErrWrite
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// ExportError is returned by Exporter methods.
type ExportError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("pdf export: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("pdf export: %s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error kind.
func (e *ExportError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func exportErr(kind ErrorKind, path string, err error) *ExportError {
	return &ExportError{Kind: kind, Path: path, Err: err}
}

// Exporter converts Markdown and writes PDF files. The zero value is ready
// to use; an Exporter must not be copied after first use.
type Exporter struct {
	Config  Config
	Theme   mdattr.Theme
	Options []mdattr.Option
	// DocumentsDir overrides the directory used by ExportToDocuments.
	DocumentsDir string
	Logger       *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time

	locks pathLocks
}

var discardLogger = &log.Logger{Level: log.ErrorLevel, Writer: log.IOWriter{Writer: io.Discard}}

func (e *Exporter) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return discardLogger
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Export writes markdown as a PDF at path. Missing parent directories are
// created and an existing file is replaced atomically.
func (e *Exporter) Export(ctx context.Context, markdown, path string) error {
	abs, err := resolveOutputPath(path)
	if err != nil {
		return e.fail(exportErr(KindInvalidPath, path, err))
	}
	doc := mdattr.ConvertDocument(markdown, e.Options...)
	return e.export(ctx, doc, abs)
}

// ExportToDocuments writes markdown as a PDF into the documents directory
// and returns the absolute path of the new file.
func (e *Exporter) ExportToDocuments(ctx context.Context, markdown string) (string, error) {
	dir := e.DocumentsDir
	if dir == "" {
		var err error
		if dir, err = DocumentsDir(); err != nil {
			return "", e.fail(exportErr(KindInvalidPath, "", err))
		}
	}
	doc := mdattr.ConvertDocument(markdown, e.Options...)
	name := documentFileName(doc.Meta.Title, e.now())
	abs, err := resolveOutputPath(filepath.Join(dir, name))
	if err != nil {
		return "", e.fail(exportErr(KindInvalidPath, dir, err))
	}
	if err := e.export(ctx, doc, abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (e *Exporter) export(ctx context.Context, doc *mdattr.Document, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	e.logger().Debug().Str("path", path).Int("text_bytes", doc.Text.Len()).Msg("pdf export started")
	if err := ctx.Err(); err != nil {
		return e.fail(exportErr(KindCanceled, path, err))
	}
	unlock := e.locks.lock(path)
	defer unlock()

	var buf bytes.Buffer
	pages, err := renderDocument(&buf, doc, e.Theme, e.Config)
	if err != nil {
		return e.fail(exportErr(KindRender, path, err))
	}
	if err := writeFileAtomic(ctx, path, buf.Bytes()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return e.fail(exportErr(KindCanceled, path, err))
		}
		return e.fail(exportErr(KindWrite, path, err))
	}
	e.logger().Info().
		Str("path", path).
		Int("size", buf.Len()).
		Int("pages", pages).
		Dur("duration", time.Since(start)).
		Msg("pdf exported")
	return nil
}

func (e *Exporter) fail(err *ExportError) error {
	entry := e.logger().Error()
	if err.Kind == KindCanceled {
		entry = e.logger().Warn()
	}
	entry.Str("kind", err.Kind.String()).Str("path", err.Path).Err(err.Err).Msg("pdf export failed")
	return err
}

// GenerateInDocuments writes markdown as a PDF into the documents directory
// and returns its absolute path, or "" on failure.
func (e *Exporter) GenerateInDocuments(markdown string) string {
	path, err := e.ExportToDocuments(context.Background(), markdown)
	if err != nil {
		return ""
	}
	return path
}

// GenerateAtPath writes markdown as a PDF at path and reports success.
func (e *Exporter) GenerateAtPath(markdown, path string) bool {
	return e.Export(context.Background(), markdown, path) == nil
}

var defaultExporter Exporter

// GenerateInDocuments uses a default Exporter.
func GenerateInDocuments(markdown string) string {
	return defaultExporter.GenerateInDocuments(markdown)
}

// GenerateAtPath uses a default Exporter.
func GenerateAtPath(markdown, path string) bool {
	return defaultExporter.GenerateAtPath(markdown, path)
}

// resolveOutputPath trims, expands ~ and makes path absolute.
func resolveOutputPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return "", fmt.Errorf("path names a directory")
	}
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory")
	}
	return abs, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, documentsDirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	committed = true
	return nil
}

// pathLocks serialises writers per destination path.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func (p *pathLocks) lock(path string) func() {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*pathLock)
	}
	l := p.locks[path]
	if l == nil {
		l = &pathLock{}
		p.locks[path] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, path)
		}
		p.mu.Unlock()
	}
}
