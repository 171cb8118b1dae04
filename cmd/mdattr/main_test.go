package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenInputFileAndURL(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	reader, closer, err := openInputs(ctx, []string{path}, nil)
	if err != nil {
		t.Fatalf("openInputs file: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ := io.ReadAll(reader)
	if string(buf) != "hello" {
		t.Fatalf("unexpected file content: %q", string(buf))
	}

	fileURL := "file://" + path
	reader, closer, err = openInputs(ctx, []string{fileURL}, nil)
	if err != nil {
		t.Fatalf("openInputs file URL: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ = io.ReadAll(reader)
	if string(buf) != "hello" {
		t.Fatalf("unexpected file URL content: %q", string(buf))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown")
		_, _ = w.Write([]byte("stream"))
	}))
	defer srv.Close()
	reader, closer, err = openInputs(ctx, []string{srv.URL}, nil)
	if err != nil {
		t.Fatalf("openInputs http: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ = io.ReadAll(reader)
	if string(buf) != "stream" {
		t.Fatalf("unexpected http content: %q", string(buf))
	}
}

func TestOpenInputURLConvertsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Remote</h1><p>Some <strong>bold</strong> text.</p></body></html>"))
	}))
	defer srv.Close()
	reader, _, err := openInputs(context.Background(), []string{srv.URL}, nil)
	if err != nil {
		t.Fatalf("openInputs: %v", err)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(buf), "# Remote") || !strings.Contains(string(buf), "**bold**") {
		t.Fatalf("expected markdown, got %q", string(buf))
	}
}

func TestOpenInputsConcatenates(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	if err := os.WriteFile(first, []byte("one "), 0o644); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := os.WriteFile(second, []byte("two"), 0o644); err != nil {
		t.Fatalf("write second: %v", err)
	}
	reader, closer, err := openInputs(context.Background(), []string{first, second}, nil)
	if err != nil {
		t.Fatalf("openInputs concat: %v", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	buf, _ := io.ReadAll(reader)
	if string(buf) != "one two" {
		t.Fatalf("unexpected concatenated content: %q", string(buf))
	}
}

func TestOpenInputsMissingFile(t *testing.T) {
	reader, _, err := openInputs(context.Background(), []string{filepath.Join(t.TempDir(), "missing.md")}, nil)
	if err != nil {
		t.Fatalf("openInputs should defer opening: %v", err)
	}
	if _, err := io.ReadAll(reader); err == nil {
		t.Fatalf("expected read error for missing file")
	}
	if _, _, err := openInputs(context.Background(), []string{"  "}, nil); err == nil {
		t.Fatalf("expected error for empty argument")
	}
}

func TestResolveOSC8(t *testing.T) {
	cases := map[string]bool{
		"on":  true,
		"off": false,
		"1":   true,
		"0":   false,
	}
	for input, want := range cases {
		got, err := resolveOSC8(input)
		if err != nil {
			t.Fatalf("resolveOSC8(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("resolveOSC8(%q)=%v want %v", input, got, want)
		}
	}
	if _, err := resolveOSC8("nope"); err == nil {
		t.Fatalf("expected error for invalid osc8 value")
	}
}

func TestBoringThemeHasNoPrefixes(t *testing.T) {
	theme := boringTheme()
	styles := theme.Styles()
	if styles.Text.Prefix != "" {
		t.Fatalf("expected empty text prefix")
	}
	for i, h := range styles.Heading {
		if h.Prefix != "" {
			t.Fatalf("expected empty heading %d prefix", i+1)
		}
	}
	others := []string{
		styles.Emphasis.Prefix,
		styles.Strong.Prefix,
		styles.EmphasisStrong.Prefix,
		styles.Strikethrough.Prefix,
		styles.CodeInline.Prefix,
		styles.CodeBlock.Prefix,
		styles.Quote.Prefix,
		styles.ListMarker.Prefix,
		styles.LinkText.Prefix,
		styles.LinkURL.Prefix,
		styles.ThematicBreak.Prefix,
	}
	for _, prefix := range others {
		if strings.TrimSpace(prefix) != "" {
			t.Fatalf("expected empty prefix, got %q", prefix)
		}
	}
}

type runResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRunBoringANSI(t *testing.T) {
	res := runCLI(t, "# Title\n\nSome **bold** text with a [link](https://example.com).\n", "--boring", "-w", "40")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if strings.Contains(res.stdout, "\x1b") {
		t.Fatalf("boring output contains escapes: %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "Title") || !strings.Contains(res.stdout, "bold") {
		t.Fatalf("unexpected output: %q", res.stdout)
	}
}

func TestRunThemedANSI(t *testing.T) {
	res := runCLI(t, "# Title\n", "--osc8", "off", "-w", "40")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "\x1b[") {
		t.Fatalf("expected ANSI styling: %q", res.stdout)
	}
}

func TestRunJSON(t *testing.T) {
	src := "---\ntitle: Notes\nauthor: Ada\n---\n# Heading\n\nSome *text*.\n"
	res := runCLI(t, src, "--json")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	var out struct {
		Title   string `json:"title"`
		Author  string `json:"author"`
		Content struct {
			Text string `json:"text"`
			Runs []struct {
				Text  string `json:"text"`
				Attrs string `json:"attrs"`
			} `json:"runs"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, res.stdout)
	}
	if out.Title != "Notes" || out.Author != "Ada" {
		t.Fatalf("unexpected metadata: %+v", out)
	}
	if !strings.HasPrefix(out.Content.Text, "Heading") || strings.Contains(out.Content.Text, "title:") {
		t.Fatalf("unexpected text: %q", out.Content.Text)
	}
	if len(out.Content.Runs) < 2 {
		t.Fatalf("expected several runs, got %+v", out.Content.Runs)
	}
}

func TestRunPDFToPathWithVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "doc.pdf")
	res := runCLI(t, "# Report\n\nBody.\n", "--pdf", "-o", path, "--verify", "--pdf-author", "Ada")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "1 pages") || !strings.Contains(res.stderr, `title "Report"`) {
		t.Fatalf("missing verify summary: %q", res.stderr)
	}
	if !strings.Contains(res.stderr, `author "Ada"`) {
		t.Fatalf("author flag not applied: %q", res.stderr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestRunPDFEnabledByOutputExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.PDF")
	res := runCLI(t, "hello\n", "-o", path)
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF file")
	}
}

func TestRunPDFToStdout(t *testing.T) {
	res := runCLI(t, "hello\n", "--pdf", "--verify")
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if !strings.HasPrefix(res.stdout, "%PDF") {
		t.Fatalf("expected PDF on stdout")
	}
	if !strings.HasPrefix(res.stderr, "stdout: 1 pages") {
		t.Fatalf("unexpected verify output: %q", res.stderr)
	}
}

func TestRunPDFDocuments(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, "# Meeting Notes\n\nAgenda.\n", "--pdf-documents", "--documents-dir", dir)
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	path := strings.TrimSpace(res.stdout)
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "meeting-notes-") {
		t.Fatalf("unexpected path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestRunPDFFailureReportsKind(t *testing.T) {
	res := runCLI(t, "x\n", "--pdf", "-o", filepath.Join(t.TempDir(), "out.pdf"), "--pdf-font-family", "Comic")
	if res.code != 1 {
		t.Fatalf("expected exit 1, got %d", res.code)
	}
	if !strings.Contains(res.stderr, "pdf export: render:") {
		t.Fatalf("unexpected error output: %q", res.stderr)
	}
}

func TestRunRejectsIncompleteFontSet(t *testing.T) {
	font := filepath.Join(t.TempDir(), "regular.ttf")
	if err := os.WriteFile(font, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res := runCLI(t, "x\n", "--pdf", "-o", filepath.Join(t.TempDir(), "out.pdf"), "--pdf-regular-font", font)
	if res.code != 2 || !strings.Contains(res.stderr, "must all be provided") {
		t.Fatalf("expected font set error, got %d %q", res.code, res.stderr)
	}
}

func TestRunUnknownTheme(t *testing.T) {
	res := runCLI(t, "x", "--theme", "nope")
	if res.code != 2 {
		t.Fatalf("expected exit 2, got %d", res.code)
	}
	if !strings.Contains(res.stderr, `unknown theme "nope"`) || !strings.Contains(res.stderr, "default") {
		t.Fatalf("unexpected stderr: %q", res.stderr)
	}
}

func TestRunListThemesAndVersion(t *testing.T) {
	res := runCLI(t, "", "--list-themes")
	if res.code != 0 || !strings.Contains(res.stdout, "default") {
		t.Fatalf("unexpected list-themes result: %+v", res)
	}
	res = runCLI(t, "", "--version")
	if res.code != 0 || !strings.Contains(res.stdout, "pkt.systems/mdattr") {
		t.Fatalf("unexpected version result: %+v", res)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdattr.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	path := writeConfig(t, `
theme = "nord"
width = 60
typographer = true

[pdf]
page_size = "Letter"
margin = 30
font_size = 10
page_numbers = true
keywords = ["a", "b"]
`)
	var o cliOptions
	flags := newFlagSet(&o, io.Discard)
	if err := flags.Parse([]string{"--config", path, "--pdf-font-size", "14", "-w", "100"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	file, err := loadConfig(o.configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	o.applyFile(file, flags.Changed)

	if o.themeName != "nord" || !o.typographer {
		t.Fatalf("file values not applied: %+v", o)
	}
	if o.width != 100 {
		t.Fatalf("flag width should win, got %d", o.width)
	}
	if o.pdf.FontSize != 14 {
		t.Fatalf("flag font size should win, got %v", o.pdf.FontSize)
	}
	if o.pdf.PageSize != "Letter" || o.pdf.Margin != 30 || !o.pdf.PageNumbers || len(o.pdf.Keywords) != 2 {
		t.Fatalf("file pdf values not applied: %+v", o.pdf)
	}
}

func TestConfigFileErrors(t *testing.T) {
	unknown := writeConfig(t, "colour = \"red\"\n")
	if _, err := loadConfig(unknown); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	invalid := writeConfig(t, "[pdf]\npage_size = \"B9\"\n")
	if _, err := loadConfig(invalid); err == nil {
		t.Fatalf("expected validation error")
	}
	res := runCLI(t, "x", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	if res.code != 2 || !strings.HasPrefix(res.stderr, "config:") {
		t.Fatalf("expected config error, got %d %q", res.code, res.stderr)
	}
}

func TestConfigFileDrivesRun(t *testing.T) {
	path := writeConfig(t, "boring = true\nwidth = 30\nosc8 = \"off\"\n")
	res := runCLI(t, "# Title\n", "--config", path)
	if res.code != 0 {
		t.Fatalf("exit %d: %s", res.code, res.stderr)
	}
	if strings.Contains(res.stdout, "\x1b") {
		t.Fatalf("boring from config not applied: %q", res.stdout)
	}
}
