package mdattr

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

const maxFetchBytes = 32 << 20

// Fetch retrieves a Markdown document over HTTP(S). HTML responses are
// converted to Markdown.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("fetch: URL is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return "", fmt.Errorf("fetch: unsupported scheme %q", req.URL.Scheme)
	}
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, text/html;q=0.8, */*;q=0.1")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch: status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("fetch: read body: %w", err)
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return string(body), nil
	}
	return HTMLToMarkdown(string(body), baseURL(resp.Request.URL))
}

// HTMLToMarkdown converts an HTML document to Markdown. Relative links are
// resolved against base when it is not empty.
func HTMLToMarkdown(html string, base string) (string, error) {
	converted, err := md.NewConverter(base, true, nil).ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("html to markdown: %w", err)
	}
	return converted, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func baseURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// HTTPRenderRequest configures HTTPRender.
type HTTPRenderRequest struct {
	URL     string
	Client  *http.Client
	Writer  io.Writer
	Width   int
	Theme   Theme
	Options []RenderOption
	Convert []Option
}

// HTTPRender fetches a document over HTTP(S) and writes it as ANSI text.
func HTTPRender(ctx context.Context, req HTTPRenderRequest) error {
	if req.Writer == nil {
		return fmt.Errorf("http render: writer is nil")
	}
	src, err := Fetch(ctx, req.Client, req.URL)
	if err != nil {
		return fmt.Errorf("http render: %w", err)
	}
	doc := ConvertDocument(src, req.Convert...)
	return RenderAttributed(req.Writer, doc.Text, req.Width, req.Theme, req.Options...)
}
