package pdf

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const (
	documentsEnv       = "MDATTR_DOCUMENTS_DIR"
	xdgDocumentsEnv    = "XDG_DOCUMENTS_DIR"
	defaultFileSlug    = "document"
	maxSlugLength      = 48
	fileTimeLayout     = "20060102-150405"
	documentsDirPerm   = 0o755
	userDirsConfigFile = "user-dirs.dirs"
)

// DocumentsDir returns the per-user documents directory: MDATTR_DOCUMENTS_DIR,
// then XDG_DOCUMENTS_DIR from the environment or user-dirs.dirs, then
// ~/Documents.
func DocumentsDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(documentsEnv)); dir != "" {
		return expandHome(dir)
	}
	if dir := strings.TrimSpace(os.Getenv(xdgDocumentsEnv)); dir != "" {
		return expandHome(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("documents dir: %w", err)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	if dir, ok := readUserDirs(filepath.Join(configHome, userDirsConfigFile), home); ok {
		return dir, nil
	}
	return filepath.Join(home, "Documents"), nil
}

// readUserDirs looks up XDG_DOCUMENTS_DIR in an xdg-user-dirs file.
func readUserDirs(path, home string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != xdgDocumentsEnv {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		value = strings.Replace(value, "$HOME", home, 1)
		if value == "" || value == home {
			return "", false
		}
		return filepath.Clean(value), true
	}
	return "", false
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// documentFileName builds <slug>-<yyyymmdd-hhmmss>-<id8>.pdf.
func documentFileName(title string, now time.Time) string {
	name := defaultFileSlug
	if title != "" {
		if s, err := slug.Normalize(title); err == nil && s != "" {
			name = s
		}
	}
	if len(name) > maxSlugLength {
		name = strings.TrimRight(name[:maxSlugLength], "-_")
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s.pdf", name, now.Format(fileTimeLayout), id)
}
