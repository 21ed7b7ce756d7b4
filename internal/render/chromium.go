package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"conciergerie_backend/platform/config"
)

// ErrChromiumNotFound is returned when no browser executable could be
// located through any discovery step. Callers treat it as a hard error:
// no PDF without a browser.
var ErrChromiumNotFound = errors.New("chromium executable not found")

// chromiumNames are the executable names probed on install paths and
// during the cache scan.
var chromiumNames = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
	"chrome-headless-shell",
	"headless_shell",
}

// knownInstallPaths are probed after the explicit overrides.
var knownInstallPaths = []string{
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/opt/google/chrome/chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// cacheScanMaxDepth bounds the recursive cache-directory scan.
const cacheScanMaxDepth = 5

// ChromiumEngine renders PDFs by launching a local headless browser. The
// executable is discovered once and reused; the process spawned per render
// is torn down on every exit path.
type ChromiumEngine struct {
	execPath string
	timeout  time.Duration
}

// NewChromiumEngine discovers the browser executable in order: explicit
// path override, generic browser env override, known install paths, then a
// bounded recursive scan of the cache directory. Returns ErrChromiumNotFound
// when every step comes up empty.
func NewChromiumEngine(cfg config.RendererConfig) (*ChromiumEngine, error) {
	path, err := discoverChromium(cfg.GetChromiumPath(), cfg.GetBrowserPath(), cfg.GetChromiumCacheDir())
	if err != nil {
		return nil, err
	}
	return &ChromiumEngine{execPath: path, timeout: 60 * time.Second}, nil
}

// ExecPath returns the discovered executable, for startup logging.
func (c *ChromiumEngine) ExecPath() string {
	return c.execPath
}

func discoverChromium(explicitPath, browserPath, cacheDir string) (string, error) {
	if explicitPath != "" && isExecutableFile(explicitPath) {
		return explicitPath, nil
	}
	if browserPath != "" && isExecutableFile(browserPath) {
		return browserPath, nil
	}
	for _, candidate := range knownInstallPaths {
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	if cacheDir != "" {
		if found := scanCacheDir(cacheDir); found != "" {
			return found, nil
		}
	}
	return "", ErrChromiumNotFound
}

// scanCacheDir walks cacheDir up to cacheScanMaxDepth levels looking for a
// known browser binary name. First hit wins.
func scanCacheDir(root string) string {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && strings.Count(rel, string(filepath.Separator)) >= cacheScanMaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		for _, name := range chromiumNames {
			if d.Name() == name && isExecutableFile(path) {
				found = path
				return fs.SkipAll
			}
		}
		return nil
	})
	return found
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// RenderPDF writes the HTML to a scratch directory, runs the browser with
// --headless --print-to-pdf, and returns the produced bytes. The scratch
// directory and the spawned process are cleaned up on success and failure
// alike.
func (c *ChromiumEngine) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "render-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	htmlPath := filepath.Join(workDir, "index.html")
	pdfPath := filepath.Join(workDir, "out.pdf")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("write scratch html: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.execPath,
		"--headless",
		"--no-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--no-pdf-header-footer",
		"--print-to-pdf="+pdfPath,
		"file://"+htmlPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("chromium render failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read rendered pdf: %w", err)
	}
	return pdf, nil
}
