package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeExecutable(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDiscoverChromiumExplicitPathWins(t *testing.T) {
	dir := t.TempDir()
	explicit := writeExecutable(t, filepath.Join(dir, "my-chrome"))
	browser := writeExecutable(t, filepath.Join(dir, "other-browser"))

	found, err := discoverChromium(explicit, browser, "")
	if err != nil {
		t.Fatalf("discoverChromium returned error: %v", err)
	}
	if found != explicit {
		t.Fatalf("found %q, want explicit override %q", found, explicit)
	}
}

func TestDiscoverChromiumFallsBackToBrowserEnv(t *testing.T) {
	dir := t.TempDir()
	browser := writeExecutable(t, filepath.Join(dir, "firefox-like"))

	found, err := discoverChromium(filepath.Join(dir, "missing"), browser, "")
	if err != nil {
		t.Fatalf("discoverChromium returned error: %v", err)
	}
	if found != browser {
		t.Fatalf("found %q, want browser override %q", found, browser)
	}
}

func TestScanCacheDirFindsNestedBinary(t *testing.T) {
	cache := t.TempDir()
	nested := writeExecutable(t, filepath.Join(cache, "chrome", "linux-121", "chrome-headless-shell"))

	if found := scanCacheDir(cache); found != nested {
		t.Fatalf("scanCacheDir = %q, want %q", found, nested)
	}
}

func TestScanCacheDirIsDepthBounded(t *testing.T) {
	cache := t.TempDir()
	deep := filepath.Join(cache, "a", "b", "c", "d", "e", "f", "g")
	writeExecutable(t, filepath.Join(deep, "chromium"))

	if found := scanCacheDir(cache); found != "" {
		t.Fatalf("scanCacheDir should not descend past the depth bound, found %q", found)
	}
}

func TestScanCacheDirIgnoresNonExecutableFiles(t *testing.T) {
	cache := t.TempDir()
	path := filepath.Join(cache, "chromium")
	if err := os.WriteFile(path, []byte("not a binary"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if found := scanCacheDir(cache); found != "" {
		t.Fatalf("scanCacheDir should skip non-executable files, found %q", found)
	}
}

func TestDiscoverChromiumNotFound(t *testing.T) {
	for _, candidate := range knownInstallPaths {
		if isExecutableFile(candidate) {
			t.Skipf("browser installed at %s", candidate)
		}
	}

	_, err := discoverChromium("", "", t.TempDir())
	if !errors.Is(err, ErrChromiumNotFound) {
		t.Fatalf("expected ErrChromiumNotFound, got %v", err)
	}
}
