package config_test

// Notes:
// - These tests point XDG_CONFIG_HOME at a temp dir so they never touch the
//   real user configuration. t.Setenv implies no t.Parallel.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spokenlab/tgsplit/internal/config"
)

// useTempConfig redirects the config directory to a fresh temp dir.
func useTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	// Neutralize ambient fallbacks so tests control them explicitly.
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvMinDuration, "")
	t.Setenv(config.EnvManifestFormat, "")
	return dir
}

func TestSaveGetList(t *testing.T) {
	useTempConfig(t)

	if err := config.Save(config.KeyOutputDir, "/data/segments"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := config.Save(config.KeyManifestFormat, "json"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := config.Get(config.KeyOutputDir)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "/data/segments" {
		t.Errorf("Get(output-dir) = %q, want /data/segments", got)
	}

	all, err := config.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d entries, want 2", len(all))
	}
}

func TestGet_MissingFile(t *testing.T) {
	useTempConfig(t)

	got, err := config.Get(config.KeyOutputDir)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() = %q on missing config, want empty", got)
	}
}

func TestLoad_Precedence(t *testing.T) {
	useTempConfig(t)

	// Env fallback applies when the file has no value.
	t.Setenv(config.EnvManifestFormat, "json")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ManifestFormat != "json" {
		t.Errorf("ManifestFormat = %q, want env fallback json", cfg.ManifestFormat)
	}

	// File value wins over env.
	if err := config.Save(config.KeyManifestFormat, "csv"); err != nil {
		t.Fatal(err)
	}
	if err := config.Save(config.KeyMinDuration, "1.25"); err != nil {
		t.Fatal(err)
	}

	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ManifestFormat != "csv" {
		t.Errorf("ManifestFormat = %q, want file value csv", cfg.ManifestFormat)
	}
	if cfg.MinDuration != 1.25 {
		t.Errorf("MinDuration = %v, want 1.25", cfg.MinDuration)
	}
}

func TestLoad_InvalidMinDuration(t *testing.T) {
	useTempConfig(t)

	if err := config.Save(config.KeyMinDuration, "fast"); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric min-duration")
	}
}

func TestEnsureOutputDir(t *testing.T) {
	t.Parallel()

	t.Run("creates a missing directory", func(t *testing.T) {
		t.Parallel()

		d := filepath.Join(t.TempDir(), "new", "nested")
		if err := config.EnsureOutputDir(d); err != nil {
			t.Fatalf("EnsureOutputDir() error = %v", err)
		}
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("directory was not created: %v", err)
		}
	})

	t.Run("rejects a file path", func(t *testing.T) {
		t.Parallel()

		f := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := config.EnsureOutputDir(f); err == nil {
			t.Fatal("EnsureOutputDir() expected error for file path")
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		t.Parallel()

		if err := config.EnsureOutputDir(""); err == nil {
			t.Fatal("EnsureOutputDir() expected error for empty path")
		}
	})
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in test environment")
	}

	if got := config.ExpandPath("~/corpora"); got != filepath.Join(home, "corpora") {
		t.Errorf("ExpandPath(~/corpora) = %q", got)
	}
	if got := config.ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q, want unchanged", got)
	}
}
