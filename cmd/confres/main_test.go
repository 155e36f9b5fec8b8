package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/confres"
)

func TestRunDefaults(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--format", "json"}, &out, nil); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), `"app_name": "MyApp"`) {
		t.Fatalf("expected default app name in output, got:\n%s", out.String())
	}
}

func TestRunLayers(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(configFile, []byte("app_name: FileApp\nmax_workers: 16\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	args := []string{"--config", configFile, "--set", "debug=yes", "--explain"}
	environ := []string{"MYAPP_MAX_WORKERS=32"}
	if err := run(args, &out, environ); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	text := out.String()
	for _, want := range []string{`"FileApp"  (file)`, `32  (env)`, `true  (override)`} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in explain output:\n%s", want, text)
		}
	}
}

func TestRunEnvFormat(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--format", "env", "--set", "max_workers=8"}, &out, nil); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "MYAPP_MAX_WORKERS=8" {
		t.Fatalf("unexpected env output %q", got)
	}
}

func TestRunWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.toml")

	var out bytes.Buffer
	if err := run([]string{"--set", "app_name=Written", "--write", target}, &out, nil); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	s, err := confres.NewBuilder().WithEnviron(nil).WithFile(target).Build()
	if err != nil {
		t.Fatalf("resolve written file: %v", err)
	}
	if s.AppName != "Written" {
		t.Fatalf("expected app name from written file, got %q", s.AppName)
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("unknown set key", func(t *testing.T) {
		err := run([]string{"--set", "nope=1"}, &bytes.Buffer{}, nil)
		if err == nil || !strings.Contains(err.Error(), "nope") {
			t.Fatalf("expected unknown key error, got %v", err)
		}
	})

	t.Run("bad env value", func(t *testing.T) {
		err := run(nil, &bytes.Buffer{}, []string{"MYAPP_MAX_WORKERS=notanumber"})
		var cfgErr *confres.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if cfgErr.Origin != "MYAPP_MAX_WORKERS" {
			t.Fatalf("expected env var name in error, got %q", cfgErr.Origin)
		}
	})

	t.Run("bad flag", func(t *testing.T) {
		if err := run([]string{"--format", "xml"}, &bytes.Buffer{}, nil); err == nil {
			t.Fatalf("expected error for unsupported format")
		}
	})
}
