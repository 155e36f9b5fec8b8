// FILE: lixenwraith/confres/io_test.go
package confres_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/confres"
)

func customSettings(t *testing.T) confres.Settings {
	t.Helper()
	s, err := confres.NewBuilder().
		WithEnviron(nil).
		WithOverrides(confres.Values{
			confres.KeyAppName:    "Saved App",
			confres.KeyDebug:      true,
			confres.KeyAPIKey:     "secret",
			confres.KeyMaxWorkers: 8,
		}).
		Build()
	require.NoError(t, err)
	return s
}

// TestAtomicSave tests that saved files resolve back to the same settings
func TestAtomicSave(t *testing.T) {
	original := customSettings(t)

	for _, name := range []string{"out.toml", "out.json", "out.yaml", "out.ini"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, confres.Save(path, original))

			loaded, err := confres.NewBuilder().WithEnviron(nil).WithFile(path).Build()
			require.NoError(t, err)
			assert.Equal(t, original, loaded)

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary file left behind")
		})
	}

	t.Run("UnsetOptionalOmitted", func(t *testing.T) {
		s, err := confres.NewBuilder().WithEnviron(nil).WithOverride(confres.KeyDatabaseURL, nil).Build()
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "out.toml")
		require.NoError(t, confres.Save(path, s))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "database_url")
		assert.NotContains(t, string(data), "api_key")
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		err := confres.Save(filepath.Join(t.TempDir(), "out.xml"), original)
		assert.ErrorIs(t, err, confres.ErrFormat)
	})
}

func TestEncode(t *testing.T) {
	s := customSettings(t)

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf, confres.FormatJSON))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, "Saved App", doc["app_name"])
		assert.Equal(t, true, doc["debug"])
		assert.Equal(t, float64(8), doc["max_workers"])
		assert.Equal(t, "secret", doc["api_key"])
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf, confres.FormatYAML))
		assert.Contains(t, buf.String(), "max_workers: 8")
	})

	t.Run("INI", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Encode(&buf, confres.FormatINI))
		assert.Contains(t, buf.String(), "debug")
		assert.NotContains(t, buf.String(), "[")
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		err := s.Encode(&bytes.Buffer{}, "xml")
		assert.ErrorIs(t, err, confres.ErrFormat)
	})
}

// TestExportEnv tests environment export of non-default values
func TestExportEnv(t *testing.T) {
	t.Run("DefaultsExportNothing", func(t *testing.T) {
		s, err := confres.NewBuilder().WithEnviron(nil).Build()
		require.NoError(t, err)
		assert.Empty(t, s.Environ("APP"))

		var buf bytes.Buffer
		require.NoError(t, s.EncodeEnv(&buf, "APP"))
		assert.Empty(t, buf.String())
	})

	t.Run("ChangedValues", func(t *testing.T) {
		s := customSettings(t)
		assert.Equal(t, map[string]string{
			"APP_APP_NAME":    "Saved App",
			"APP_DEBUG":       "true",
			"APP_API_KEY":     "secret",
			"APP_MAX_WORKERS": "8",
		}, s.Environ("APP_"))
	})

	t.Run("DotenvRoundTrip", func(t *testing.T) {
		original := customSettings(t)

		var buf bytes.Buffer
		require.NoError(t, original.EncodeEnv(&buf, "APP"))
		assert.True(t, strings.HasSuffix(buf.String(), "\n"))

		dotenv := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(dotenv, buf.Bytes(), 0644))

		loaded, err := confres.NewBuilder().
			WithEnviron(nil).
			WithEnvPrefix("APP").
			WithDotenv(dotenv).
			Build()
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})
}
