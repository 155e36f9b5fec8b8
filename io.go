// File: lixenwraith/confres/io.go
package confres

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// document returns the settings as a mapping with absent optional strings omitted
func (s Settings) document() map[string]any {
	doc := make(map[string]any, len(fieldTable))
	for k, v := range s.Values() {
		if v != nil {
			doc[k] = v
		}
	}
	return doc
}

// Encode writes the settings to w in the given format (toml, json, yaml or ini)
func (s Settings) Encode(w io.Writer, format string) error {
	doc := s.document()

	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal settings to TOML: %w", err)
		}
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal settings to JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal settings to YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML encoder: %w", err)
		}
	case FormatINI:
		file := ini.Empty()
		section := file.Section("")
		for _, f := range fieldTable {
			if v, ok := doc[f.Name]; ok {
				if _, err := section.NewKey(f.Name, fmt.Sprint(v)); err != nil {
					return fmt.Errorf("failed to add INI key %s: %w", f.Name, err)
				}
			}
		}
		if _, err := file.WriteTo(w); err != nil {
			return fmt.Errorf("failed to write INI: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}

	return nil
}

// Environ exports the settings as environment variables named for prefix.
// Only fields whose value differs from the built-in default are exported;
// an unset optional string cannot be expressed and is skipped.
func (s Settings) Environ(prefix string) map[string]string {
	exports := make(map[string]string)
	defaults := Defaults()

	for k, v := range s.Values() {
		if v == nil || v == defaults[k] {
			continue
		}
		exports[EnvName(prefix, k)] = formatEnvValue(v)
	}

	return exports
}

// EncodeEnv writes the exported variables from Environ in dotenv syntax
func (s Settings) EncodeEnv(w io.Writer, prefix string) error {
	content, err := godotenv.Marshal(s.Environ(prefix))
	if err != nil {
		return fmt.Errorf("failed to marshal settings to dotenv: %w", err)
	}
	if content == "" {
		return nil
	}
	_, err = io.WriteString(w, content+"\n")
	return err
}

func formatEnvValue(v any) string {
	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// Save writes the settings to path atomically, in the format implied by the
// file extension. The result can be read back by the file stage.
func Save(path string, s Settings) error {
	format := detectFileFormat(path)
	if format == "" {
		return fmt.Errorf("%w: cannot infer format from %q", ErrFormat, path)
	}

	var buf bytes.Buffer
	if err := s.Encode(&buf, format); err != nil {
		return err
	}

	return atomicWriteFile(path, buf.Bytes())
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file '%s': %w", tempPath, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file '%s': %w", tempPath, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file '%s': %w", tempPath, err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file '%s' to '%s': %w", tempPath, path, err)
	}
	removed = true

	return nil
}
