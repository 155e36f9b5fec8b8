// FILE: lixenwraith/confres/loader.go
package confres

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Source names a resolution stage, used to report where a value came from
type Source string

const (
	// SourceDefault represents built-in or caller-supplied default values
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables (and dotenv files)
	SourceEnv Source = "env"
	// SourceOverride represents explicit keyword overrides
	SourceOverride Source = "override"
)

// Supported file formats
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatINI  = "ini"
)

// LoadFile reads the configuration file at path and returns the values for
// declared fields. found is false, with a nil error, when the file does not exist.
// Keys that are not declared fields are ignored. Values are returned raw;
// type checking happens during merge.
func LoadFile(path string) (values Values, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, &ConfigError{Source: SourceFile, Origin: path, Err: fmt.Errorf("%w: %w", ErrParse, err)}
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, true, &ConfigError{Source: SourceFile, Origin: path, Err: fmt.Errorf("%w: cannot detect format", ErrFormat)}
		}
	}

	doc, err := decodeDocument(format, data)
	if err != nil {
		return nil, true, &ConfigError{Source: SourceFile, Origin: path, Err: fmt.Errorf("%w: %s: %w", ErrParse, format, err)}
	}

	values = make(Values)
	for key, value := range doc {
		if _, declared := fieldIndex[key]; declared {
			values[key] = value
		}
	}
	return values, true, nil
}

// decodeDocument parses data as a flat key/value document in the given format.
// An empty (or whitespace-only) document yields an empty map.
func decodeDocument(format string, data []byte) (map[string]any, error) {
	doc := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve integer precision
		if err := decoder.Decode(&doc); err != nil {
			return nil, err
		}
		if _, err := decoder.Token(); err != io.EOF {
			return nil, errors.New("unexpected data after top-level object")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatINI:
		cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
		if err != nil {
			return nil, err
		}
		// Sections are flattened; a key repeated in a later section wins
		for _, section := range cfg.Sections() {
			for _, key := range section.Keys() {
				doc[key.Name()] = key.Value()
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}

	// A JSON or YAML "null" document decodes to a nil map
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".ini", ".cfg":
		return FormatINI
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// YAML is a superset of JSON, so check after JSON
	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	// INI with an unknown extension also parses as TOML made only of tables;
	// settings are top-level keys, so such a document is not accepted
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil && !onlyTables(tomlTest) {
		return FormatTOML
	}

	return ""
}

// onlyTables reports whether doc has at least one key and every value is a table
func onlyTables(doc map[string]any) bool {
	if len(doc) == 0 {
		return false
	}
	for _, v := range doc {
		if _, isTable := v.(map[string]any); !isTable {
			return false
		}
	}
	return true
}

// EnvName returns the environment variable consulted for a field key.
// A trailing underscore on prefix is ignored; an empty prefix yields the bare
// uppercased key.
func EnvName(prefix, key string) string {
	prefix = strings.TrimSuffix(prefix, "_")
	if prefix == "" {
		return strings.ToUpper(key)
	}
	return prefix + "_" + strings.ToUpper(key)
}

// LoadEnv scans environ ("KEY=value" entries, as returned by os.Environ) for
// variables named <PREFIX>_<FIELD>. The prefix is compared case-insensitively,
// the field part must be the uppercased key. When several entries match the
// same field the last one wins. Values are returned as raw strings keyed by
// field name.
func LoadEnv(environ []string, prefix string) Values {
	values, _ := scanEnv(environ, prefix)
	return values
}

// envMatch is the environ entry that supplied a field
type envMatch struct {
	name  string // variable name as written
	index int    // position in environ
}

func scanEnv(environ []string, prefix string) (Values, map[string]envMatch) {
	prefix = strings.TrimSuffix(prefix, "_")

	values := make(Values)
	matches := make(map[string]envMatch)
	for i, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if key, matched := matchEnvName(name, prefix); matched {
			values[key] = value
			matches[key] = envMatch{name: name, index: i}
		}
	}
	return values, matches
}

// matchEnvName maps an environment variable name to a declared field key.
func matchEnvName(name, prefix string) (string, bool) {
	rest := name
	if prefix != "" {
		if len(name) <= len(prefix)+1 || name[len(prefix)] != '_' {
			return "", false
		}
		if !strings.EqualFold(name[:len(prefix)], prefix) {
			return "", false
		}
		rest = name[len(prefix)+1:]
	}

	key := strings.ToLower(rest)
	if _, declared := fieldIndex[key]; !declared || strings.ToUpper(key) != rest {
		return "", false
	}
	return key, true
}

// loadDotenv reads a dotenv file into "KEY=value" entries without touching
// the process environment. found is false when the file does not exist.
func loadDotenv(path string) (entries []string, found bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		return nil, false, nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, true, &ConfigError{Source: SourceEnv, Origin: path, Err: fmt.Errorf("%w: dotenv: %w", ErrParse, err)}
	}

	// Names are sorted so case-variant duplicates resolve the same way every time
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	entries = make([]string, 0, len(vars))
	for _, name := range names {
		entries = append(entries, name+"="+vars[name])
	}
	return entries, true, nil
}

// lookupEnv finds name in an environ slice; the last entry wins.
func lookupEnv(environ []string, name string) (string, bool) {
	value, found := "", false
	for _, entry := range environ {
		if n, v, ok := strings.Cut(entry, "="); ok && n == name {
			value, found = v, true
		}
	}
	return value, found
}
