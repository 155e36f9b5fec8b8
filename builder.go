// File: lixenwraith/confres/builder.go
package confres

import (
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"
)

// knownDatabaseSchemes are the URL prefixes accepted without a warning
var knownDatabaseSchemes = []string{"sqlite://", "postgresql://", "mysql://", "mongodb://"}

// Builder provides a fluent interface for resolving settings.
// Every Build call reads the file and environment afresh and returns an
// independent Settings value.
type Builder struct {
	defaults  Values
	overrides Values
	file      string
	discovery *FileDiscoveryOptions
	envPrefix string
	environ   func() []string
	dotenv    string
	logger    *zap.Logger
}

// NewBuilder creates a new settings builder reading the process environment
func NewBuilder() *Builder {
	return &Builder{
		defaults:  make(Values),
		overrides: make(Values),
		environ:   os.Environ,
		logger:    zap.NewNop(),
	}
}

// WithDefaults adds caller defaults, layered above the built-in ones
func (b *Builder) WithDefaults(defaults Values) *Builder {
	for k, v := range defaults {
		b.defaults[k] = v
	}
	return b
}

// WithFile sets the configuration file path. An empty path disables the file stage.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileDiscovery searches for a configuration file at Build time when no
// explicit file path has been set
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}

// WithEnvPrefix sets the environment variable prefix ("MYAPP" or "MYAPP_")
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// WithEnviron replaces the process environment with a fixed set of
// "KEY=value" entries
func (b *Builder) WithEnviron(environ []string) *Builder {
	snapshot := append([]string(nil), environ...)
	b.environ = func() []string { return snapshot }
	return b
}

// WithDotenv adds a dotenv file whose entries sit below the real environment
func (b *Builder) WithDotenv(path string) *Builder {
	b.dotenv = path
	return b
}

// WithOverrides adds explicit values that win over every other source
func (b *Builder) WithOverrides(overrides Values) *Builder {
	for k, v := range overrides {
		b.overrides[k] = v
	}
	return b
}

// WithOverride sets a single explicit value
func (b *Builder) WithOverride(key string, value any) *Builder {
	b.overrides[key] = value
	return b
}

// WithLogger sets the logger used to report resolution steps
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
	return b
}

// Build resolves the settings with all specified options
func (b *Builder) Build() (Settings, error) {
	report, err := b.Explain()
	if err != nil {
		return Settings{}, err
	}
	return report.Settings, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() Settings {
	s, err := b.Build()
	if err != nil {
		panic("config resolution failed: " + err.Error())
	}
	return s
}

// Explain resolves the settings and reports where each value came from
func (b *Builder) Explain() (*Report, error) {
	environ := b.environ()
	report := &Report{EnvPrefix: b.envPrefix}

	b.logUnknown("default", b.defaults)
	b.logUnknown("override", b.overrides)

	path := b.file
	if path == "" && b.discovery != nil {
		path = discoverFile(*b.discovery, environ)
		if path != "" {
			b.logger.Debug("discovered configuration file", zap.String("path", path))
		}
	}

	var fileValues Values
	if path != "" {
		values, found, err := LoadFile(path)
		if err != nil {
			b.logger.Error("failed to load configuration file", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		report.File = path
		report.FileLoaded = found
		if found {
			fileValues = values
			b.logger.Debug("applied configuration file", zap.String("path", path), zap.Strings("fields", keysOf(values)))
		} else {
			b.logger.Warn("configuration file does not exist, using defaults and environment only", zap.String("path", path))
		}
	}

	dotenvCount := 0
	if b.dotenv != "" {
		entries, found, err := loadDotenv(b.dotenv)
		if err != nil {
			b.logger.Error("failed to load dotenv file", zap.String("path", b.dotenv), zap.Error(err))
			return nil, err
		}
		if !found {
			b.logger.Debug("dotenv file does not exist", zap.String("path", b.dotenv))
		}
		// Real environment entries come last and therefore win
		dotenvCount = len(entries)
		environ = append(entries, environ...)
	}

	envValues, envMatches := scanEnv(environ, b.envPrefix)
	if len(envValues) > 0 {
		b.logger.Debug("applied environment", zap.String("prefix", b.envPrefix), zap.Strings("fields", keysOf(envValues)))
	}

	settings, origins, err := Merge(b.defaults, fileValues, envValues, b.overrides)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			switch cfgErr.Source {
			case SourceEnv:
				m := envMatches[cfgErr.Field]
				cfgErr.Origin = m.name
				if m.index < dotenvCount {
					cfgErr.Origin = m.name + " in " + b.dotenv
				}
			case SourceFile:
				cfgErr.Origin = path
			}
		}
		b.logger.Error("configuration resolution failed", zap.Error(err))
		return nil, err
	}

	b.checkDatabaseURL(settings)

	report.Settings = settings
	report.Origins = origins
	return report, nil
}

// checkDatabaseURL logs a warning for unrecognised database URL schemes.
// It never fails resolution.
func (b *Builder) checkDatabaseURL(s Settings) {
	if s.DatabaseURL == nil || *s.DatabaseURL == "" {
		return
	}
	for _, scheme := range knownDatabaseSchemes {
		if strings.HasPrefix(*s.DatabaseURL, scheme) {
			return
		}
	}
	b.logger.Warn("database_url does not start with a recognized prefix", zap.Strings("recognized", knownDatabaseSchemes))
}

func (b *Builder) logUnknown(stage string, values Values) {
	for key := range values {
		if _, declared := fieldIndex[key]; !declared {
			b.logger.Debug("ignoring unknown configuration key", zap.String("stage", stage), zap.String("key", key))
		}
	}
}

// keysOf returns the declared field keys present in values, in declaration order
func keysOf(values Values) []string {
	keys := make([]string, 0, len(values))
	for _, f := range fieldTable {
		if _, ok := values[f.Name]; ok {
			keys = append(keys, f.Name)
		}
	}
	return keys
}
