// FILE: lixenwraith/confres/resolve.go
package confres

// Origins maps each field key to the stage that supplied its resolved value.
type Origins map[string]Source

type layer struct {
	source Source
	values Values
}

// Merge overlays four already gathered source mappings in precedence order
// (defaults < file < env < overrides) on top of the built-in defaults, coerces
// every value to its declared type and returns the resolved settings together
// with the winning source of each field.
//
// env must already be keyed by field name (see LoadEnv). Keys that are not
// declared fields are ignored in every mapping. Any coercion failure aborts
// the merge with a *ConfigError and a zero Settings.
func Merge(defaults, file, env, overrides Values) (Settings, Origins, error) {
	layers := []layer{
		{source: SourceDefault, values: Defaults()},
		{source: SourceDefault, values: defaults},
		{source: SourceFile, values: file},
		{source: SourceEnv, values: env},
		{source: SourceOverride, values: overrides},
	}

	resolved := make(Values, len(fieldTable))
	origins := make(Origins, len(fieldTable))

	for _, l := range layers {
		for _, f := range fieldTable {
			raw, ok := l.values[f.Name]
			if !ok {
				continue
			}
			value, err := coerce(f, raw)
			if err != nil {
				return Settings{}, nil, &ConfigError{Source: l.source, Field: f.Name, Value: raw, Err: err}
			}
			resolved[f.Name] = value
			origins[f.Name] = l.source
		}
	}

	var s Settings
	for _, f := range fieldTable {
		s.set(f.Name, resolved[f.Name])
	}
	return s, origins, nil
}

// Resolve produces settings from defaults, an optional configuration file,
// environment variables named <envPrefix>_<FIELD> and explicit overrides.
// A missing file is not an error. Resolution is all-or-nothing: on failure the
// returned error is a *ConfigError and the Settings value is zero.
func Resolve(defaults Values, filePath, envPrefix string, overrides Values) (Settings, error) {
	return NewBuilder().
		WithDefaults(defaults).
		WithFile(filePath).
		WithEnvPrefix(envPrefix).
		WithOverrides(overrides).
		Build()
}
