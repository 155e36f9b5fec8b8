// File: lixenwraith/confres/convenience.go
package confres

import (
	"fmt"
	"strings"
)

// Report is a resolution result with source tracking
type Report struct {
	Settings   Settings
	Origins    Origins
	File       string // configuration file consulted, empty if none
	FileLoaded bool   // whether File existed and was applied
	EnvPrefix  string
}

// Source returns the stage that supplied the value of key
func (r *Report) Source(key string) Source {
	if src, ok := r.Origins[key]; ok {
		return src
	}
	return SourceDefault
}

// String returns a formatted view of all values and their sources
func (r *Report) String() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	switch {
	case r.File == "":
		b.WriteString("File: none\n")
	case r.FileLoaded:
		fmt.Fprintf(&b, "File: %s\n", r.File)
	default:
		fmt.Fprintf(&b, "File: %s (not found)\n", r.File)
	}
	fmt.Fprintf(&b, "Env prefix: %q\n", r.EnvPrefix)
	b.WriteString("Current values:\n")

	values := r.Settings.Values()
	for _, f := range fieldTable {
		v := values[f.Name]
		if v == nil {
			fmt.Fprintf(&b, "  %-14s <unset>  (%s)\n", f.Name, r.Source(f.Name))
			continue
		}
		fmt.Fprintf(&b, "  %-14s %#v  (%s)\n", f.Name, v, r.Source(f.Name))
	}

	return b.String()
}

// Explain is Resolve with source tracking
func Explain(defaults Values, filePath, envPrefix string, overrides Values) (*Report, error) {
	return NewBuilder().
		WithDefaults(defaults).
		WithFile(filePath).
		WithEnvPrefix(envPrefix).
		WithOverrides(overrides).
		Explain()
}

// MustResolve is like Resolve but panics on error
func MustResolve(defaults Values, filePath, envPrefix string, overrides Values) Settings {
	s, err := Resolve(defaults, filePath, envPrefix, overrides)
	if err != nil {
		panic(fmt.Sprintf("config resolution failed: %v", err))
	}
	return s
}
