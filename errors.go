// FILE: lixenwraith/confres/errors.go
package confres

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse indicates a configuration file or dotenv file exists but could not be read as key/value data
	ErrParse = errors.New("malformed configuration source")
	// ErrCoerce indicates a value could not be converted to its field's declared type
	ErrCoerce = errors.New("value cannot be coerced")
	// ErrFormat indicates the configuration file format is unknown or unsupported
	ErrFormat = errors.New("unsupported configuration format")
)

// ConfigError is the single error kind returned by resolution.
// It names the stage, the offending field and value when known, and wraps one of
// ErrParse, ErrCoerce or ErrFormat.
type ConfigError struct {
	Source Source // stage that failed
	Field  string // field key, empty for whole-document failures
	Value  any    // offending value
	Origin string // file path, or the environment variable name (with the dotenv path when it came from one)
	Err    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Source != "" {
		b.WriteString(" ")
		b.WriteString(string(e.Source))
	}
	if e.Origin != "" {
		fmt.Fprintf(&b, " %q", e.Origin)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %s = %#v", e.Field, e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
