// FILE: lixenwraith/confres/config.go
package confres

import "fmt"

// Kind is the declared type of a configuration field.
type Kind int

const (
	// KindString is a required string value
	KindString Kind = iota
	// KindOptionalString is a string value that may be absent (nil)
	KindOptionalString
	// KindBool is a boolean value
	KindBool
	// KindInt is an integer value
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindOptionalString:
		return "optional string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Configuration keys. These are the names used in files, overrides and,
// uppercased, in environment variables.
const (
	KeyAppName     = "app_name"
	KeyDebug       = "debug"
	KeyAPIKey      = "api_key"
	KeyDatabaseURL = "database_url"
	KeyMaxWorkers  = "max_workers"
)

// Built-in defaults
const (
	DefaultAppName     = "MyApp"
	DefaultDebug       = false
	DefaultDatabaseURL = "sqlite:///./test.db"
	DefaultMaxWorkers  = 4
)

// Field declares one configuration key with its type and default.
// A nil Default is only valid for KindOptionalString.
type Field struct {
	Name    string
	Kind    Kind
	Default any
}

// fieldTable is the ordered set of declared fields.
// Resolution walks fields in this order, so errors are reported deterministically.
var fieldTable = []Field{
	{Name: KeyAppName, Kind: KindString, Default: DefaultAppName},
	{Name: KeyDebug, Kind: KindBool, Default: DefaultDebug},
	{Name: KeyAPIKey, Kind: KindOptionalString, Default: nil},
	{Name: KeyDatabaseURL, Kind: KindOptionalString, Default: DefaultDatabaseURL},
	{Name: KeyMaxWorkers, Kind: KindInt, Default: DefaultMaxWorkers},
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(fieldTable))
	for _, f := range fieldTable {
		m[f.Name] = f
	}
	return m
}()

// Fields returns a copy of the declared field table in declaration order.
func Fields() []Field {
	out := make([]Field, len(fieldTable))
	copy(out, fieldTable)
	return out
}

// LookupField returns the declared field for name.
func LookupField(name string) (Field, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}

// Values is a raw source mapping from field key to an untyped value.
type Values map[string]any

// Defaults returns the built-in default values for every declared field.
func Defaults() Values {
	v := make(Values, len(fieldTable))
	for _, f := range fieldTable {
		v[f.Name] = f.Default
	}
	return v
}

// Settings is the resolved configuration.
// It is returned by value; optional strings are freshly allocated per resolution
// and never shared between two results.
type Settings struct {
	AppName     string  `toml:"app_name"`
	Debug       bool    `toml:"debug"`
	APIKey      *string `toml:"api_key"`
	DatabaseURL *string `toml:"database_url"`
	MaxWorkers  int     `toml:"max_workers"`
}

// set assigns an already coerced value to the field named key.
func (s *Settings) set(key string, v any) {
	switch key {
	case KeyAppName:
		s.AppName = v.(string)
	case KeyDebug:
		s.Debug = v.(bool)
	case KeyAPIKey:
		s.APIKey = optionalString(v)
	case KeyDatabaseURL:
		s.DatabaseURL = optionalString(v)
	case KeyMaxWorkers:
		s.MaxWorkers = v.(int)
	}
}

// Values returns the settings as a mapping keyed by field name.
// Absent optional strings map to nil.
func (s Settings) Values() Values {
	return Values{
		KeyAppName:     s.AppName,
		KeyDebug:       s.Debug,
		KeyAPIKey:      derefOptional(s.APIKey),
		KeyDatabaseURL: derefOptional(s.DatabaseURL),
		KeyMaxWorkers:  s.MaxWorkers,
	}
}

// Clone returns a copy that shares no pointers with s.
func (s Settings) Clone() Settings {
	c := s
	c.APIKey = optionalString(derefOptional(s.APIKey))
	c.DatabaseURL = optionalString(derefOptional(s.DatabaseURL))
	return c
}

// APIKeyOr returns the API key, or fallback when none is configured.
func (s Settings) APIKeyOr(fallback string) string {
	if s.APIKey == nil {
		return fallback
	}
	return *s.APIKey
}

// DatabaseURLOr returns the database URL, or fallback when none is configured.
func (s Settings) DatabaseURLOr(fallback string) string {
	if s.DatabaseURL == nil {
		return fallback
	}
	return *s.DatabaseURL
}

func optionalString(v any) *string {
	str, ok := v.(string)
	if !ok {
		return nil
	}
	return &str
}

func derefOptional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
