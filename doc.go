// File: lixenwraith/confres/doc.go

// Package confres resolves an application's settings into a single typed,
// immutable snapshot by layering several sources with fixed precedence.
//
// Precedence (lowest to highest):
//  1. Built-in defaults, then caller-supplied defaults
//  2. Configuration file (TOML, JSON, YAML or INI; a missing file is skipped)
//  3. Environment variables named <PREFIX>_<FIELD> (a dotenv file may add
//     entries below the real environment)
//  4. Explicit overrides
//
// Each stage only touches the fields it provides. Values from the environment
// arrive as strings and are coerced per field type: booleans accept
// true/1/yes and false/0/no, integers use standard integer parsing. Any parse
// or coercion failure aborts resolution with a *ConfigError; no partial
// settings are returned.
//
// Quick Start:
//
//	s, err := confres.Resolve(nil, "config.yaml", "MYAPP", confres.Values{
//	    confres.KeyDebug: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s.AppName, s.MaxWorkers)
//
// Builder:
//
//	report, err := confres.NewBuilder().
//	    WithFileDiscovery(confres.DefaultDiscoveryOptions("myapp")).
//	    WithDotenv(".env").
//	    WithEnvPrefix("MYAPP_").
//	    WithLogger(logger).
//	    Explain()
//
// Resolution keeps no package state. Every call reads the file and environment
// again and returns an independent value, so concurrent calls are safe; caching
// the result is left to the application.
package confres
