package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/confres"
	"github.com/lixenwraith/confres/internal/logging"
)

type options struct {
	configFile string
	discover   string
	envPrefix  string
	dotenv     string
	sets       map[string]string
	format     string
	explain    bool
	write      string
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "confres: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (*options, error) {
	app := kingpin.New("confres", "Resolve layered application settings from defaults, file, environment and overrides")
	configFile := app.Flag("config", "Path to a TOML, JSON, YAML or INI configuration file").Short('c').String()
	discover := app.Flag("discover", "Search for <name>.{toml,yaml,yml,json,ini} when --config is not given").String()
	envPrefix := app.Flag("env-prefix", "Environment variable prefix").Default("MYAPP").String()
	dotenv := app.Flag("dotenv", "Path to a dotenv file layered below the environment").String()
	sets := app.Flag("set", "Explicit override, key=value (repeatable)").StringMap()
	format := app.Flag("format", "Output format").Default(confres.FormatTOML).
		Enum(confres.FormatTOML, confres.FormatJSON, confres.FormatYAML, confres.FormatINI, "env")
	explain := app.Flag("explain", "Show the source of every value instead of the settings").Bool()
	write := app.Flag("write", "Also save the resolved settings to this path").String()
	verbose := app.Flag("verbose", "Log every resolution stage").Short('v').Bool()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	return &options{
		configFile: *configFile,
		discover:   *discover,
		envPrefix:  *envPrefix,
		dotenv:     *dotenv,
		sets:       *sets,
		format:     *format,
		explain:    *explain,
		write:      *write,
		verbose:    *verbose,
	}, nil
}

func run(args []string, stdout io.Writer, environ []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(opts.verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	overrides, err := overridesFromFlags(opts.sets)
	if err != nil {
		return err
	}

	builder := confres.NewBuilder().
		WithEnviron(environ).
		WithEnvPrefix(opts.envPrefix).
		WithFile(opts.configFile).
		WithDotenv(opts.dotenv).
		WithOverrides(overrides).
		WithLogger(logger)
	if opts.configFile == "" && opts.discover != "" {
		builder.WithFileDiscovery(confres.DefaultDiscoveryOptions(opts.discover))
	}

	report, err := builder.Explain()
	if err != nil {
		return err
	}

	if opts.write != "" {
		if err := confres.Save(opts.write, report.Settings); err != nil {
			return err
		}
		logger.Info("saved resolved settings", zap.String("path", opts.write))
	}

	if opts.explain {
		_, err := io.WriteString(stdout, report.String())
		return err
	}
	if opts.format == "env" {
		return report.Settings.EncodeEnv(stdout, opts.envPrefix)
	}
	return report.Settings.Encode(stdout, opts.format)
}

// overridesFromFlags validates --set keys against the declared fields.
// Values stay strings and are coerced during resolution.
func overridesFromFlags(sets map[string]string) (confres.Values, error) {
	keys := make([]string, 0, len(sets))
	for k := range sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	overrides := make(confres.Values, len(sets))
	for _, k := range keys {
		if _, ok := confres.LookupField(k); !ok {
			return nil, fmt.Errorf("unknown setting %q in --set", k)
		}
		overrides[k] = sets[k]
	}
	return overrides, nil
}
