package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct {
	out    io.Writer
	errOut io.Writer
}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// ErrUsage is returned when the positional arguments are missing. The usage
// block has already been printed to the error writer.
var ErrUsage = errors.New("usage: " + usageLine)

// NewLoader creates a new configuration Loader printing help to stdout and
// usage errors to stderr.
func NewLoader() *Loader {
	return &Loader{out: os.Stdout, errOut: os.Stderr}
}

// SetOutput redirects help and usage text.
func (l *Loader) SetOutput(out, errOut io.Writer) {
	l.out = out
	l.errOut = errOut
}

// Load parses command-line arguments and configuration files to produce a Config.
func (l *Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand(l.out)
	cmd.Flags().SetOutput(io.Discard)
	args, negatives := shieldNegativeNumbers(cmd.Flags(), args)
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd, l.out)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd, l.out)
			return nil, ErrHelpRequested
		}
	}

	// Positionals are mandatory unless a config file can supply them.
	configPath := flagSet.Lookup("config").Value.String()
	positional := restoreNegativeNumbers(flagSet.Args(), negatives)
	if len(positional) < 3 && configPath == "" {
		displayHelp(cmd, l.errOut)
		return nil, ErrUsage
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Reducer:    ReducerQuartile,
		Release:    ReleaseBefore,
		Allocator:  AllocatorHeap,
		Output:     OutputText,
		LogLevel:   "warn",
		ConfigFile: configPath,
		Tracing:    TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if err := applyPositionals(cfg, positional); err != nil {
		return nil, err
	}

	cfg.File = strings.TrimSpace(cfg.File)
	cfg.Reducer = strings.ToLower(cfg.Reducer)
	cfg.Release = strings.ToLower(cfg.Release)
	cfg.Allocator = strings.ToLower(cfg.Allocator)

	return cfg, nil
}

var negativeNumber = regexp.MustCompile(`^-[0-9]+$`)

// shieldNegativeNumbers swaps bare negative integers for placeholder tokens so
// pflag does not read "-1" as a shorthand flag. Values that follow a flag
// taking an argument are left alone, as is everything after "--".
func shieldNegativeNumbers(fs *pflag.FlagSet, args []string) ([]string, map[string]string) {
	var negatives map[string]string
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if !negativeNumber.MatchString(arg) || (i > 0 && takesValue(fs, args[i-1])) {
			continue
		}
		if negatives == nil {
			negatives = make(map[string]string)
		}
		token := fmt.Sprintf("\x00neg%d", i)
		negatives[token] = arg
		out[i] = token
	}
	return out, negatives
}

func restoreNegativeNumbers(args []string, negatives map[string]string) []string {
	if len(negatives) == 0 {
		return args
	}
	out := make([]string, len(args))
	for i, arg := range args {
		if orig, ok := negatives[arg]; ok {
			arg = orig
		}
		out[i] = arg
	}
	return out
}

// takesValue reports whether arg is a flag that consumes the next argument.
func takesValue(fs *pflag.FlagSet, arg string) bool {
	if !strings.HasPrefix(arg, "-") || arg == "--" || strings.Contains(arg, "=") {
		return false
	}
	var flag *pflag.Flag
	if strings.HasPrefix(arg, "--") {
		flag = fs.Lookup(arg[2:])
	} else if len(arg) == 2 {
		flag = fs.ShorthandLookup(arg[1:])
	}
	return flag != nil && flag.NoOptDefVal == ""
}

// applyPositionals fills benchmark, trial count and file path, in that order.
// A benchmark selector that is not a number selects every strategy.
func applyPositionals(cfg *Config, args []string) error {
	if len(args) > 0 {
		cfg.Benchmark = parseSelector(args[0])
	}
	if len(args) > 1 {
		trials, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return fmt.Errorf("trial_count: %w", err)
		}
		cfg.Trials = trials
	}
	if len(args) > 2 {
		cfg.File = args[2]
	}
	return nil
}

func parseSelector(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "benchmark"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("benchmark: %w", err)
		}
		cfg.Benchmark = parseSelector(val)
	}

	if raw, ok := lookupSetting(settings, "trials", "trial_count", "trial-count"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("trials: %w", err)
		}
		cfg.Trials = val
	}

	if raw, ok := lookupSetting(settings, "file", "file_path", "file-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("file: %w", err)
		}
		cfg.File = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "reducer"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("reducer: %w", err)
		}
		if val != "" {
			cfg.Reducer = val
		}
	}

	if raw, ok := lookupSetting(settings, "release"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("release: %w", err)
		}
		if val != "" {
			cfg.Release = val
		}
	}

	if raw, ok := lookupSetting(settings, "allocator"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("allocator: %w", err)
		}
		if val != "" {
			cfg.Allocator = val
		}
	}

	if raw, ok := lookupSetting(settings, "exactlength", "exact_length", "exact-length"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("exactLength: %w", err)
		}
		cfg.ExactLength = val
	}

	if raw, ok := lookupSetting(settings, "trialrate", "trial_rate", "trial-rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("trialRate: %w", err)
		}
		cfg.TrialRate = val
	}

	if raw, ok := lookupSetting(settings, "output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		if val != "" {
			cfg.Output = OutputFormat(strings.ToLower(val))
		}
	}

	if raw, ok := lookupSetting(settings, "htmloutput", "html_output", "html-output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("htmlOutput: %w", err)
		}
		cfg.HTMLOutput = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "progress"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		cfg.Progress = val
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		cfg.LogLevel = val
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = vals
	}

	if raw, ok := lookupSetting(settings, "baseline"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		cfg.Baseline = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "lockfile", "lock_file", "lock-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("lockFile: %w", err)
		}
		cfg.LockFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "locktimeout", "lock_timeout", "lock-timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("lockTimeout: %w", err)
		}
		cfg.LockTimeout = dur
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tc, err := parseTracingConfig(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tc
	}

	return nil
}

// parseTracingConfig overlays a nested tracing section on top of defaults.
func parseTracingConfig(value interface{}, defaults TracingConfig) (TracingConfig, error) {
	if value == nil {
		return defaults, nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	tc := defaults

	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tc.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		if val != "" {
			tc.Protocol = strings.ToLower(val)
		}
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tc.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tc.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tc.SampleRate = val
	}
	return tc, nil
}
