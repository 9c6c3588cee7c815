package main

import (
	"flag"
	"fmt"
	"strings"
)

// CLIConfig is the fully-parsed command line, pairing each long and
// short flag spelling to the same field.
type CLIConfig struct {
	Workers         int
	Tidy            bool
	SkipInitial     bool
	NoCache         bool
	NoGiveUp        bool
	Sanitize        bool
	Slow            bool
	AlsoInteresting int
	MaxImprovement  int64
	Strategy        string
	NoFastTest      bool
	PassGroupFile   string
	GiveUpThreshold int
	DieOnPassBug    bool
	SkipKeyOff      bool
	ConfigPath      string
	Verbose         bool

	Predicate string
	Cases     []string
}

// ParseFlags parses os.Args-equivalent arguments into a CLIConfig,
// pre-loading --config (if given) as the flag defaults so that
// explicit flags always win over the config file.
func ParseFlags(args []string) (*CLIConfig, error) {
	fs := flag.NewFlagSet("shrinker", flag.ContinueOnError)

	cfg := &CLIConfig{}

	configPath := preScanConfigFlag(args)
	configSetThreshold := false
	defaults := &ConfigFile{
		Workers:         4,
		Strategy:        string(Conservative),
		GiveUpThreshold: 10000,
		AlsoInteresting: -1,
	}
	if configPath != "" {
		loaded, err := LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		configSetThreshold = loaded.GiveUpThreshold != 0
		defaults = loaded
	}

	fs.IntVar(&cfg.Workers, "n", fallbackInt(defaults.Workers, 4), "number of parallel workers")
	fs.BoolVar(&cfg.Tidy, "tidy", false, "suppress .orig backups")
	fs.BoolVar(&cfg.SkipInitial, "skip-initial-passes", false, "skip the first phase")
	fs.BoolVar(&cfg.NoCache, "no-cache", false, "disable the result cache (single-flight dedup still applies)")
	fs.BoolVar(&cfg.NoGiveUp, "no-give-up", false, "never give up on a stalled (pass, test case)")
	fs.BoolVar(&cfg.Sanitize, "sanitize", defaults.Sanitize, "enable the sanitize pass-option set")
	fs.BoolVar(&cfg.Slow, "sllooww", defaults.Slow, "enable the slow pass-option set")
	fs.IntVar(&cfg.AlsoInteresting, "also-interesting", fallbackInt(defaults.AlsoInteresting, -1), "exit code classified as AlsoInteresting (-1 disables)")
	fs.Int64Var(&cfg.MaxImprovement, "max-improvement", defaults.MaxImprovement, "reject a commit that shrinks a test case by more than this many bytes (<=0 disables)")
	fs.StringVar(&cfg.Strategy, "test-manager", fallbackString(defaults.Strategy, string(Conservative)), "commit strategy: conservative, fast-conservative, non-deterministic")
	fs.BoolVar(&cfg.NoFastTest, "no-fast-test", false, "always use the subprocess runner, even for recognized fast predicates")
	fs.StringVar(&cfg.PassGroupFile, "pass-group-file", "", "path to a JSON pass-group file (mutually exclusive with --pass-group)")
	passGroupName := fs.String("pass-group", "", "named built-in pass group (only \"default\" exists; mutually exclusive with --pass-group-file)")
	fs.IntVar(&cfg.GiveUpThreshold, "give-up-threshold", fallbackInt(defaults.GiveUpThreshold, 10000), "consecutive rejects before giving up on a (pass, test case)")
	fs.BoolVar(&cfg.DieOnPassBug, "die-on-pass-bug", false, "treat PassBug as fatal instead of logging and skipping")
	fs.BoolVar(&cfg.SkipKeyOff, "skip-key-off", false, "disable ending the current pass early by pressing 's' on the controlling terminal")
	fs.StringVar(&cfg.ConfigPath, "config", "", "optional YAML config file")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	explicitThreshold := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "give-up-threshold" {
			explicitThreshold = true
		}
	})
	// Non-deterministic discards commit ordering information, so a
	// stalled (pass, test case) is cheaper to detect and the default
	// give-up threshold is lower than conservative/fast-conservative's.
	if !explicitThreshold && !configSetThreshold && Strategy(cfg.Strategy) == NonDeterministic {
		cfg.GiveUpThreshold = 2000
	}

	if cfg.PassGroupFile != "" && *passGroupName != "" && *passGroupName != "default" {
		return nil, fmt.Errorf("%w: --pass-group and --pass-group-file are mutually exclusive", ErrPassOption)
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return nil, fmt.Errorf("usage: shrinker [options] PREDICATE TESTCASE...")
	}
	cfg.Predicate = rest[0]
	cfg.Cases = rest[1:]

	if !validStrategy(cfg.Strategy) {
		return nil, fmt.Errorf("%w: unknown --test-manager value %q", ErrPassOption, cfg.Strategy)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

func validStrategy(s string) bool {
	switch Strategy(s) {
	case Conservative, FastConservative, NonDeterministic:
		return true
	default:
		return false
	}
}

func fallbackInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func fallbackString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// preScanConfigFlag finds --config's value without fully parsing args,
// since it must be known before flag defaults (sourced from the file)
// are registered.
func preScanConfigFlag(args []string) string {
	for i, a := range args {
		if a == "--config" || a == "-config" {
			if i+1 < len(args) {
				return args[i+1]
			}
		}
		if strings.HasPrefix(a, "--config=") {
			return strings.TrimPrefix(a, "--config=")
		}
		if strings.HasPrefix(a, "-config=") {
			return strings.TrimPrefix(a, "-config=")
		}
	}
	return ""
}

// ActiveOptions builds the pass-option activation set from CLI flags.
func (c *CLIConfig) ActiveOptions() map[Option]bool {
	active := make(map[Option]bool)
	if c.Sanitize {
		active[OptionSanitize] = true
	}
	if c.Slow {
		active[OptionSlow] = true
	}
	return active
}

// ToManagerConfig projects the CLI flags relevant to the TestManager.
func (c *CLIConfig) ToManagerConfig() ManagerConfig {
	return ManagerConfig{
		Workers:         c.Workers,
		Strategy:        Strategy(c.Strategy),
		CacheEnabled:    !c.NoCache,
		GiveUp:          !c.NoGiveUp,
		GiveUpThreshold: c.GiveUpThreshold,
		MaxImprovement:  c.MaxImprovement,
		AlsoInteresting: c.AlsoInteresting,
		SaveDir:         "also-interesting",
		Verbose:         c.Verbose,
		DieOnPassBug:    c.DieOnPassBug,
	}
}
