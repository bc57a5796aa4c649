package app

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the converter configuration. Input and output paths
// come from flags; processing options may additionally be set through an
// optional YAML file passed with -c.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Inputs   InputConfig   `yaml:"inputs"`
	Pairing  PairingConfig `yaml:"pairing"`
	Outputs  OutputConfig  `yaml:"outputs"`
	Archive  ArchiveConfig `yaml:"archive"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// InputConfig names the four input files of one blanket dataset.
type InputConfig struct {
	TopFile        string `yaml:"topFile"`
	BottomFile     string `yaml:"bottomFile"`
	OffsetFile     string `yaml:"offsetFile"`
	DeploymentFile string `yaml:"deploymentFile"`
}

// PairingConfig controls timestamp matching between the two loggers.
// Tolerance zero (the default) requires identical timestamps; a positive
// tolerance enables nearest-neighbour pairing for drifting clocks.
type PairingConfig struct {
	Tolerance string `yaml:"tolerance"`

	tolerance time.Duration
}

// OutputConfig selects output formats and their destination directory.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	CSV       bool   `yaml:"csv"`
	Mat       bool   `yaml:"mat"`
	Nugget    bool   `yaml:"nugget"`
}

// ArchiveConfig controls the optional SQLite run archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"dbPath"`
}

// Tolerance returns the parsed pairing tolerance.
func (c *Config) Tolerance() time.Duration {
	return c.Pairing.tolerance
}

func defaultConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: "info"},
		Pairing:  PairingConfig{Tolerance: "0s"},
		Outputs:  OutputConfig{Directory: ".", CSV: true, Mat: true, Nugget: true},
	}
}

// cliArgs carries the raw flag values into the config assembly.
type cliArgs struct {
	configPath string
	top        string
	bottom     string
	offsets    string
	meta       string
	out        string

	offsetsSet bool
}

// NewConfigFromCLI builds the configuration from the command line,
// layering flag values over an optional YAML config file.
func NewConfigFromCLI() (*Config, error) {
	var args cliArgs

	flag.StringVar(&args.configPath, "c", "", "Path to an optional YAML configuration file")
	flag.StringVar(&args.top, "top", "", "Path to the top thermistor .dat file")
	flag.StringVar(&args.bottom, "bottom", "", "Path to the bottom thermistor .dat file")
	flag.StringVar(&args.offsets, "offsets", "offsets.csv", "Path to the offset calibration CSV")
	flag.StringVar(&args.meta, "meta", "", "Path to the deployment metadata CSV")
	flag.StringVar(&args.out, "out", "", "Output directory")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "offsets" {
			args.offsetsSet = true
		}
	})

	config, err := buildConfig(args)
	if err != nil {
		flag.Usage()
		return nil, err
	}
	return config, nil
}

// buildConfig layers flag values over the optional YAML config file.
// Explicitly passed flags always win over file values; the -offsets
// default applies only when neither names a file.
func buildConfig(args cliArgs) (*Config, error) {
	config := defaultConfig()
	if args.configPath != "" {
		if err := loadConfigFile(args.configPath, config); err != nil {
			return nil, err
		}
	}

	if args.top != "" {
		config.Inputs.TopFile = args.top
	}
	if args.bottom != "" {
		config.Inputs.BottomFile = args.bottom
	}
	if args.offsetsSet || config.Inputs.OffsetFile == "" {
		config.Inputs.OffsetFile = args.offsets
	}
	if args.meta != "" {
		config.Inputs.DeploymentFile = args.meta
	}
	if args.out != "" {
		config.Outputs.Directory = args.out
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading configuration file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing configuration file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Inputs.TopFile == "":
		return errors.New("top thermistor file is required")
	case c.Inputs.BottomFile == "":
		return errors.New("bottom thermistor file is required")
	case c.Inputs.OffsetFile == "":
		return errors.New("offset calibration file is required")
	case c.Inputs.DeploymentFile == "":
		return errors.New("deployment metadata file is required")
	}

	if !c.Outputs.CSV && !c.Outputs.Mat && !c.Outputs.Nugget {
		return errors.New("at least one output format must be enabled")
	}

	if c.Archive.Enabled && c.Archive.DBPath == "" {
		return errors.New("archive is enabled but no database path is configured")
	}

	tolerance, err := time.ParseDuration(c.Pairing.Tolerance)
	if err != nil {
		return fmt.Errorf("invalid pairing tolerance %q: %w", c.Pairing.Tolerance, err)
	}
	if tolerance < 0 {
		return fmt.Errorf("pairing tolerance must not be negative, got %s", tolerance)
	}
	c.Pairing.tolerance = tolerance

	return nil
}
