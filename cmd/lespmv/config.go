package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the lespmv configuration file (~/.config/lespmv/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	// Element types
	Precision *int `yaml:"precision"`
	IndexBits *int `yaml:"index_bits"`

	// Layouts and schedules
	Formats   []string `yaml:"formats"`
	Modes     []string `yaml:"modes"`
	Threads   *int     `yaml:"threads"`
	Grain     *int     `yaml:"grain"`
	MaxDiags  *int     `yaml:"max_diags"`
	Alignment *int     `yaml:"alignment"`
	LD        string   `yaml:"ld"`
	ChunkRows *int     `yaml:"chunk_rows"`
	Window    *int     `yaml:"window"`

	// Benchmark
	MinIterations *int           `yaml:"min_iterations"`
	MaxIterations *int           `yaml:"max_iterations"`
	Budget        *time.Duration `yaml:"budget"`
	Seed          *uint64        `yaml:"seed"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
	DataDir       string `yaml:"data_dir"`
}

func configPath() string {
	if p := os.Getenv("LESPMV_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lespmv", "config.yaml")
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyRunConfig applies config file defaults to the matrix, layout and
// benchmark variables when the corresponding CLI flag was not explicitly set.
func applyRunConfig(c *cli.Command, cfg Config) {
	setInt := func(flag string, dst *int, v *int) {
		if v != nil && !c.IsSet(flag) {
			*dst = *v
		}
	}
	setInt("precision", &precision, cfg.Precision)
	setInt("index-bits", &indexBits, cfg.IndexBits)
	setInt("threads", &threads, cfg.Threads)
	setInt("grain", &grain, cfg.Grain)
	setInt("max-diags", &maxDiags, cfg.MaxDiags)
	setInt("alignment", &alignment, cfg.Alignment)
	setInt("chunk-rows", &chunkRows, cfg.ChunkRows)
	setInt("window", &window, cfg.Window)
	setInt("min-iters", &minIters, cfg.MinIterations)
	setInt("max-iters", &maxIters, cfg.MaxIterations)

	if len(cfg.Formats) > 0 && !c.IsSet("formats") {
		formatNames = cfg.Formats
	}
	if len(cfg.Modes) > 0 && !c.IsSet("modes") && !c.IsSet("sche") {
		modeNames = cfg.Modes
	}
	if cfg.LD != "" && !c.IsSet("ld") {
		leadingDim = cfg.LD
	}
	if cfg.Budget != nil && !c.IsSet("budget") {
		budget = *cfg.Budget
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr, dataDir *string) {
	applyRunConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.DataDir != "" && !c.IsSet("data-dir") {
		*dataDir = cfg.DataDir
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	cfg, _ := loadConfigFile(configPath())
	return cfg
}

func loadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
