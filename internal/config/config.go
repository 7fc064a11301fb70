package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/brettadin/Anything-SpecApp/internal/analysis"
	"github.com/brettadin/Anything-SpecApp/internal/parser"
)

// Global configuration structure.
type Global struct {
	StorePath string `mapstructure:"store_path" yaml:"store_path"`
	MaxFileMB int    `mapstructure:"max_file_mb" yaml:"max_file_mb"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`

	// Storage and presentation
	MaxStoragePoints int `mapstructure:"max_storage_points" yaml:"max_storage_points"`
	PreviewRows      int `mapstructure:"preview_rows" yaml:"preview_rows"`

	// Ingestion heuristics
	DelimiterScanLines   int     `mapstructure:"delimiter_scan_lines" yaml:"delimiter_scan_lines"`
	NumericSampleLines   int     `mapstructure:"numeric_sample_lines" yaml:"numeric_sample_lines"`
	MetadataNumericRatio float64 `mapstructure:"metadata_numeric_ratio" yaml:"metadata_numeric_ratio"`
	RoleSampleSize       int     `mapstructure:"role_sample_size" yaml:"role_sample_size"`

	// Analysis
	SmoothWindow    int `mapstructure:"smooth_window" yaml:"smooth_window"`
	PeakMinDistance int `mapstructure:"peak_min_distance" yaml:"peak_min_distance"`
	BaselineDegree  int `mapstructure:"baseline_degree" yaml:"baseline_degree"`

	// Inbox watcher
	WatchDebounceMs int `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms"`
}

// Keys lists every recognized configuration key.
var Keys = []string{
	"store_path", "max_file_mb", "log_level",
	"max_storage_points", "preview_rows",
	"delimiter_scan_lines", "numeric_sample_lines", "metadata_numeric_ratio", "role_sample_size",
	"smooth_window", "peak_min_distance", "baseline_degree",
	"watch_debounce_ms",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".specapp"), nil
}

// Path returns the config file in use: cfgFile, or ~/.specapp/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.specapp/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_file_mb", parser.DefaultMaxFileBytes>>20)
	v.SetDefault("log_level", "info")
	v.SetDefault("max_storage_points", parser.DefaultMaxStoragePoints)
	v.SetDefault("preview_rows", parser.DefaultPreviewRows)
	v.SetDefault("delimiter_scan_lines", parser.DefaultScanLines)
	v.SetDefault("numeric_sample_lines", parser.DefaultNumericLines)
	v.SetDefault("metadata_numeric_ratio", parser.DefaultMetadataRatio)
	v.SetDefault("role_sample_size", parser.DefaultRoleSample)
	a := analysis.DefaultOptions()
	v.SetDefault("smooth_window", a.SmoothWindow)
	v.SetDefault("peak_min_distance", a.PeakMinDistance)
	v.SetDefault("baseline_degree", a.BaselineDegree)
	v.SetDefault("watch_debounce_ms", 500)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SPECAPP")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve store_path default: ~/.specapp/datasets.db
	if c.StorePath == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		c.StorePath = filepath.Join(dir, "datasets.db")
	}
	return &c, nil
}

// Set assigns one key from its string form, validated through viper's
// decoding so numeric keys reject non-numeric input.
func (c *Global) Set(key, value string) error {
	known := false
	for _, k := range Keys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}
	v := viper.New()
	cur, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(cur, &m); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}
	v.Set(key, value)
	var next Global
	if err := v.Unmarshal(&next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*c = next
	return nil
}

// MaxFileBytes converts MaxFileMB to bytes.
func (c *Global) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) << 20
}

// ParserOptions maps the ingestion keys onto parser.Options.
func (c *Global) ParserOptions() parser.Options {
	return parser.Options{
		ScanLines:     c.DelimiterScanLines,
		NumericLines:  c.NumericSampleLines,
		MetadataRatio: c.MetadataNumericRatio,
		RoleSample:    c.RoleSampleSize,
		MaxFileBytes:  c.MaxFileBytes(),
	}
}

// AnalysisOptions maps the analysis keys onto analysis.Options.
func (c *Global) AnalysisOptions() analysis.Options {
	return analysis.Options{
		SmoothWindow:    c.SmoothWindow,
		PeakMinDistance: c.PeakMinDistance,
		BaselineDegree:  c.BaselineDegree,
	}
}
