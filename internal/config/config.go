package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"monosplit/internal/paths"
)

// EnvPrefix is the prefix for environment overrides, e.g. MONOSPLIT_OUTPUT_DIR.
const EnvPrefix = "MONOSPLIT"

// Config represents the complete monosplit configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Discovery      DiscoveryConfig      `json:"discovery" mapstructure:"discovery"`
	Classification ClassificationConfig `json:"classification" mapstructure:"classification"`
	Report         ReportConfig         `json:"report" mapstructure:"report"`
	Output         OutputConfig         `json:"output" mapstructure:"output"`
	Storage        StorageConfig        `json:"storage" mapstructure:"storage"`
	Logging        LoggingConfig        `json:"logging" mapstructure:"logging"`
}

// DiscoveryConfig controls how descriptor files are located and parsed
type DiscoveryConfig struct {
	DescriptorName string   `json:"descriptorName" mapstructure:"descriptorName"`
	ExcludeDirs    []string `json:"excludeDirs" mapstructure:"excludeDirs"`
	// Parallelism bounds concurrent descriptor parses; 0 means GOMAXPROCS.
	Parallelism int `json:"parallelism" mapstructure:"parallelism"`
}

// ClassificationConfig contains application detection and threshold settings
type ClassificationConfig struct {
	ApplicationPackaging []string `json:"applicationPackaging" mapstructure:"applicationPackaging"`
	WebSourceMarkers     []string `json:"webSourceMarkers" mapstructure:"webSourceMarkers"`
	MinSharedApps        int      `json:"minSharedApps" mapstructure:"minSharedApps"`
	MinFanIn             int      `json:"minFanIn" mapstructure:"minFanIn"`
	DeclarationFile      string   `json:"declarationFile" mapstructure:"declarationFile"`
}

// ReportConfig contains report rendering settings
type ReportConfig struct {
	MaxCycles    int    `json:"maxCycles" mapstructure:"maxCycles"`
	SourceScan   bool   `json:"sourceScan" mapstructure:"sourceScan"`
	SourceRoot   string `json:"sourceRoot" mapstructure:"sourceRoot"`
	ParseSources bool   `json:"parseSources" mapstructure:"parseSources"`
}

// OutputConfig contains output file settings
type OutputConfig struct {
	Dir      string   `json:"dir" mapstructure:"dir"`
	Compress bool     `json:"compress" mapstructure:"compress"`
	Formats  []string `json:"formats" mapstructure:"formats"`
}

// StorageConfig contains run history settings
type StorageConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  bool   `json:"file" mapstructure:"file"`
}

// Output format names accepted in output.formats
const (
	FormatCSV      = "csv"
	FormatDOT      = "dot"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

var knownFormats = map[string]bool{
	FormatCSV:      true,
	FormatDOT:      true,
	FormatMarkdown: true,
	FormatJSON:     true,
	FormatYAML:     true,
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Discovery: DiscoveryConfig{
			DescriptorName: "pom.xml",
			ExcludeDirs:    []string{"target"},
			Parallelism:    0,
		},
		Classification: ClassificationConfig{
			ApplicationPackaging: []string{"war", "ear"},
			WebSourceMarkers:     []string{"src/main/webapp"},
			MinSharedApps:        2,
			MinFanIn:             2,
			DeclarationFile:      "MONOSPLIT.toml",
		},
		Report: ReportConfig{
			MaxCycles:    10,
			SourceScan:   true,
			SourceRoot:   "src/main/java",
			ParseSources: false,
		},
		Output: OutputConfig{
			Dir:      "monorepo-analysis",
			Compress: false,
			Formats:  []string{FormatCSV, FormatDOT, FormatMarkdown},
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    filepath.Join(paths.StateDirName, "monosplit.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  false,
		},
	}
}

// setDefaults registers every key so env overrides and partial files merge with defaults.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("discovery.descriptorName", d.Discovery.DescriptorName)
	v.SetDefault("discovery.excludeDirs", d.Discovery.ExcludeDirs)
	v.SetDefault("discovery.parallelism", d.Discovery.Parallelism)

	v.SetDefault("classification.applicationPackaging", d.Classification.ApplicationPackaging)
	v.SetDefault("classification.webSourceMarkers", d.Classification.WebSourceMarkers)
	v.SetDefault("classification.minSharedApps", d.Classification.MinSharedApps)
	v.SetDefault("classification.minFanIn", d.Classification.MinFanIn)
	v.SetDefault("classification.declarationFile", d.Classification.DeclarationFile)

	v.SetDefault("report.maxCycles", d.Report.MaxCycles)
	v.SetDefault("report.sourceScan", d.Report.SourceScan)
	v.SetDefault("report.sourceRoot", d.Report.SourceRoot)
	v.SetDefault("report.parseSources", d.Report.ParseSources)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.compress", d.Output.Compress)
	v.SetDefault("output.formats", d.Output.Formats)

	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// LoadConfig loads configuration from <repoRoot>/.monosplit/config.{json,yaml,toml}.
// A missing file yields the defaults with environment overrides applied.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(repoRoot, paths.StateDirName))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .monosplit/config.json
func (c *Config) Save(repoRoot string) error {
	dir, err := paths.EnsureStateDir(repoRoot)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Discovery.DescriptorName == "" {
		return &ConfigError{Field: "discovery.descriptorName", Message: "must not be empty"}
	}
	if c.Discovery.Parallelism < 0 {
		return &ConfigError{Field: "discovery.parallelism", Message: "must be >= 0"}
	}
	if c.Classification.MinSharedApps < 2 {
		return &ConfigError{Field: "classification.minSharedApps", Message: "must be >= 2"}
	}
	if c.Classification.MinFanIn < 2 {
		return &ConfigError{Field: "classification.minFanIn", Message: "must be >= 2"}
	}
	if c.Report.MaxCycles < 1 {
		return &ConfigError{Field: "report.maxCycles", Message: "must be >= 1"}
	}
	for _, f := range c.Output.Formats {
		if !knownFormats[f] {
			return &ConfigError{Field: "output.formats", Message: "unknown format " + f}
		}
	}
	return nil
}

// HasFormat reports whether the given output format is enabled.
func (o OutputConfig) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
