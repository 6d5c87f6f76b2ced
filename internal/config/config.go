package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SourceConfig describes where the daily tracker rows are read from
type SourceConfig struct {
	Kind            string        `yaml:"kind" envconfig:"KIND" validate:"oneof=sheets xlsx csv"`
	Path            string        `yaml:"path" envconfig:"PATH" validate:"required_unless=Kind sheets"`
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required_if=Kind sheets"`
	SheetName       string        `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	Columns         ColumnsConfig `yaml:"columns" envconfig:"COLUMNS"`
}

// ColumnsConfig names the tracker header cells
type ColumnsConfig struct {
	Date              string `yaml:"date" envconfig:"DATE" validate:"required"`
	NewPatients       string `yaml:"new_patients" envconfig:"NEW_PATIENTS" validate:"required"`
	ReturningPatients string `yaml:"returning_patients" envconfig:"RETURNING_PATIENTS" validate:"required"`
	Comments          string `yaml:"comments" envconfig:"COMMENTS"`
}

// ReportConfig contains aggregation policies and output settings
type ReportConfig struct {
	Title      string   `yaml:"title" envconfig:"TITLE" validate:"required"`
	Author     string   `yaml:"author" envconfig:"AUTHOR"`
	WeekEndsOn string   `yaml:"week_ends_on" envconfig:"WEEK_ENDS_ON" validate:"oneof=sunday monday tuesday wednesday thursday friday saturday"`
	OnBadDate  string   `yaml:"on_bad_date" envconfig:"ON_BAD_DATE" validate:"oneof=abort skip"`
	YearPolicy string   `yaml:"year_policy" envconfig:"YEAR_POLICY" validate:"oneof=fixed nearest"`
	OutputDir  string   `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	BaseName   string   `yaml:"base_name" envconfig:"BASE_NAME" validate:"required,excludesall=/\\"`
	Formats    []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=tex latex csv xlsx excel json"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, an optional YAML file and
// CLINIC_* environment variables, in increasing order of precedence. An empty
// path falls back to the well-known config file locations.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load with a final override step, typically command
// line flags, applied after the environment and before validation.
func LoadWithOverrides(path string, override func(*Config)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if override != nil {
		override(cfg)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg. Keys absent
// from the file keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) normalize() {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	c.Report.WeekEndsOn = strings.ToLower(strings.TrimSpace(c.Report.WeekEndsOn))
	c.Report.OnBadDate = strings.ToLower(strings.TrimSpace(c.Report.OnBadDate))
	c.Report.YearPolicy = strings.ToLower(strings.TrimSpace(c.Report.YearPolicy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	for i, f := range c.Report.Formats {
		c.Report.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
}

// Validate checks the configuration against its validate tags
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"clinic-report.yaml",
		"configs/clinic-report.yaml",
		"../configs/clinic-report.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:    "sheets",
			Timeout: DefaultSourceTimeout,
			Columns: ColumnsConfig{
				Date:              DefaultDateColumn,
				NewPatients:       DefaultNewPatientsColumn,
				ReturningPatients: DefaultReturningPatientsColumn,
				Comments:          DefaultCommentsColumn,
			},
		},
		Report: ReportConfig{
			Title:      DefaultReportTitle,
			Author:     DefaultReportAuthor,
			WeekEndsOn: "sunday",
			OnBadDate:  BadDateAbort,
			YearPolicy: YearPolicyFixed,
			OutputDir:  ".",
			BaseName:   DefaultReportBaseName,
			Formats:    []string{"tex"},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/clinic-report.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TracingEnabled: false,
			MetricsEnabled: true,
		},
	}
}
