package logging

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultShutdownTimeoutMS = 5000

// Config holds the immutable bootstrap configuration. Create it once at
// startup (DefaultConfig or LoadConfig) and pass it to Init; it is never
// mutated afterwards.
type Config struct {
	// Level is the minimum severity emitted: trace, debug, info, warn,
	// error, fatal or panic.
	Level string `yaml:"level" validate:"required"`

	WithTimestamp  bool `yaml:"with_timestamp"`
	SkipFrameCount int  `yaml:"skip_frame_count" validate:"gte=0"`

	ConsoleLogging    bool   `yaml:"console_logging"`
	ConsoleNoColor    bool   `yaml:"console_no_color"`
	ConsoleTimeFormat string `yaml:"console_time_format"`

	FileLogging       bool   `yaml:"file_logging"`
	LogFileDir        string `yaml:"log_file_dir"`
	LogFileName       string `yaml:"log_file_name"`
	LogFileMaxSizeMB  int    `yaml:"log_file_max_size_mb" validate:"gte=0"`
	LogFileMaxBackups int    `yaml:"log_file_max_backups" validate:"gte=0"`
	LogFileMaxAgeDays int    `yaml:"log_file_max_age_days" validate:"gte=0"`
	LogFileCompress   bool   `yaml:"log_file_compress"`

	// EnableSpanEvents is the master switch for span lifecycle records.
	// When false no span event is ever constructed, regardless of SpanEvents.
	EnableSpanEvents bool `yaml:"enable_span_events"`
	// SpanEvents selects which lifecycle transitions are emitted. Valid
	// entries: new, enter, exit, close. An empty list emits nothing.
	SpanEvents []string `yaml:"span_events" validate:"dive,oneof=new enter exit close"`

	// ShutdownTimeoutMS bounds how long Close waits for in-flight log
	// events before giving up. Zero means the 5s default.
	ShutdownTimeoutMS      int  `yaml:"shutdown_timeout_ms" validate:"gte=0"`
	ShutdownTimeoutWarning bool `yaml:"shutdown_timeout_warning"`
}

// DefaultConfig returns the configuration used when the host supplies
// nothing: info level console logging with enter/exit span events.
func DefaultConfig() Config {
	return Config{
		Level:             "info",
		WithTimestamp:     true,
		ConsoleLogging:    true,
		LogFileDir:        "logs",
		LogFileName:       "app",
		LogFileMaxSizeMB:  100,
		LogFileMaxBackups: 3,
		LogFileMaxAgeDays: 7,
		EnableSpanEvents:  true,
		SpanEvents:        []string{"new", "close"},
		ShutdownTimeoutMS: defaultShutdownTimeoutMS,
	}
}

// LoadConfig reads a YAML configuration file. Fields absent from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration bytes on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeoutMS <= 0 {
		return defaultShutdownTimeoutMS * time.Millisecond
	}
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
