package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/username/worktime-calendar/internal/annotation"
)

const (
	defaultWorkHours      = 8.0
	defaultMonthsPerTable = 3
	envPrefix             = "WORKTIME"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig represents the calendar year and its annotations
type CalendarConfig struct {
	Year            int               `mapstructure:"year"`       // 0 means the current year
	WorkHours       float64           `mapstructure:"work_hours"` // nominal hours per working day
	AnnotationsFile string            `mapstructure:"annotations_file"`
	Tags            map[string]string `mapstructure:"tags"` // marker -> day type name
	MonthsPerTable  int               `mapstructure:"months_per_table"`
}

// FilterConfig holds the default date filter
type FilterConfig struct {
	Expression string `mapstructure:"expression"`
}

// ExportConfig represents iCalendar export settings
type ExportConfig struct {
	ICSFile   string `mapstructure:"ics_file"`
	ProductID string `mapstructure:"product_id"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file, .env and environment.
// Without an explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.worktime")
		v.AddConfigPath("/etc/worktime")
	}

	// WORKTIME_CALENDAR_YEAR overrides calendar.year
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.year", 0)
	v.SetDefault("calendar.work_hours", defaultWorkHours)
	v.SetDefault("calendar.annotations_file", "")
	v.SetDefault("calendar.months_per_table", defaultMonthsPerTable)
	v.SetDefault("filter.expression", "")
	v.SetDefault("export.ics_file", "")
	v.SetDefault("export.product_id", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Calendar.Year != 0 && (c.Calendar.Year < 1583 || c.Calendar.Year > 9999) {
		return fmt.Errorf("calendar.year must be between 1583 and 9999, got %d", c.Calendar.Year)
	}
	if c.Calendar.WorkHours < 0 || c.Calendar.WorkHours > 24 {
		return fmt.Errorf("calendar.work_hours must be between 0 and 24, got %v", c.Calendar.WorkHours)
	}
	if c.Calendar.MonthsPerTable < 0 || c.Calendar.MonthsPerTable > 12 {
		return fmt.Errorf("calendar.months_per_table must be between 1 and 12, got %d", c.Calendar.MonthsPerTable)
	}
	if len(c.Calendar.Tags) > 0 {
		if _, err := annotation.ParseTagTable(c.Calendar.Tags); err != nil {
			return fmt.Errorf("calendar.tags: %w", err)
		}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); c.Log.Level != "" && err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

// GetYear returns the configured year, or the year of now
func (c *CalendarConfig) GetYear(now time.Time) int {
	if c.Year == 0 {
		return now.Year()
	}
	return c.Year
}

// GetWorkHours returns nominal hours per working day. Default: 8
func (c *CalendarConfig) GetWorkHours() float64 {
	if c.WorkHours <= 0 {
		return defaultWorkHours
	}
	return c.WorkHours
}

// GetTags returns the marker table, the built-in one when none is configured
func (c *CalendarConfig) GetTags() (annotation.TagTable, error) {
	if len(c.Tags) == 0 {
		return annotation.DefaultTags(), nil
	}
	return annotation.ParseTagTable(c.Tags)
}

// GetMonthsPerTable returns how many months a calendar page holds. Default: 3
func (c *CalendarConfig) GetMonthsPerTable() int {
	if c.MonthsPerTable <= 0 {
		return defaultMonthsPerTable
	}
	return c.MonthsPerTable
}

// GetLevel returns the log level. Default: info
func (c *LogConfig) GetLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		return zapcore.InfoLevel
	}
	return level
}

// ExpandEnvVars expands environment variables in file paths
func (c *Config) ExpandEnvVars() {
	c.Calendar.AnnotationsFile = os.ExpandEnv(c.Calendar.AnnotationsFile)
	c.Export.ICSFile = os.ExpandEnv(c.Export.ICSFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
