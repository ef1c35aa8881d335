package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"health-report/internal/logger"
)

const envPrefix = "HEALTH_REPORT"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Report   ReportConfig   `mapstructure:"report"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "mysql", "pgx" or "sqlite"
	DSN      string `mapstructure:"dsn"`    // Full DSN; when set the fields below are ignored
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"` // Database name, or file path for sqlite

	SleepQuery    string `mapstructure:"sleep_query"`
	ActivityQuery string `mapstructure:"activity_query"`
}

type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // "s3", "minio" or "local"
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"` // minio endpoint, host:port
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	LocalPath     string `mapstructure:"local_path"`
	PublicBaseURL string `mapstructure:"public_base_url"` // Overrides the backend's URL scheme

	GraphBucket  string `mapstructure:"graph_bucket"`
	ReportBucket string `mapstructure:"report_bucket"` // Also holds the font resource
}

type OpenAIConfig struct {
	APIKey              string  `mapstructure:"api_key"`
	BaseURL             string  `mapstructure:"base_url"`
	Model               string  `mapstructure:"model"`
	Temperature         float64 `mapstructure:"temperature"`
	MaxCompletionTokens int     `mapstructure:"max_completion_tokens"` // 0 leaves it to the provider
	SystemPrompt        string  `mapstructure:"system_prompt"`
	Timeout             string  `mapstructure:"timeout"` // empty or "0" waits indefinitely
}

type ReportConfig struct {
	UserName  string `mapstructure:"user_name"`
	Label     string `mapstructure:"label"`
	WrapWidth int    `mapstructure:"wrap_width"`
	Timezone  string `mapstructure:"timezone"`
	FontFile  string `mapstructure:"font_file"`
}

type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	Interval   string `mapstructure:"interval"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`
	FilePath     string `mapstructure:"file_path"`
	RotationTime string `mapstructure:"rotation_time"`
	MaxSize      int    `mapstructure:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"`
	Compress     bool   `mapstructure:"compress"`
}

const DefaultSystemPrompt = "당신은 친절한 건강 데이터 분석가입니다. " +
	"사용자의 활동 및 수면 데이터를 분석하여 통찰을 제공합니다. " +
	"분석 결과는 자연스러운 문장으로 구성해주세요."

const (
	DefaultSleepQuery = "SELECT created_at, deep_sleep_hours, light_sleep_hours, rem_sleep_hours, awake_hours " +
		"FROM fitbit_sleep_data ORDER BY created_at DESC"
	DefaultActivityQuery = "SELECT created_at, heart_rate, steps, calories_total " +
		"FROM fitbit_activity_data ORDER BY created_at DESC"
)

// Load reads the YAML config (if any), a .env file (if any) and the environment.
// The returned Config is owned by the caller; nothing is kept in package state.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			v.AddConfigPath(filepath.Join(execDir, "config"))
			v.AddConfigPath(execDir)
		}
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".health-report"))
		}
	}

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := normalizePaths(&cfg); err != nil {
		return nil, fmt.Errorf("failed to normalize paths: %w", err)
	}

	if err := initLogger(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sleep_query", DefaultSleepQuery)
	v.SetDefault("database.activity_query", DefaultActivityQuery)

	v.SetDefault("storage.backend", "s3")
	v.SetDefault("storage.region", "ap-northeast-2")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.local_path", "./data/objects")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.graph_bucket", "")
	v.SetDefault("storage.report_bucket", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.max_completion_tokens", 0)
	v.SetDefault("openai.system_prompt", DefaultSystemPrompt)
	v.SetDefault("openai.timeout", "")

	v.SetDefault("report.user_name", "")
	v.SetDefault("report.label", "건강리포트")
	v.SetDefault("report.wrap_width", 55)
	v.SetDefault("report.timezone", "Asia/Seoul")
	v.SetDefault("report.font_file", "NanumGothic-Regular.ttf")

	v.SetDefault("schedule.cron", "")
	v.SetDefault("schedule.interval", "24h")
	v.SetDefault("schedule.run_on_start", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.rotation_time", "24h")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
}

// legacyEnv maps config keys to the plain variable names the report job has always used.
var legacyEnv = map[string]string{
	"database.host":         "DB_HOST",
	"database.user":         "DB_USER",
	"database.password":     "DB_PASSWORD",
	"database.name":         "DB_NAME",
	"storage.graph_bucket":  "S3_BUCKET_GRAPH",
	"storage.report_bucket": "S3_BUCKET_PDF",
	"openai.api_key":        "OPENAI_API_KEY",
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks the values a full report run cannot do without.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, fmt.Errorf("openai.api_key is required"))
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("openai.temperature must be within [0, 2], got %v", c.OpenAI.Temperature))
	}
	if _, err := c.OpenAI.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Report.UserName == "" {
		errs = append(errs, fmt.Errorf("report.user_name is required"))
	}
	if c.Report.WrapWidth <= 0 {
		errs = append(errs, fmt.Errorf("report.wrap_width must be positive, got %d", c.Report.WrapWidth))
	}
	if _, err := c.Report.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate checks the database section on its own; preview only needs this much.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "mysql", "pgx", "sqlite":
	default:
		return fmt.Errorf("database.driver must be 'mysql', 'pgx' or 'sqlite', got '%s'", c.Driver)
	}
	if c.DSN == "" && c.Name == "" {
		return fmt.Errorf("database.name (or database.dsn) is required")
	}
	if c.SleepQuery == "" || c.ActivityQuery == "" {
		return fmt.Errorf("database.sleep_query and database.activity_query must not be empty")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case "s3":
	case "minio":
		if c.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required for the minio backend")
		}
	case "local":
		if c.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for the local backend")
		}
	default:
		return fmt.Errorf("storage.backend must be 's3', 'minio' or 'local', got '%s'", c.Backend)
	}
	if c.GraphBucket == "" || c.ReportBucket == "" {
		return fmt.Errorf("storage.graph_bucket and storage.report_bucket are required")
	}
	return nil
}

// TimeoutDuration returns 0 when no timeout is configured.
func (c *OpenAIConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" || c.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid openai.timeout: %w", err)
	}
	return d, nil
}

// Location resolves report.timezone; empty means local time.
func (c *ReportConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report.timezone: %w", err)
	}
	return loc, nil
}

func (c *ScheduleConfig) GetIntervalDuration() (time.Duration, error) {
	if c.Interval == "" {
		return 0, fmt.Errorf("interval not configured")
	}
	return time.ParseDuration(c.Interval)
}

func normalizePaths(cfg *Config) error {
	baseDir, err := getBaseDirectory()
	if err != nil {
		baseDir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get base directory: %w", err)
		}
	}

	if cfg.Storage.LocalPath != "" && !filepath.IsAbs(cfg.Storage.LocalPath) {
		cfg.Storage.LocalPath = filepath.Join(baseDir, cfg.Storage.LocalPath)
	}

	if cfg.Log.FilePath != "" {
		if !filepath.IsAbs(cfg.Log.FilePath) {
			cfg.Log.FilePath = filepath.Join(baseDir, cfg.Log.FilePath)
		}
		// A path without an extension is a directory.
		if info, err := os.Stat(cfg.Log.FilePath); err == nil && info.IsDir() {
			cfg.Log.FilePath = filepath.Join(cfg.Log.FilePath, "health-report.log")
		} else if os.IsNotExist(err) && filepath.Ext(cfg.Log.FilePath) == "" {
			cfg.Log.FilePath = filepath.Join(cfg.Log.FilePath, "health-report.log")
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}

// getBaseDirectory returns the directory relative paths resolve against.
// A binary under bin/ resolves to the nearest ancestor holding a config/ directory.
func getBaseDirectory() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return os.Getwd()
	}

	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		realPath = execPath
	}

	execDir := filepath.Dir(realPath)
	if filepath.Base(execDir) != "bin" {
		return execDir, nil
	}

	currentDir := execDir
	for {
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		if info, err := os.Stat(filepath.Join(currentDir, "config")); err == nil && info.IsDir() {
			return currentDir, nil
		}
		currentDir = parentDir
	}
	return execDir, nil
}

func initLogger(c *LogConfig) error {
	return logger.Init(logger.LogConfig{
		Level:        c.Level,
		FilePath:     c.FilePath,
		RotationTime: c.RotationTime,
		MaxSize:      c.MaxSize,
		MaxBackups:   c.MaxBackups,
		MaxAge:       c.MaxAge,
		Compress:     c.Compress,
	})
}
