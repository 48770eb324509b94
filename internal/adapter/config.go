package adapter

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Display    DisplayConfig    `mapstructure:"display"`
	Controller ControllerConfig `mapstructure:"controller"`
	Cache      CacheConfig      `mapstructure:"cache"`
	UI         UIConfig         `mapstructure:"ui"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds Jellyseerr connection settings
type ServerConfig struct {
	URL               string        `mapstructure:"url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"` // per API call
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"` // startup status check
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// DisplayConfig holds render loop settings
type DisplayConfig struct {
	FPS int `mapstructure:"fps"`
}

// ControllerConfig holds gamepad settings
type ControllerConfig struct {
	Profile  string        `mapstructure:"profile"` // auto, xbox, playstation, switch, generic
	Device   string        `mapstructure:"device"`
	Deadzone float64       `mapstructure:"deadzone"`
	NavDelay time.Duration `mapstructure:"nav_delay"`
}

// CacheConfig holds poster cache settings
type CacheConfig struct {
	MaxImages      int    `mapstructure:"max_images"`
	MaxImageBytes  int64  `mapstructure:"max_image_bytes"`
	PosterSize     string `mapstructure:"poster_size"`
	PosterWidth    int    `mapstructure:"poster_width"`
	PosterHeight   int    `mapstructure:"poster_height"`
	Dir            string `mapstructure:"dir"` // empty disables the disk store
	MaxDiskEntries int    `mapstructure:"max_disk_entries"`
}

// UIConfig holds layout and timing settings
type UIConfig struct {
	MaxVisibleItems  int           `mapstructure:"max_visible_items"`
	MaxBrowsePerType int           `mapstructure:"max_browse_per_type"`
	MaxTitleChars    int           `mapstructure:"max_title_chars"`
	MaxWrappedLines  int           `mapstructure:"max_wrapped_lines"`
	MessageDuration  time.Duration `mapstructure:"message_duration"`
	RequestBackDelay time.Duration `mapstructure:"request_back_delay"`
	ImageRetryDelay  time.Duration `mapstructure:"image_retry_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "http://localhost:5055",
			RequestTimeout:    5 * time.Second,
			ConnectTimeout:    10 * time.Second,
			MaxRetries:        2,
			RequestsPerMinute: 30,
		},
		Display: DisplayConfig{
			FPS: 30,
		},
		Controller: ControllerConfig{
			Profile:  "auto",
			Device:   "/dev/input/js0",
			Deadzone: 0.35,
			NavDelay: 150 * time.Millisecond,
		},
		Cache: CacheConfig{
			MaxImages:      50,
			MaxImageBytes:  5 * 1024 * 1024,
			PosterSize:     "w500",
			PosterWidth:    300,
			PosterHeight:   450,
			MaxDiskEntries: 500,
		},
		UI: UIConfig{
			MaxVisibleItems:  10,
			MaxBrowsePerType: 10,
			MaxTitleChars:    40,
			MaxWrappedLines:  8,
			MessageDuration:  3 * time.Second,
			RequestBackDelay: 1500 * time.Millisecond,
			ImageRetryDelay:  10 * time.Second,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// TestConfig returns defaults suitable for tests: no log file, no disk cache
func TestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Logging.File = ""
	cfg.Cache.Dir = ""
	return cfg
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "seerrpad", "seerrpad.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "seerrpad", "seerrpad.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "seerrpad")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "seerrpad")
	}
}

// DefaultConfigFile returns the path `config init` writes to
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// envAliases binds the variable names the kiosk images already export
var envAliases = map[string]string{
	"server.url":         "JELLYSEERR_BASE_URL",
	"server.api_key":     "JELLYSEERR_API_KEY",
	"controller.profile": "CONTROLLER_PROFILE",
	"logging.file":       "LOG_FILE",
	"logging.level":      "LOG_LEVEL",
	"display.fps":        "FPS",
}

// newViper builds a viper instance with every default registered, so
// AutomaticEnv can see each key even when no config file exists.
func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.api_key", def.Server.APIKey)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout)
	v.SetDefault("server.connect_timeout", def.Server.ConnectTimeout)
	v.SetDefault("server.max_retries", def.Server.MaxRetries)
	v.SetDefault("server.requests_per_minute", def.Server.RequestsPerMinute)

	v.SetDefault("display.fps", def.Display.FPS)

	v.SetDefault("controller.profile", def.Controller.Profile)
	v.SetDefault("controller.device", def.Controller.Device)
	v.SetDefault("controller.deadzone", def.Controller.Deadzone)
	v.SetDefault("controller.nav_delay", def.Controller.NavDelay)

	v.SetDefault("cache.max_images", def.Cache.MaxImages)
	v.SetDefault("cache.max_image_bytes", def.Cache.MaxImageBytes)
	v.SetDefault("cache.poster_size", def.Cache.PosterSize)
	v.SetDefault("cache.poster_width", def.Cache.PosterWidth)
	v.SetDefault("cache.poster_height", def.Cache.PosterHeight)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("cache.max_disk_entries", def.Cache.MaxDiskEntries)

	v.SetDefault("ui.max_visible_items", def.UI.MaxVisibleItems)
	v.SetDefault("ui.max_browse_per_type", def.UI.MaxBrowsePerType)
	v.SetDefault("ui.max_title_chars", def.UI.MaxTitleChars)
	v.SetDefault("ui.max_wrapped_lines", def.UI.MaxWrappedLines)
	v.SetDefault("ui.message_duration", def.UI.MessageDuration)
	v.SetDefault("ui.request_back_delay", def.UI.RequestBackDelay)
	v.SetDefault("ui.image_retry_delay", def.UI.ImageRetryDelay)

	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix("SEERRPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envAliases {
		// SEERRPAD_* still wins because it is listed first
		v.BindEnv(key, "SEERRPAD_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
	return v
}

// LoadConfig loads configuration from file and environment. An empty path
// searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if u, err := url.Parse(c.Server.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		add("server.url must be an http(s) URL, got %q", c.Server.URL)
	}
	if c.Server.RequestTimeout <= 0 || c.Server.RequestTimeout > 60*time.Second {
		add("server.request_timeout must be in (0, 60s], got %s", c.Server.RequestTimeout)
	}
	if c.Server.ConnectTimeout <= 0 || c.Server.ConnectTimeout > 60*time.Second {
		add("server.connect_timeout must be in (0, 60s], got %s", c.Server.ConnectTimeout)
	}
	if c.Server.MaxRetries < 0 || c.Server.MaxRetries > 10 {
		add("server.max_retries must be 0..10, got %d", c.Server.MaxRetries)
	}
	if c.Display.FPS < 1 || c.Display.FPS > 120 {
		add("display.fps must be 1..120, got %d", c.Display.FPS)
	}
	if c.Controller.Deadzone <= 0 || c.Controller.Deadzone >= 1 {
		add("controller.deadzone must be between 0 and 1, got %v", c.Controller.Deadzone)
	}
	if c.Controller.NavDelay < 0 || c.Controller.NavDelay > 2*time.Second {
		add("controller.nav_delay must be 0..2s, got %s", c.Controller.NavDelay)
	}
	switch strings.ToLower(c.Controller.Profile) {
	case "auto", "xbox", "playstation", "switch", "generic":
	default:
		add("controller.profile %q is not one of auto, xbox, playstation, switch, generic", c.Controller.Profile)
	}
	if c.Cache.MaxImages < 1 || c.Cache.MaxImages > 1000 {
		add("cache.max_images must be 1..1000, got %d", c.Cache.MaxImages)
	}
	if c.Cache.MaxImageBytes <= 0 {
		add("cache.max_image_bytes must be positive, got %d", c.Cache.MaxImageBytes)
	}
	if c.Cache.PosterWidth <= 0 || c.Cache.PosterHeight <= 0 {
		add("cache.poster_width and cache.poster_height must be positive")
	}
	if c.UI.MaxVisibleItems < 1 {
		add("ui.max_visible_items must be at least 1, got %d", c.UI.MaxVisibleItems)
	}
	if c.UI.MaxTitleChars < 4 {
		add("ui.max_title_chars must be at least 4, got %d", c.UI.MaxTitleChars)
	}

	return errors.Join(errs...)
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.APIKey != ""
}

// SaveConfig writes cfg as YAML to path
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.api_key", cfg.Server.APIKey)
	v.Set("server.request_timeout", cfg.Server.RequestTimeout.String())
	v.Set("server.connect_timeout", cfg.Server.ConnectTimeout.String())
	v.Set("server.max_retries", cfg.Server.MaxRetries)
	v.Set("server.requests_per_minute", cfg.Server.RequestsPerMinute)

	v.Set("display.fps", cfg.Display.FPS)

	v.Set("controller.profile", cfg.Controller.Profile)
	v.Set("controller.device", cfg.Controller.Device)
	v.Set("controller.deadzone", cfg.Controller.Deadzone)
	v.Set("controller.nav_delay", cfg.Controller.NavDelay.String())

	v.Set("cache.max_images", cfg.Cache.MaxImages)
	v.Set("cache.max_image_bytes", cfg.Cache.MaxImageBytes)
	v.Set("cache.poster_size", cfg.Cache.PosterSize)
	v.Set("cache.poster_width", cfg.Cache.PosterWidth)
	v.Set("cache.poster_height", cfg.Cache.PosterHeight)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.max_disk_entries", cfg.Cache.MaxDiskEntries)

	v.Set("ui.max_visible_items", cfg.UI.MaxVisibleItems)
	v.Set("ui.max_browse_per_type", cfg.UI.MaxBrowsePerType)
	v.Set("ui.max_title_chars", cfg.UI.MaxTitleChars)
	v.Set("ui.max_wrapped_lines", cfg.UI.MaxWrappedLines)
	v.Set("ui.message_duration", cfg.UI.MessageDuration.String())
	v.Set("ui.request_back_delay", cfg.UI.RequestBackDelay.String())
	v.Set("ui.image_retry_delay", cfg.UI.ImageRetryDelay.String())

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefaultConfig writes the defaults to path unless a file exists there
func GenerateDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	return SaveConfig(DefaultConfig(), path)
}
