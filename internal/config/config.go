// Package config loads the application configuration from file and
// environment and installs the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MapConfig sets the defaults for composed maps.
type MapConfig struct {
	CenterLat float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLon float64 `yaml:"center_lon" mapstructure:"center_lon"`
	Style     string  `yaml:"style" mapstructure:"style"`
	Zoom      float64 `yaml:"zoom" mapstructure:"zoom"`
	Width     int     `yaml:"width" mapstructure:"width"`
	Height    int     `yaml:"height" mapstructure:"height"`
	Theme     string  `yaml:"theme" mapstructure:"theme"`
}

// DataConfig locates downloaded datasets and rendered artifacts.
type DataConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the artifact viewer server.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// FetchConfig configures the boundary fetcher.
type FetchConfig struct {
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int    `yaml:"max_retries" mapstructure:"max_retries"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Load reads configuration from file and environment. An explicit path
// wins; otherwise .housing-eda.yaml is searched in $HOME and the working
// directory.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".housing-eda")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("HOUSING_EDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("map.center_lat", 47.3464)
	v.SetDefault("map.center_lon", -121.9861)
	v.SetDefault("map.style", "open-street-map")
	v.SetDefault("map.zoom", 9.0)
	v.SetDefault("map.width", 1000)
	v.SetDefault("map.height", 1000)
	v.SetDefault("data.dir", "data")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("fetch.user_agent", "housing-eda/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.cache_ttl_hours", 24)
	v.SetDefault("store.path", "data/housing-eda.db")

	// Read config file (optional when searched, required when explicit)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	var problems []string

	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		problems = append(problems, "map.zoom must be between 0 and 22")
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		problems = append(problems, "map.width and map.height must be > 0")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		problems = append(problems, "map.center_lat must be between -90 and 90")
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		problems = append(problems, "map.center_lon must be between -180 and 180")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		problems = append(problems, "fetch.timeout_secs must be > 0")
	}
	if c.Fetch.MaxRetries < 1 || c.Fetch.MaxRetries > 10 {
		problems = append(problems, "fetch.max_retries must be between 1 and 10")
	}
	if c.Data.Dir == "" {
		problems = append(problems, "data.dir is required")
	}
	if c.Store.Path == "" {
		problems = append(problems, "store.path is required")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
