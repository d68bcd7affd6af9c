// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Roles  RolesConfig  `yaml:"roles" mapstructure:"roles"`
	FTP    FTPConfig    `yaml:"ftp" mapstructure:"ftp"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the inventory database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ImportConfig holds the default import settings; most can be overridden
// per invocation with flags.
type ImportConfig struct {
	Create          bool   `yaml:"create" mapstructure:"create"`
	IncludeInZoning bool   `yaml:"include_in_zoning" mapstructure:"include_in_zoning"`
	RoleMode        string `yaml:"role_mode" mapstructure:"role_mode"`
	StaticRole      string `yaml:"static_role" mapstructure:"static_role"`
	SyntaxOverride  string `yaml:"syntax_override" mapstructure:"syntax_override"`
	ConflictPolicy  string `yaml:"conflict_policy" mapstructure:"conflict_policy"`
	ZoneTypeMode    string `yaml:"zone_type_mode" mapstructure:"zone_type_mode"`

	SubmitMaxAttempts  int `yaml:"submit_max_attempts" mapstructure:"submit_max_attempts"`
	RefreshMaxAttempts int `yaml:"refresh_max_attempts" mapstructure:"refresh_max_attempts"`
}

// RolesConfig configures smart role classification. When RemoteURL is set
// the remote service is used; otherwise rules are loaded from RulesPath.
type RolesConfig struct {
	RulesPath         string  `yaml:"rules_path" mapstructure:"rules_path"`
	RemoteURL         string  `yaml:"remote_url" mapstructure:"remote_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// FTPConfig configures fetching archived switch dumps from drop hosts.
type FTPConfig struct {
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the preview HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SANIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "sanimport.db")
	v.SetDefault("import.create", true)
	v.SetDefault("import.include_in_zoning", true)
	v.SetDefault("import.role_mode", "smart")
	v.SetDefault("import.static_role", "initiator")
	v.SetDefault("import.syntax_override", "original")
	v.SetDefault("import.conflict_policy", "prefer-device-alias")
	v.SetDefault("import.zone_type_mode", "detect")
	v.SetDefault("import.submit_max_attempts", 5)
	v.SetDefault("import.refresh_max_attempts", 6)
	v.SetDefault("roles.rules_path", "roles.yaml")
	v.SetDefault("roles.requests_per_second", 20)
	v.SetDefault("ftp.user", "anonymous")
	v.SetDefault("ftp.password", "anonymous@")
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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
