package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Reddit  RedditConfig  `mapstructure:"reddit"`
	Reader  ReaderConfig  `mapstructure:"reader"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Path       string `mapstructure:"path"`
	FieldsPath string `mapstructure:"fields_path"`
	EnableJSON bool   `mapstructure:"enable_json"`
	Purge      bool   `mapstructure:"purge"`
}

// RedditConfig holds the Reddit account and app credentials. These are
// handed to the API client on connect and never persisted.
type RedditConfig struct {
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
}

// ReaderConfig holds download-related configuration
type ReaderConfig struct {
	Subreddits   []string      `mapstructure:"subreddits"`
	PollInterval string        `mapstructure:"poll_interval"`
	Limit        int           `mapstructure:"limit"`
	MoreComments int           `mapstructure:"more_comments"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	viper.SetDefault("storage.path", "./data")
	viper.SetDefault("storage.fields_path", "./config/fields.yaml")
	viper.SetDefault("storage.enable_json", true)
	viper.SetDefault("storage.purge", false)
	viper.SetDefault("reader.limit", 1000)
	viper.SetDefault("reader.more_comments", 0)
	viper.SetDefault("reader.request_delay", "1s")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("logging.level", "info")

	// Environment variable bindings
	viper.AutomaticEnv()
	viper.BindEnv("reddit.username", "REDDIT_USERNAME")
	viper.BindEnv("reddit.password", "REDDIT_PASSWORD")
	viper.BindEnv("reddit.app_id", "REDDIT_APP_ID")
	viper.BindEnv("reddit.app_secret", "REDDIT_APP_SECRET")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
