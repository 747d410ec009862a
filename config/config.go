package config

import (
	"log"

	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	Scheme          string `mapstructure:"scheme"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromEmail   string `mapstructure:"from_email"`
	FromName    string `mapstructure:"from_name"`
	Destination string `mapstructure:"destination"` // care team inbox
	UseTLS      bool   `mapstructure:"use_tls"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	Enabled     bool   `mapstructure:"enabled"`
}

type AntiAbuseConfig struct {
	MinFormAgeSeconds int `mapstructure:"min_form_age_seconds"` // reject submissions younger than this
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes"`
	MaxAttempts       int `mapstructure:"max_attempts"`   // submission ceiling per window
	WindowMinutes     int `mapstructure:"window_minutes"` // fixed rate-limit window
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type Config struct {
	WebServer WebServerConfig `mapstructure:"webserver"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	AntiAbuse AntiAbuseConfig `mapstructure:"antiabuse"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

func LoadConfig() (Config, error) {
	var config Config

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Enable environment variable overrides
	viper.SetEnvPrefix("MHC")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
			return config, err
		}
		// No config file is fine; defaults plus env overrides apply
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

func setDefaults() {
	// WebServer defaults
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.ip", "127.0.0.1")
	viper.SetDefault("webserver.scheme", "http")
	viper.SetDefault("webserver.read_timeout", 15)
	viper.SetDefault("webserver.write_timeout", 15)
	viper.SetDefault("webserver.shutdown_timeout", 30)

	// SMTP defaults (disabled until credentials are configured)
	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", "587")
	viper.SetDefault("smtp.username", "")
	viper.SetDefault("smtp.password", "")
	viper.SetDefault("smtp.from_email", "")
	viper.SetDefault("smtp.from_name", "Medaiyese Home Care Services")
	viper.SetDefault("smtp.destination", "")
	viper.SetDefault("smtp.use_tls", true)
	viper.SetDefault("smtp.use_ssl", false)
	viper.SetDefault("smtp.enabled", false)

	// AntiAbuse defaults
	viper.SetDefault("antiabuse.min_form_age_seconds", 3)
	viper.SetDefault("antiabuse.session_ttl_minutes", 60)
	viper.SetDefault("antiabuse.max_attempts", 5)
	viper.SetDefault("antiabuse.window_minutes", 10)

	// RateLimit defaults
	viper.SetDefault("ratelimit.requests_per_second", 10.0)
	viper.SetDefault("ratelimit.burst", 20)

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 5)
}
