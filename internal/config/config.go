package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvironmentDevelopment = "Development"

type Config struct {
	App      AppConfig
	Server   ServerConfig
	JWT      JWTConfig `mapstructure:"jwt"`
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	CORS     CORSConfig `mapstructure:"cors"`
	Swagger  SwaggerConfig
	Worker   WorkerConfig
	Errors   ErrorsConfig
	Log      LogConfig
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Environment, EnvironmentDevelopment)
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
}

// JWTConfig maps the Jwt:Issuer, Jwt:Audience and Jwt:SecretKey settings.
type JWTConfig struct {
	Issuer        string        `mapstructure:"issuer"`
	Audience      string        `mapstructure:"audience"`
	SecretKey     string        `mapstructure:"secretKey"`
	TokenLifetime time.Duration `mapstructure:"tokenLifetime"`
}

type AuthConfig struct {
	AdminUsername string `mapstructure:"adminUsername"`
	AdminPassword string `mapstructure:"adminPassword"`
}

type DatabaseConfig struct {
	ConnectionStringSecretName string        `mapstructure:"connectionStringSecretName"`
	URL                        string        `mapstructure:"url"`
	MaxOpenConns               int           `mapstructure:"maxOpenConns"`
	MaxIdleConns               int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime            time.Duration `mapstructure:"connMaxLifetime"`
	AutoMigrate                bool          `mapstructure:"autoMigrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	Policy         string   `mapstructure:"policy"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type SwaggerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
}

type WorkerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Concurrency       int           `mapstructure:"concurrency"`
	PurgeSchedule     string        `mapstructure:"purgeSchedule"`
	ForecastRetention time.Duration `mapstructure:"forecastRetention"`
}

type ErrorsConfig struct {
	ExposeMessages bool `mapstructure:"exposeMessages"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var ErrMissingSecretKey = errors.New("jwt.secretKey must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gdb-api")
	v.SetDefault("app.environment", "Production")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownPeriod", 15*time.Second)

	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("jwt.secretKey", "")
	v.SetDefault("jwt.tokenLifetime", time.Hour)

	v.SetDefault("auth.adminUsername", "admin")
	v.SetDefault("auth.adminPassword", "adminpassword")

	v.SetDefault("database.connectionStringSecretName", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 5*time.Minute)
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("cors.policy", "AllowAll")
	v.SetDefault("cors.allowedOrigins", []string{})

	v.SetDefault("swagger.enabled", false)
	v.SetDefault("swagger.title", "GDB API")
	v.SetDefault("swagger.description", "")

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.purgeSchedule", "@every 1h")
	v.SetDefault("worker.forecastRetention", 30*24*time.Hour)

	v.SetDefault("errors.exposeMessages", true)

	v.SetDefault("log.level", "info")
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return ErrMissingSecretKey
	}
	return nil
}
