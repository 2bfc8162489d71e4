package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int    `yaml:"port" env:"PORT" env-default:"8000"`
	AppEnv     string `yaml:"app_env" env:"APP_ENV" env-default:"development"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:4200"`

	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Uploads  UploadConfig   `yaml:"uploads"`
	Redis    RedisConfig    `yaml:"redis"`
}

// DatabaseConfig selects the SQL driver and its connection parameters.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DATABASE_PATH" env-default:"./focoshop.db"`

	MySQLUser     string `yaml:"mysql_user" env:"MYSQL_USER" env-default:"root"`
	MySQLPassword string `yaml:"mysql_password" env:"MYSQL_PASSWORD"`
	MySQLHost     string `yaml:"mysql_host" env:"MYSQL_HOST" env-default:"localhost"`
	MySQLPort     string `yaml:"mysql_port" env:"MYSQL_PORT" env-default:"3306"`
	MySQLDatabase string `yaml:"mysql_database" env:"MYSQL_DATABASE" env-default:"bd_focoshop"`
}

// JWTConfig configures access token signing.
type JWTConfig struct {
	SecretKey         string `yaml:"secret_key" env:"SECRET_KEY" env-required:"true"`
	AccessTokenExpire int    `yaml:"access_token_expire_minutes" env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
	BcryptCost        int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// UploadConfig configures where profile images live.
type UploadConfig struct {
	Dir           string `yaml:"dir" env:"UPLOAD_DIR" env-default:"./uploads"`
	MaxMB         int64  `yaml:"max_mb" env:"MAX_UPLOAD_MB" env-default:"5"`
	Storage       string `yaml:"storage" env:"IMAGE_STORAGE" env-default:"local"`
	SweepSchedule string `yaml:"sweep_schedule" env:"UPLOAD_SWEEP_SCHEDULE" env-default:"@hourly"`

	S3Bucket    string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region    string `yaml:"s3_region" env:"S3_REGION" env-default:"us-east-1"`
	S3Endpoint  string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3AccessKey string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	S3PublicURL string `yaml:"s3_public_url" env:"S3_PUBLIC_URL"`
}

// RedisConfig configures the optional category cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// Load reads an optional .env file, an optional YAML file named by CONFIG_PATH,
// and finally the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Uploads.Storage {
	case "local":
	case "s3":
		if c.Uploads.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return fmt.Errorf("config: unsupported IMAGE_STORAGE %q", c.Uploads.Storage)
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("config: SECRET_KEY is required")
	}
	if c.JWT.AccessTokenExpire <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TokenTTL returns the configured access token lifetime.
func (c JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpire) * time.Minute
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c UploadConfig) MaxUploadBytes() int64 {
	return c.MaxMB << 20
}

// DSN builds the data source name for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		mc := mysql.NewConfig()
		mc.User = c.MySQLUser
		mc.Passwd = c.MySQLPassword
		mc.Net = "tcp"
		mc.Addr = c.MySQLHost + ":" + c.MySQLPort
		mc.DBName = c.MySQLDatabase
		mc.ParseTime = true
		return mc.FormatDSN()
	}
	return "file:" + c.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
