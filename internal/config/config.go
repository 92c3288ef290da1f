package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Upload      UploadConfig      `mapstructure:"upload"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`

	// 配置文件所在目录，供热加载使用
	Path string `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
	// sqlite 文件路径，":memory:" 表示内存库
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	PublicBaseURL string `mapstructure:"public_base_url"`

	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`

	OSSEndpoint  string `mapstructure:"oss_endpoint"`
	OSSAccessKey string `mapstructure:"oss_access_key"`
	OSSSecretKey string `mapstructure:"oss_secret_key"`
	OSSBucket    string `mapstructure:"oss_bucket"`

	SupabaseURL    string `mapstructure:"supabase_url"`
	SupabaseKey    string `mapstructure:"supabase_key"`
	SupabaseBucket string `mapstructure:"supabase_bucket"`
}

// WebhookConfig 第三方问卷回传的拉取与解密参数
type WebhookConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Key     string        `mapstructure:"key"`
	IV      string        `mapstructure:"iv"`
	Padding string        `mapstructure:"padding"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LeaderboardConfig struct {
	UTCOffsetHours int `mapstructure:"utc_offset_hours"`
	TopN           int `mapstructure:"top_n"`
}

type UploadConfig struct {
	MaxSizeMB   int `mapstructure:"max_size_mb"`
	JPEGQuality int `mapstructure:"jpeg_quality"`
	MaxWidth    int `mapstructure:"max_width"`
}

type AdminConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Username     string        `mapstructure:"username"`
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	ExpireTime   time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "concept_review.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("storage.supabase_bucket", "concept-maps")

	v.SetDefault("webhook.padding", "pkcs7")
	v.SetDefault("webhook.timeout", 10*time.Second)

	v.SetDefault("leaderboard.utc_offset_hours", 8)
	v.SetDefault("leaderboard.top_n", 5)

	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("upload.jpeg_quality", 90)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.expire_hours", 12)

	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PEER_REVIEW")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.public_base_url", "STORAGE_PUBLIC_BASE_URL")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.supabase_url", "SUPABASE_URL")
	v.BindEnv("storage.supabase_key", "SUPABASE_KEY")
	v.BindEnv("storage.supabase_bucket", "SUPABASE_BUCKET")

	// Webhook
	v.BindEnv("webhook.base_url", "WEBHOOK_BASE_URL")
	v.BindEnv("webhook.key", "WEBHOOK_KEY")
	v.BindEnv("webhook.iv", "WEBHOOK_IV")
	v.BindEnv("webhook.padding", "WEBHOOK_PADDING")

	// Admin
	v.BindEnv("admin.enabled", "ADMIN_ENABLED")
	v.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Path = path

	cfg.Admin.ExpireTime = cfg.Admin.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate 检查配置间的约束
func (c *Config) Validate() error {
	switch c.Webhook.Padding {
	case "zero", "pkcs7":
	default:
		return fmt.Errorf("unsupported webhook padding %q (want zero or pkcs7)", c.Webhook.Padding)
	}

	if c.Webhook.Key != "" {
		switch len(c.Webhook.Key) {
		case 16, 24, 32:
		default:
			return fmt.Errorf("webhook key must be 16, 24 or 32 bytes, got %d", len(c.Webhook.Key))
		}
		if len(c.Webhook.IV) != 16 {
			return fmt.Errorf("webhook iv must be 16 bytes, got %d", len(c.Webhook.IV))
		}
	}

	if c.Leaderboard.TopN <= 0 {
		return fmt.Errorf("leaderboard top_n must be positive, got %d", c.Leaderboard.TopN)
	}

	// 生产环境校验 JWT Secret 强度
	if c.Admin.Enabled && c.Server.Mode == "release" && len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("admin JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Admin.JWTSecret))
	}

	return nil
}
