package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Origins   []string

	// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers
	// are believed. Empty trusts none.
	TrustedProxies []string

	Mongo   Mongo
	Auth    Auth
	Cookie  Cookie
	Log     Log
	Media   Media
	Redis   Redis
	Mail    Mail
	Admin   Admin
	Paging  Paging
	Limiter Limiter
}

type Mongo struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type Auth struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	ResetURL      string
}

type Cookie struct {
	Secure bool
	Domain string
}

type Log struct {
	Level      string
	Format     string
	Dir        string
	MaxSizeMB  int
	BufferSize int
	ToDB       bool
	DBLevel    string
}

type Media struct {
	Provider      string
	PublicBaseURL string
	TempDir       string
	MaxVideoMB    int
	MaxImageMB    int

	GCSBucket          string
	GCSCredentialsFile string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

type Redis struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	LikeCountTTL time.Duration
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Admin struct {
	Username string
	Email    string
	Password string
	FullName string
	Avatar   string
}

type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

type Limiter struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// IsProduction reports whether cookies and error output should be hardened.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", 8000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "tubecafe")
	v.SetDefault("MONGODB_TIMEOUT", "10s")

	v.SetDefault("ACCESS_TOKEN_EXPIRY", "15m")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "240h")
	v.SetDefault("RESET_TOKEN_TTL", "15m")
	v.SetDefault("RESET_PASSWORD_URL", "http://localhost:3000/reset-password")

	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LOG_MAX_SIZE_MB", 1)
	v.SetDefault("LOG_BUFFER_SIZE", 500)
	v.SetDefault("LOG_TO_DB", false)
	v.SetDefault("LOG_DB_LEVEL", "warning")

	v.SetDefault("MEDIA_PROVIDER", "gcs")
	v.SetDefault("MEDIA_TEMP_DIR", "")
	v.SetDefault("MAX_VIDEO_SIZE_MB", 200)
	v.SetDefault("MAX_IMAGE_SIZE_MB", 5)
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("MINIO_USE_SSL", true)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LIKE_COUNT_TTL", "2m")

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("ADMIN_FULL_NAME", "Administrator")

	v.SetDefault("PAGE_LIMIT", 10)
	v.SetDefault("MAX_PAGE_LIMIT", 100)

	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_BURST", 5)
}

// Load reads .env (when present) and the process environment.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Env:            strings.ToLower(v.GetString("ENV")),
		Port:           v.GetInt("PORT"),
		APIPrefix:      strings.TrimRight(v.GetString("API_PREFIX"), "/"),
		Origins:        splitList(v.GetString("CORS_ORIGIN")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		Mongo: Mongo{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("DATABASE_NAME"),
			Timeout:  v.GetDuration("MONGODB_TIMEOUT"),
		},
		Auth: Auth{
			AccessSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
			AccessTTL:     v.GetDuration("ACCESS_TOKEN_EXPIRY"),
			RefreshSecret: v.GetString("REFRESH_TOKEN_SECRET"),
			RefreshTTL:    v.GetDuration("REFRESH_TOKEN_EXPIRY"),
			ResetTTL:      v.GetDuration("RESET_TOKEN_TTL"),
			ResetURL:      strings.TrimRight(v.GetString("RESET_PASSWORD_URL"), "/"),
		},
		Cookie: Cookie{
			Secure: v.GetBool("COOKIE_SECURE"),
			Domain: v.GetString("COOKIE_DOMAIN"),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			Dir:        v.GetString("LOG_DIR"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			BufferSize: v.GetInt("LOG_BUFFER_SIZE"),
			ToDB:       v.GetBool("LOG_TO_DB"),
			DBLevel:    v.GetString("LOG_DB_LEVEL"),
		},
		Media: Media{
			Provider:           strings.ToLower(v.GetString("MEDIA_PROVIDER")),
			PublicBaseURL:      strings.TrimRight(v.GetString("MEDIA_PUBLIC_BASE_URL"), "/"),
			TempDir:            v.GetString("MEDIA_TEMP_DIR"),
			MaxVideoMB:         v.GetInt("MAX_VIDEO_SIZE_MB"),
			MaxImageMB:         v.GetInt("MAX_IMAGE_SIZE_MB"),
			GCSBucket:          v.GetString("GCS_BUCKET"),
			GCSCredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
			S3Bucket:           v.GetString("S3_BUCKET"),
			S3Region:           v.GetString("S3_REGION"),
			S3Endpoint:         v.GetString("S3_ENDPOINT"),
			S3AccessKey:        v.GetString("S3_ACCESS_KEY_ID"),
			S3SecretKey:        v.GetString("S3_SECRET_ACCESS_KEY"),
			MinioEndpoint:      v.GetString("MINIO_ENDPOINT"),
			MinioAccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			MinioSecretKey:     v.GetString("MINIO_SECRET_KEY"),
			MinioBucket:        v.GetString("MINIO_BUCKET"),
			MinioUseSSL:        v.GetBool("MINIO_USE_SSL"),
		},
		Redis: Redis{
			Addr:         v.GetString("REDIS_ADDR"),
			Username:     v.GetString("REDIS_USERNAME"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			LikeCountTTL: v.GetDuration("LIKE_COUNT_TTL"),
		},
		Mail: Mail{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_EMAIL"),
		},
		Admin: Admin{
			Username: v.GetString("ADMIN_USERNAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_FULL_NAME"),
			Avatar:   v.GetString("ADMIN_AVATAR"),
		},
		Paging: Paging{
			DefaultLimit: v.GetInt("PAGE_LIMIT"),
			MaxLimit:     v.GetInt("MAX_PAGE_LIMIT"),
		},
		Limiter: Limiter{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if cfg.Paging.DefaultLimit <= 0 {
		cfg.Paging.DefaultLimit = 10
	}
	if cfg.Paging.MaxLimit < cfg.Paging.DefaultLimit {
		cfg.Paging.MaxLimit = cfg.Paging.DefaultLimit
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 1
	}
	if cfg.Auth.AccessSecret == "" || cfg.Auth.RefreshSecret == "" {
		logrus.Warn("ACCESS_TOKEN_SECRET or REFRESH_TOKEN_SECRET not set; authentication will fail")
	}
	return cfg
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
