package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort  int
	FrontendURL []string

	DatabaseURL string

	JWT JWTConfig

	Admin AdminSeed

	KafkaBrokers []string
	EventsTopic  string
	MailTopic    string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	Storage StorageConfig

	FCMProjectID       string
	FCMCredentialsFile string

	Subscribers SubscriberAPIConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type JWTConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

type StorageConfig struct {
	Prefix         string
	MaxUploadMB    int
	AllowedExts    []string
	AllowedMIMEs   []string
	S3Bucket       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicDomain string
	GCSBucket      string
	GCSCredentials string
}

type SubscriberAPIConfig struct {
	BaseURL        string
	CommentBaseURL string
	HistoryBaseURL string
	AuthID         string
	AuthKey        string
	Timeout        time.Duration
	CacheTTL       time.Duration
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "water-backoffice"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		FrontendURL: CSV(os.Getenv("FRONTEND_URL")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWT: JWTConfig{
			Secret:     []byte(os.Getenv("JWT_SECRET")),
			Issuer:     os.Getenv("JWT_ISSUER"),
			Audience:   os.Getenv("JWT_AUDIENCE"),
			AccessTTL:  time.Duration(EnvIntDefault("JWT_EXPIRY_MINUTES", 60)) * time.Minute,
			RefreshTTL: time.Duration(EnvIntDefault("JWT_REFRESH_EXPIRY_MINUTES", 1440)) * time.Minute,
		},

		Admin: AdminSeed{
			Username: EnvDefault("ADMIN_USERNAME", "admin"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:  EnvDefault("KAFKA_EVENTS_TOPIC", "report_events"),
		MailTopic:    EnvDefault("KAFKA_MAIL_TOPIC", "mail_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_REPORTS_INDEX", "reports"),

		Storage: StorageConfig{
			Prefix:         EnvDefault("STORAGE_PREFIX", "reports"),
			MaxUploadMB:    EnvIntDefault("MAX_UPLOAD_SIZE_MB", 5),
			AllowedExts:    CSV(EnvDefault("ALLOWED_FILE_EXTENSIONS", ".jpg,.jpeg,.png,.webp")),
			AllowedMIMEs:   CSV(EnvDefault("ALLOWED_FILE_MIME_TYPES", "image/jpeg,image/png,image/webp")),
			S3Bucket:       os.Getenv("S3_BUCKET"),
			S3Endpoint:     os.Getenv("S3_ENDPOINT"),
			S3AccessKey:    os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretKey:    os.Getenv("S3_SECRET_ACCESS_KEY"),
			S3PublicDomain: os.Getenv("S3_PUBLIC_DOMAIN"),
			GCSBucket:      os.Getenv("GCS_BUCKET"),
			GCSCredentials: os.Getenv("GCS_CREDENTIALS_FILE"),
		},

		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),
		FCMCredentialsFile: os.Getenv("FCM_CREDENTIALS_FILE"),

		Subscribers: SubscriberAPIConfig{
			BaseURL:        os.Getenv("SUBSCRIBER_API_URL"),
			CommentBaseURL: os.Getenv("SUBSCRIBER_API_COMMENT_URL"),
			HistoryBaseURL: os.Getenv("SUBSCRIBER_API_HISTORY_URL"),
			AuthID:         os.Getenv("SUBSCRIBER_API_AUTH_ID"),
			AuthKey:        os.Getenv("SUBSCRIBER_API_AUTH_KEY"),
			Timeout:        EnvDurationDefault("SUBSCRIBER_API_TIMEOUT", 5*time.Second),
			CacheTTL:       EnvDurationDefault("SUBSCRIBER_CACHE_TTL", 2*time.Minute),
		},

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
