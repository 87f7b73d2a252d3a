package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	GinMode        string
	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string
	SessionSecret  string

	UploadDriver    string
	UploadDir       string
	UploadURLPath   string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3UseSSL        bool
	S3PublicBaseURL string

	ImageKitPublicKey  string
	ImageKitPrivateKey string
	ImageKitTokenTTL   time.Duration

	IdentityPublicKey string
	IdentitySecret    string
	IdentityIssuer    string

	LocalUserName     string
	LocalUserPassword string
	LocalUserImageURL string
}

const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"

	UploadDriverLocal = "local"
	UploadDriverS3    = "s3"

	defaultImageKitTokenTTL = 30 * time.Minute
	maxImageKitTokenTTL     = time.Hour
)

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(env("DATABASE_DRIVER", DatabaseDriverSQLite))
	if driver != DatabaseDriverPostgres {
		driver = DatabaseDriverSQLite
	}

	uploadDriver := strings.ToLower(env("UPLOAD_DRIVER", UploadDriverLocal))
	if uploadDriver != UploadDriverS3 {
		uploadDriver = UploadDriverLocal
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		GinMode:        env("GIN_MODE", "release"),
		DatabaseDriver: driver,
		DatabasePath:   env("DATABASE_PATH", "inkpost.db"),
		DatabaseURL:    env("DATABASE_URL", ""),
		SessionSecret:  env("SESSION_SECRET", "inkpost-dev-secret"),

		UploadDriver:    uploadDriver,
		UploadDir:       env("UPLOAD_DIR", "data/uploads"),
		UploadURLPath:   env("UPLOAD_URL_PATH", "/uploads"),
		S3Endpoint:      env("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:     env("S3_ACCESS_KEY", ""),
		S3SecretKey:     env("S3_SECRET_KEY", ""),
		S3Bucket:        env("S3_BUCKET", "inkpost-uploads"),
		S3UseSSL:        envBool("S3_USE_SSL", false),
		S3PublicBaseURL: env("S3_PUBLIC_BASE_URL", ""),

		ImageKitPublicKey:  env("IMAGEKIT_PUBLIC_KEY", ""),
		ImageKitPrivateKey: env("IMAGEKIT_PRIVATE_KEY", ""),
		ImageKitTokenTTL:   tokenTTL(env("IMAGEKIT_TOKEN_TTL", "")),

		IdentityPublicKey: env("IDP_JWT_PUBLIC_KEY", ""),
		IdentitySecret:    env("IDP_JWT_SECRET", ""),
		IdentityIssuer:    env("IDP_ISSUER", ""),

		LocalUserName:     env("LOCAL_USER_NAME", ""),
		LocalUserPassword: env("LOCAL_USER_PASSWORD", ""),
		LocalUserImageURL: env("LOCAL_USER_IMAGE_URL", ""),
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// tokenTTL parses a lifetime in seconds; the CDN refuses tokens valid for more than an hour.
func tokenTTL(raw string) time.Duration {
	if raw == "" {
		return defaultImageKitTokenTTL
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultImageKitTokenTTL
	}
	ttl := time.Duration(seconds) * time.Second
	if ttl > maxImageKitTokenTTL {
		return maxImageKitTokenTTL
	}
	return ttl
}
