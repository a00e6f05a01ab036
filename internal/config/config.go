package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	LogFormat   string // "json" or "text"
	IDStrategy  string // "timestamp", "uuid" or "nanoid"

	Store     StoreConfig
	Storage   StorageConfig
	AWS       AWSConfig
	Resources ResourcesConfig
	Server    ServerConfig
}

// StoreConfig selects and configures the item store backend
type StoreConfig struct {
	Type             string // "dynamodb", "sqlite", "redis" or "memory"
	DynamoDBEndpoint string
	SQLitePath       string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// StorageConfig holds blob storage configuration
type StorageConfig struct {
	Type        string // "s3", "local" or "mock"
	LocalPath   string
	BaseURL     string
	S3Endpoint  string
	S3PathStyle bool
	S3Domain    string
}

// AWSConfig holds shared AWS client settings
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// ResourcesConfig names the table and bucket behind each resource
type ResourcesConfig struct {
	PostsTable      string
	CategoriesTable string
	ProfilesTable   string
	PostImageBucket string
	AvatarBucket    string
}

// ServerConfig holds settings for the local HTTP server
type ServerConfig struct {
	MaxBodyBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		IDStrategy:  v.GetString("ID_STRATEGY"),
		Store: StoreConfig{
			Type:             strings.ToLower(v.GetString("STORE_TYPE")),
			DynamoDBEndpoint: v.GetString("DYNAMODB_ENDPOINT"),
			SQLitePath:       v.GetString("SQLITE_PATH"),
			RedisAddr:        v.GetString("REDIS_ADDR"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Type:        strings.ToLower(v.GetString("STORAGE_TYPE")),
			LocalPath:   v.GetString("STORAGE_LOCAL_PATH"),
			BaseURL:     v.GetString("STORAGE_BASE_URL"),
			S3Endpoint:  v.GetString("S3_ENDPOINT"),
			S3PathStyle: v.GetBool("S3_USE_PATH_STYLE"),
			S3Domain:    v.GetString("S3_DOMAIN"),
		},
		AWS: AWSConfig{
			Region:          v.GetString("AWS_REGION"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		},
		Resources: ResourcesConfig{
			PostsTable:      v.GetString("POSTS_TABLE_NAME"),
			CategoriesTable: v.GetString("CATEGORIES_TABLE_NAME"),
			ProfilesTable:   v.GetString("PROFILES_TABLE_NAME"),
			PostImageBucket: v.GetString("POST_IMAGE_BUCKET_NAME"),
			AvatarBucket:    v.GetString("AVATAR_IMAGE_BUCKET_NAME"),
		},
		Server: ServerConfig{
			MaxBodyBytes:   v.GetInt64("MAX_BODY_BYTES"),
			RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	// Local uploads are served by the HTTP server under /files
	if config.Storage.Type == "local" && config.Storage.BaseURL == "" {
		config.Storage.BaseURL = fmt.Sprintf("http://localhost:%s/files", config.Port)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("ID_STRATEGY", "timestamp")

	v.SetDefault("STORE_TYPE", "sqlite")
	v.SetDefault("SQLITE_PATH", "./data/blog.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("STORAGE_TYPE", "local")
	v.SetDefault("STORAGE_LOCAL_PATH", "./data/files")
	v.SetDefault("S3_DOMAIN", "s3.amazonaws.com")
	v.SetDefault("S3_USE_PATH_STYLE", false)

	v.SetDefault("AWS_REGION", "us-east-1")

	v.SetDefault("POSTS_TABLE_NAME", "Posts")
	v.SetDefault("CATEGORIES_TABLE_NAME", "Categories")
	v.SetDefault("PROFILES_TABLE_NAME", "Profiles")
	v.SetDefault("POST_IMAGE_BUCKET_NAME", "post-images")
	v.SetDefault("AVATAR_IMAGE_BUCKET_NAME", "avatar-images")

	v.SetDefault("MAX_BODY_BYTES", 10<<20)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "dynamodb", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unsupported STORE_TYPE: %q", c.Store.Type)
	}

	switch c.Storage.Type {
	case "s3", "local", "mock":
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %q", c.Storage.Type)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %q", c.LogFormat)
	}

	return nil
}

// TableFor returns the configured table name for a resource
func (c *Config) TableFor(resource string) string {
	switch resource {
	case "post":
		return c.Resources.PostsTable
	case "category":
		return c.Resources.CategoriesTable
	case "profile":
		return c.Resources.ProfilesTable
	default:
		return resource
	}
}

// BucketFor returns the configured bucket for a resource's blobs, or ""
// when the resource has none.
func (c *Config) BucketFor(resource string) string {
	switch resource {
	case "post":
		return c.Resources.PostImageBucket
	case "profile":
		return c.Resources.AvatarBucket
	default:
		return ""
	}
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
