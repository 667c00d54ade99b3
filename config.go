package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	awspkg "github.com/yashrajoria/catalog-import-service/pkg/aws"
)

const (
	BackendMongo  = "mongo"
	BackendDynamo = "dynamodb"
)

// Config holds all environment settings for the service.
type Config struct {
	Port           string
	Env            string
	APIKey         string
	RequestTimeout time.Duration
	MaxUploadMB    int
	AllowedOrigins []string

	StoreBackend string
	MongoURI     string
	MongoDB      string
	DynamoTable  string
	RedisURL     string

	BulkStorageDir string
	BulkS3Bucket   string
	BulkS3Prefix   string
	EventsTopicArn string

	UseSecrets        bool
	CloudWatchEnabled bool
	LogGroup          string
	MetricsNamespace  string
	AWS               awspkg.Settings
}

type secretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadConfig reads the environment and validates it. secrets is consulted for
// API_KEY and MONGO_URI when AWS_USE_SECRETS=true; env values remain the fallback.
func LoadConfig(ctx context.Context, secrets func(ctx context.Context, s awspkg.Settings) (secretGetter, error)) (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		Env:            getEnv("APP_ENV", "development"),
		APIKey:         os.Getenv("API_KEY"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMongo)),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "catalog"),
		DynamoTable:  getEnv("DDB_TABLE_PRODUCTS", "Products"),
		RedisURL:     getEnv("REDIS_URL", "redis://redis:6379"),

		BulkStorageDir: getEnv("BULK_STORAGE_DIR", "./data/bulk_imports"),
		BulkS3Bucket:   os.Getenv("BULK_S3_BUCKET"),
		BulkS3Prefix:   getEnv("BULK_S3_PREFIX", "bulk_imports/"),
		EventsTopicArn: os.Getenv("PRODUCT_EVENTS_TOPIC_ARN"),

		UseSecrets:        os.Getenv("AWS_USE_SECRETS") == "true",
		CloudWatchEnabled: os.Getenv("CLOUDWATCH_ENABLED") == "true",
		LogGroup:          getEnv("CLOUDWATCH_LOG_GROUP", "/catalog/services"),
		MetricsNamespace:  getEnv("CLOUDWATCH_NAMESPACE", "CatalogImport"),
		AWS: awspkg.Settings{
			Region:          os.Getenv("AWS_REGION"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	var err error
	if cfg.MaxUploadMB, err = strconv.Atoi(getEnv("MAX_UPLOAD_MB", "50")); err != nil || cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer")
	}
	if cfg.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s")); err != nil || cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be a positive duration")
	}

	if cfg.UseSecrets && secrets != nil {
		if sm, err := secrets(ctx, cfg.AWS); err == nil {
			if v, err := sm.GetSecret(ctx, "product/API_KEY"); err == nil && v != "" {
				cfg.APIKey = v
			}
			if v, err := sm.GetSecret(ctx, "product/MONGO_URI"); err == nil && v != "" {
				cfg.MongoURI = v
			}
		}
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}
	switch cfg.StoreBackend {
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the %s backend", BackendMongo)
		}
	case BackendDynamo:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

// usesAWS reports whether any configured component needs an AWS client.
func (c *Config) usesAWS() bool {
	return c.StoreBackend == BackendDynamo || c.BulkS3Bucket != "" || c.EventsTopicArn != "" || c.CloudWatchEnabled
}

func awsSecrets(ctx context.Context, s awspkg.Settings) (secretGetter, error) {
	awsCfg, err := awspkg.LoadAWSConfig(ctx, s)
	if err != nil {
		return nil, err
	}
	return awspkg.NewSecretsClient(awsCfg), nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
