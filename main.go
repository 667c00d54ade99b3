package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yashrajoria/catalog-import-service/apperrors"
	"github.com/yashrajoria/catalog-import-service/controllers"
	"github.com/yashrajoria/catalog-import-service/database"
	"github.com/yashrajoria/catalog-import-service/logger"
	"github.com/yashrajoria/catalog-import-service/middleware"
	awspkg "github.com/yashrajoria/catalog-import-service/pkg/aws"
	"github.com/yashrajoria/catalog-import-service/repository"
	"github.com/yashrajoria/catalog-import-service/routes"
	"github.com/yashrajoria/catalog-import-service/services"
	"github.com/yashrajoria/catalog-import-service/storage"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const serviceName = "catalog-import-service"

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	log := logger.Initialize(os.Getenv("APP_ENV"))
	defer func() { _ = zap.L().Sync() }()

	ctx := context.Background()
	cfg, err := LoadConfig(ctx, awsSecrets)
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	// --- 1. Initialization ---

	var awsCfg sdkaws.Config
	if cfg.usesAWS() {
		awsCfg, err = awspkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			zap.L().Fatal("Failed to load AWS config", zap.Error(err))
		}
	}

	if cfg.CloudWatchEnabled {
		cwWriter, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.LogGroup, serviceName)
		if err != nil {
			zap.L().Warn("CloudWatch Logs unavailable, logging to stdout only", zap.Error(err))
		} else {
			log = logger.InitializeWithWriter(cfg.Env, cwWriter)
		}
	}
	metricsClient := awspkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, cfg.CloudWatchEnabled)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "redis:6379", DB: 0}
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("Redis not reachable at startup", zap.Error(err))
	}

	var mongoClient *mongo.Client
	var productRepo repository.ProductRepo
	switch cfg.StoreBackend {
	case BackendDynamo:
		ddbClient := dynamodb.NewFromConfig(awsCfg)
		productRepo = repository.NewDynamoAdapter(ddbClient, cfg.DynamoTable)
		zap.L().Info("Using DynamoDB product store", zap.String("table", cfg.DynamoTable))
	default:
		client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		mongoClient = client
		productRepo = repository.NewProductRepository(db)
	}

	blobs, err := newBlobStore(cfg, awsCfg)
	if err != nil {
		zap.L().Fatal("Failed to initialise bulk payload storage", zap.Error(err))
	}

	// --- 2. Dependency Injection ---

	docValidator := repository.NewDocumentValidator()
	var events services.EventPublisher
	if cfg.EventsTopicArn != "" {
		events = services.NewSNSEventPublisher(awspkg.NewSNSClient(awsCfg), cfg.EventsTopicArn)
	}
	pipeline := services.NewPipeline(
		repository.NewRecordStore(productRepo, docValidator),
		services.NewIngestionMetrics(metricsClient, serviceName),
		events,
	)
	importJobs := services.NewImportJobs(repository.NewRedisJobQueue(rdb), repository.NewRedisJobStore(rdb), blobs)
	productService := services.NewProductService(productRepo, docValidator)

	cache := controllers.NewCacheManager(rdb)
	requestValidator := controllers.NewRequestValidator(cfg.MaxUploadMB)
	productController := controllers.NewProductController(productService, cache, requestValidator)
	bulkHandler := controllers.NewBulkImportHandler(pipeline, importJobs, cache, requestValidator)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		services.NewWorker(importJobs, pipeline, cache).Run(workerCtx)
	}()

	// --- 3. HTTP Server & Middleware ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(100, 50))
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, productController, bulkHandler, middleware.APIKeyAuth(cfg.APIKey))

	// --- 4. Graceful Shutdown ---

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Catalog import service starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down catalog import service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}
	stopWorker()
	workers.Wait()

	if err := rdb.Close(); err != nil {
		zap.L().Error("Failed to close Redis", zap.Error(err))
	}
	if err := database.Close(mongoClient); err != nil {
		zap.L().Error("Failed to close MongoDB", zap.Error(err))
	}
	zap.L().Info("Catalog import service stopped gracefully")
}

// newBlobStore returns the S3 store when a bucket is configured and a local
// directory store otherwise.
func newBlobStore(cfg *Config, awsCfg sdkaws.Config) (storage.BlobStore, error) {
	if cfg.BulkS3Bucket != "" {
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
		})
		zap.L().Info("Using S3 bulk payload store", zap.String("bucket", cfg.BulkS3Bucket))
		return storage.NewS3Store(client, cfg.BulkS3Bucket, cfg.BulkS3Prefix), nil
	}
	return storage.NewLocalStore(cfg.BulkStorageDir)
}
