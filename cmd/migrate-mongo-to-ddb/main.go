// Command migrate-mongo-to-ddb copies the products collection into the
// DynamoDB products table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yashrajoria/catalog-import-service/database"
	"github.com/yashrajoria/catalog-import-service/logger"
	awspkg "github.com/yashrajoria/catalog-import-service/pkg/aws"
	"github.com/yashrajoria/catalog-import-service/repository"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Initialize(os.Getenv("APP_ENV"))
	defer func() { _ = zap.L().Sync() }()

	var mongoURI, dbName, table string
	var batch int
	flag.StringVar(&mongoURI, "mongo", os.Getenv("MONGO_URI"), "MongoDB URI")
	flag.StringVar(&dbName, "db", envOr("MONGO_DB", "catalog"), "MongoDB database name")
	flag.StringVar(&table, "table", envOr("DDB_TABLE_PRODUCTS", "Products"), "DynamoDB table name")
	flag.IntVar(&batch, "batch", 500, "products per page")
	flag.Parse()

	if mongoURI == "" {
		zap.L().Fatal("MONGO_URI must be set or provided via -mongo")
	}

	ctx := context.Background()
	client, db, err := database.Connect(ctx, mongoURI, dbName)
	if err != nil {
		zap.L().Fatal("Mongo connect failed", zap.Error(err))
	}
	defer func() { _ = database.Close(client) }()

	awsCfg, err := awspkg.LoadAWSConfig(ctx, awspkg.Settings{
		Region:          os.Getenv("AWS_REGION"),
		Endpoint:        os.Getenv("AWS_ENDPOINT"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		zap.L().Fatal("AWS config failed", zap.Error(err))
	}

	src := repository.NewProductRepository(db)
	dst := repository.NewDynamoAdapter(dynamodb.NewFromConfig(awsCfg), table)

	n, err := repository.CopyProducts(ctx, src, dst, batch)
	if err != nil {
		zap.L().Fatal("Migration failed", zap.Int("migrated", n), zap.Error(err))
	}
	fmt.Printf("Migration complete. migrated=%d\n", n)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
