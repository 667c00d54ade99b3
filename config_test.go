package main

import (
	"context"
	"errors"
	"testing"
	"time"

	awspkg "github.com/yashrajoria/catalog-import-service/pkg/aws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSecrets map[string]string

func (s staticSecrets) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "catalog", cfg.MongoDB)
	assert.Equal(t, 50, cfg.MaxUploadMB)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "redis://redis:6379", cfg.RedisURL)
	assert.False(t, cfg.usesAWS())
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	_, err := LoadConfig(context.Background(), nil)
	assert.ErrorContains(t, err, "API_KEY")

	t.Setenv("API_KEY", "k")
	t.Setenv("MONGO_URI", "")
	_, err = LoadConfig(context.Background(), nil)
	assert.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("STORE_BACKEND", "dynamodb")
	cfg, err := LoadConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, cfg.usesAWS())

	t.Setenv("STORE_BACKEND", "sqlite")
	_, err = LoadConfig(context.Background(), nil)
	assert.Error(t, err)

	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MAX_UPLOAD_MB", "lots")
	_, err = LoadConfig(context.Background(), nil)
	assert.ErrorContains(t, err, "MAX_UPLOAD_MB")
}

func TestLoadConfig_SecretsOverrideEnv(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "true")
	t.Setenv("API_KEY", "from-env")
	t.Setenv("MONGO_URI", "mongodb://env")

	secrets := func(context.Context, awspkg.Settings) (secretGetter, error) {
		return staticSecrets{"product/API_KEY": "from-secrets"}, nil
	}
	cfg, err := LoadConfig(context.Background(), secrets)
	require.NoError(t, err)
	assert.Equal(t, "from-secrets", cfg.APIKey)
	assert.Equal(t, "mongodb://env", cfg.MongoURI, "missing secret falls back to env")
}
