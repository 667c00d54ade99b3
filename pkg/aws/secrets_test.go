package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	values map[string]string
	calls  int
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	v, ok := f.values[*in.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(v)}, nil
}

func TestSecretsClient_Caches(t *testing.T) {
	api := &fakeSecrets{values: map[string]string{"product/API_KEY": "k"}}
	sc := newSecretsClient(api)

	for range 2 {
		v, err := sc.GetSecret(context.Background(), "product/API_KEY")
		require.NoError(t, err)
		assert.Equal(t, "k", v)
	}
	assert.Equal(t, 1, api.calls)

	_, err := sc.GetSecret(context.Background(), "product/MISSING")
	assert.Error(t, err)
}

func TestMetricsClient_DisabledIsNoop(t *testing.T) {
	var nilClient *MetricsClient
	assert.NoError(t, nilClient.RecordCount(context.Background(), MetricHTTPRequests, nil))
	assert.False(t, nilClient.IsEnabled())

	m := NewMetricsClient(sdkaws.Config{}, "", false)
	assert.NoError(t, m.RecordCountValue(context.Background(), MetricProductsImported, 3, map[string]string{"Service": "x"}))
}
