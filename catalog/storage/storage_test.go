package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCatalogState(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "foods only",
			filename: "foods.json",
			data:     []byte(`{"foods": [{"name": "lentils", "per_100g": {"calories": 116}}]}`),
		},
		{
			name:     "empty catalog",
			filename: "empty.json",
			data:     []byte(`{}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)
			require.NoError(t, os.WriteFile(filePath, tt.data, 0644))

			loaded, err := NewFileCatalogState(filePath).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.data, loaded)
		})
	}

	t.Run("load nonexistent catalog", func(t *testing.T) {
		_, err := NewFileCatalogState(filepath.Join(tmpDir, "missing.json")).Load(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

type mockS3 struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(m.body))}, nil
}

func TestS3CatalogState(t *testing.T) {
	t.Run("reads object", func(t *testing.T) {
		client := &mockS3{body: `{"foods": []}`}
		data, err := NewS3CatalogState(client, "bucket", "catalog.json").Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `{"foods": []}`, string(data))
		assert.Equal(t, "bucket", aws.ToString(client.input.Bucket))
		assert.Equal(t, "catalog.json", aws.ToString(client.input.Key))
	})

	t.Run("wraps errors", func(t *testing.T) {
		client := &mockS3{err: errors.New("access denied")}
		_, err := NewS3CatalogState(client, "bucket", "catalog.json").Load(context.Background())
		assert.ErrorContains(t, err, "s3://bucket/catalog.json")
	})
}

func TestTestCatalogState(t *testing.T) {
	data, err := NewTestCatalogState([]byte("{}")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), data)

	_, err = NewTestCatalogStateWithError().Load(context.Background())
	assert.Error(t, err)
}
