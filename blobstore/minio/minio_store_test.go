package minio

import (
	"context"
	"testing"

	"github.com/elasticjava/gaffer/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-gaffer"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	// Check if MinIO is reachable
	_, err = client.ListBuckets(ctx)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		require.NoError(t, err)
	}

	store := NewStore(client, bucket, "test-prefix/")
	var _ blobstore.ConditionalStore = store

	data := []byte(`{"entities":{}}`)
	require.NoError(t, store.Put(ctx, "schema.json", data))

	got, err := store.Get(ctx, "schema.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "schema.json")

	err = store.PutIfNotExists(ctx, "schema.json", data)
	assert.ErrorIs(t, err, blobstore.ErrExists)

	require.NoError(t, store.Delete(ctx, "schema.json"))

	_, err = store.Get(ctx, "schema.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
