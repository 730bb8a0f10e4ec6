package registry

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudcomb/ncp/internal/mocks"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"main.tf":             `resource "aws_vpc" "main" {}`,
		"outputs.tf":          `output "vpc_id" {}`,
		".terraform.lock.hcl": `provider "registry.terraform.io/hashicorp/aws" {}`,
		"README.md":           "# network",
		"tfplan":              "binary plan",
		"terraform.tfstate":   `{"outputs":{}}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.DeploymentStateFile), []byte(`{"environment":"staging"}`), 0644))

	// engine internals must not travel with the artifact
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".terraform", "providers"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".terraform", "providers", "plugin.bin"), []byte("binary"), 0644))

	return dir
}

func extractArchive(t *testing.T, archive []byte) map[string]string {
	t.Helper()

	gzipReader, err := gzip.NewReader(bytes.NewReader(archive))
	require.NoError(t, err)
	tarReader := tar.NewReader(gzipReader)

	entries := map[string]string{}
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tarReader)
		require.NoError(t, err)
		entries[header.Name] = string(data)
	}
	return entries
}

func TestPublishService_Publish(t *testing.T) {
	var uploadedKey string
	var uploadedBody []byte
	var uploadedContentType string

	uploader := &mocks.MockArtifactUploader{
		CheckBucketAccessFunc: func(ctx context.Context, bucket string) error {
			assert.Equal(t, "artifact-bucket", bucket)
			return nil
		},
		UploadFunc: func(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
			uploadedKey = key
			uploadedContentType = contentType
			data, err := io.ReadAll(body)
			require.NoError(t, err)
			uploadedBody = data
			return fmt.Sprintf("s3://%s/%s", bucket, key), nil
		},
	}

	service := NewPublishService(uploader)
	uri, err := service.Publish(context.Background(), PublishRequest{
		AssetDir:    testAssetDir(t),
		Component:   types.ComponentNetwork,
		Version:     "1.4.0",
		Bucket:      "artifact-bucket",
		Environment: "staging",
		RunId:       "11111111-2222-3333-4444-555555555555",
	})
	require.NoError(t, err)

	assert.Equal(t, "ncp-artifacts/network/1.4.0/staging.tar.gz", uploadedKey)
	assert.Equal(t, "s3://artifact-bucket/ncp-artifacts/network/1.4.0/staging.tar.gz", uri)
	assert.Equal(t, "application/gzip", uploadedContentType)

	entries := extractArchive(t, uploadedBody)

	// rendered files and the lock file travel, engine litter does not
	assert.Contains(t, entries, "main.tf")
	assert.Contains(t, entries, "outputs.tf")
	assert.Contains(t, entries, "README.md")
	assert.Contains(t, entries, ".terraform.lock.hcl")
	assert.NotContains(t, entries, "tfplan")
	assert.NotContains(t, entries, "terraform.tfstate")
	assert.NotContains(t, entries, types.DeploymentStateFile)
	for name := range entries {
		assert.NotContains(t, name, ".terraform/")
	}

	var manifest ArtifactManifest
	require.NoError(t, json.Unmarshal([]byte(entries["artifact.json"]), &manifest))
	assert.Equal(t, types.ComponentNetwork, manifest.Component)
	assert.Equal(t, "1.4.0", manifest.Version)
	assert.Equal(t, "staging", manifest.Environment)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", manifest.RunId)
	assert.NotEmpty(t, manifest.RenderedAt)
}

func TestPublishService_PublishWithPrefix(t *testing.T) {
	var uploadedKey string

	uploader := &mocks.MockArtifactUploader{
		CheckBucketAccessFunc: func(ctx context.Context, bucket string) error { return nil },
		UploadFunc: func(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
			uploadedKey = key
			return "s3://" + bucket + "/" + key, nil
		},
	}

	service := NewPublishService(uploader)
	_, err := service.Publish(context.Background(), PublishRequest{
		AssetDir:    testAssetDir(t),
		Component:   types.ComponentGithubOidc,
		Version:     "1.1.0",
		Bucket:      "artifact-bucket",
		Prefix:      "team/infra",
		Environment: "staging",
	})
	require.NoError(t, err)

	assert.Equal(t, "team/infra/ncp-artifacts/github-oidc/1.1.0/staging.tar.gz", uploadedKey)
}

func TestPublishService_BucketUnreachable(t *testing.T) {
	uploader := &mocks.MockArtifactUploader{
		CheckBucketAccessFunc: func(ctx context.Context, bucket string) error {
			return fmt.Errorf("access denied")
		},
		UploadFunc: func(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
			t.Fatal("upload must not run when the bucket check fails")
			return "", nil
		},
	}

	service := NewPublishService(uploader)
	_, err := service.Publish(context.Background(), PublishRequest{
		AssetDir:    testAssetDir(t),
		Component:   types.ComponentNetwork,
		Version:     "1.4.0",
		Bucket:      "artifact-bucket",
		Environment: "staging",
	})
	assert.ErrorContains(t, err, "access denied")
}

func TestPublishService_MissingAssetDir(t *testing.T) {
	uploader := &mocks.MockArtifactUploader{
		CheckBucketAccessFunc: func(ctx context.Context, bucket string) error { return nil },
		UploadFunc: func(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
			return "", nil
		},
	}

	service := NewPublishService(uploader)
	_, err := service.Publish(context.Background(), PublishRequest{
		AssetDir:    filepath.Join(t.TempDir(), "does-not-exist"),
		Component:   types.ComponentNetwork,
		Version:     "1.4.0",
		Bucket:      "artifact-bucket",
		Environment: "staging",
	})
	assert.Error(t, err)
}

func TestArtifactKey(t *testing.T) {
	assert.Equal(t, "ncp-artifacts/network/1.4.0/production.tar.gz",
		ArtifactKey(types.ComponentNetwork, "1.4.0", "production"))
}
