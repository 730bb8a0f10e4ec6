package registry

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudcomb/ncp/internal/build_info"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/google/uuid"
)

const (
	artifactKeyPrefix    = "ncp-artifacts"
	artifactManifestName = "artifact.json"
)

// ArtifactManifest travels inside every published archive so a downloaded
// artifact identifies itself without out-of-band context.
type ArtifactManifest struct {
	Component   string `json:"component"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	RunId       string `json:"run_id"`
	RenderedAt  string `json:"rendered_at"`
	NcpVersion  string `json:"ncp_version"`
	Commit      string `json:"commit"`
}

// ArtifactUploader is satisfied by the s3 service.
type ArtifactUploader interface {
	CheckBucketAccess(ctx context.Context, bucket string) error
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
}

type PublishService struct {
	uploader ArtifactUploader
}

func NewPublishService(uploader ArtifactUploader) *PublishService {
	return &PublishService{uploader: uploader}
}

type PublishRequest struct {
	AssetDir    string
	Component   string
	Version     string
	Bucket      string
	Prefix      string
	Environment string
	RunId       string
}

// ArtifactKey returns the object key a published artifact lands under.
func ArtifactKey(component, version, environment string) string {
	return fmt.Sprintf("%s/%s/%s/%s.tar.gz", artifactKeyPrefix, component, version, environment)
}

// Publish archives the rendered asset directory and uploads it. The bucket is
// checked for reachability before any bytes move. Returns the artifact's
// s3:// URI.
func (ps *PublishService) Publish(ctx context.Context, request PublishRequest) (string, error) {
	if request.RunId == "" {
		request.RunId = uuid.NewString()
	}

	archive, err := buildArchive(request)
	if err != nil {
		return "", err
	}

	if err := ps.uploader.CheckBucketAccess(ctx, request.Bucket); err != nil {
		return "", fmt.Errorf("❌ Failed to reach artifact bucket: %w", err)
	}

	key := ArtifactKey(request.Component, request.Version, request.Environment)
	if request.Prefix != "" {
		key = request.Prefix + "/" + key
	}
	uri, err := ps.uploader.Upload(ctx, request.Bucket, key, bytes.NewReader(archive), "application/gzip")
	if err != nil {
		return "", fmt.Errorf("❌ Failed to upload artifact: %w", err)
	}

	slog.Info("📦 published component artifact",
		"component", request.Component,
		"version", request.Version,
		"environment", request.Environment,
		"uri", uri,
		"bytes", len(archive),
	)

	return uri, nil
}

// buildArchive produces a tar.gz of the asset directory plus the artifact
// manifest. Engine litter (terraform dirs, plans, state) and the deployment
// state file stay out of the archive; the provider lock file stays in so a
// downloaded artifact inits reproducibly.
func buildArchive(request PublishRequest) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	manifest := ArtifactManifest{
		Component:   request.Component,
		Version:     request.Version,
		Environment: request.Environment,
		RunId:       request.RunId,
		RenderedAt:  time.Now().UTC().Format(time.RFC3339),
		NcpVersion:  build_info.Version,
		Commit:      build_info.Commit,
	}
	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact manifest: %w", err)
	}
	if err := writeTarFile(tarWriter, artifactManifestName, manifestData); err != nil {
		return nil, err
	}

	err = filepath.WalkDir(request.AssetDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".terraform" {
				return filepath.SkipDir
			}
			return nil
		}
		if skipArchiveFile(entry.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(request.AssetDir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		return writeTarFile(tarWriter, filepath.ToSlash(relPath), data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive %s: %w", request.AssetDir, err)
	}

	if err := tarWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

func skipArchiveFile(name string) bool {
	return name == types.DeploymentStateFile ||
		name == "tfplan" ||
		strings.HasSuffix(name, ".tfstate") ||
		strings.HasSuffix(name, ".tfstate.backup")
}

func writeTarFile(tarWriter *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write archive header for %s: %w", name, err)
	}
	if _, err := tarWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}
	return nil
}
