package publish

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cloudcomb/ncp/internal/services/registry"
	"github.com/cloudcomb/ncp/internal/types"
)

type PublisherOpts struct {
	AssetDir   string
	Bucket     string
	Prefix     string
	Components []string
	Deployment *types.Deployment
}

type Publisher struct {
	publishService *registry.PublishService

	assetDir   string
	bucket     string
	prefix     string
	components []string
	deployment *types.Deployment
}

func NewPublisher(uploader registry.ArtifactUploader, opts PublisherOpts) *Publisher {
	return &Publisher{
		publishService: registry.NewPublishService(uploader),
		assetDir:       opts.AssetDir,
		bucket:         opts.Bucket,
		prefix:         opts.Prefix,
		components:     opts.Components,
		deployment:     opts.Deployment,
	}
}

func (p *Publisher) Run() error {
	ctx := context.Background()

	slog.Info("🏁 publishing artifacts", "environment", p.deployment.Environment, "bucket", p.bucket, "components", p.components)

	for _, component := range p.components {
		uri, err := p.publishService.Publish(ctx, registry.PublishRequest{
			AssetDir:    filepath.Join(p.assetDir, component),
			Component:   component,
			Version:     p.deployment.ComponentVersions[component],
			Bucket:      p.bucket,
			Prefix:      p.prefix,
			Environment: p.deployment.Environment,
			RunId:       p.deployment.RunId,
		})
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", component, err)
		}

		slog.Info("✅ artifact published", "component", component, "uri", uri)
	}

	return nil
}
