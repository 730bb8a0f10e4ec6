package preview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cloudcomb/ncp/internal/services/persistence"
	"github.com/cloudcomb/ncp/internal/services/terraform"
	"github.com/cloudcomb/ncp/internal/types"
)

type PreviewerOpts struct {
	AssetDir string
}

type Previewer struct {
	assetDir string
}

func NewPreviewer(opts PreviewerOpts) *Previewer {
	return &Previewer{
		assetDir: opts.AssetDir,
	}
}

func (p *Previewer) Run() error {
	ctx := context.Background()

	slog.Info("🏁 previewing deployment", "directory", p.assetDir)

	store := persistence.NewDeploymentStore(p.assetDir)
	if !store.Exists() {
		return fmt.Errorf("no deployment state found in %s - run `ncp render` first", p.assetDir)
	}

	deployment, err := types.LoadDeployment(p.assetDir)
	if err != nil {
		return err
	}

	if err := deployment.Transition(ctx, types.EventPreview); err != nil {
		return err
	}

	for _, component := range deployment.Components() {
		componentDir := filepath.Join(p.assetDir, component)

		runner, err := terraform.NewRunner(componentDir)
		if err != nil {
			return err
		}

		slog.Info("🚀 planning component", "component", component, "version", deployment.ComponentVersions[component])
		if err := runner.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s: %w", component, err)
		}
		if err := runner.Plan(ctx); err != nil {
			return fmt.Errorf("failed to plan %s: %w", component, err)
		}
	}

	if err := store.SaveWithRetry(deployment); err != nil {
		return err
	}

	slog.Info("✅ preview complete", "environment", deployment.Environment, "state", deployment.CurrentState)
	return nil
}
