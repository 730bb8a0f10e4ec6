package apply

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/cloudcomb/ncp/internal/services/persistence"
	"github.com/cloudcomb/ncp/internal/services/terraform"
	"github.com/cloudcomb/ncp/internal/types"
)

type ApplierOpts struct {
	AssetDir string
}

type Applier struct {
	assetDir string
}

func NewApplier(opts ApplierOpts) *Applier {
	return &Applier{
		assetDir: opts.AssetDir,
	}
}

func (a *Applier) Run() error {
	ctx := context.Background()

	slog.Info("🏁 applying deployment", "directory", a.assetDir)

	store := persistence.NewDeploymentStore(a.assetDir)
	if !store.Exists() {
		return fmt.Errorf("no deployment state found in %s - run `ncp render` first", a.assetDir)
	}

	deployment, err := types.LoadDeployment(a.assetDir)
	if err != nil {
		return err
	}

	if err := deployment.Transition(ctx, types.EventApply); err != nil {
		return err
	}

	for _, component := range deployment.Components() {
		componentDir := filepath.Join(a.assetDir, component)

		runner, err := terraform.NewRunner(componentDir)
		if err != nil {
			return err
		}

		slog.Info("🚀 applying component", "component", component, "version", deployment.ComponentVersions[component])
		if err := runner.Apply(ctx); err != nil {
			return fmt.Errorf("failed to apply %s: %w", component, err)
		}

		outputs, err := runner.Output(ctx)
		if err != nil {
			return fmt.Errorf("failed to read %s outputs: %w", component, err)
		}
		for _, name := range slices.Sorted(maps.Keys(outputs)) {
			slog.Info("📤 output", "component", component, name, outputs[name])
		}
	}

	if err := store.SaveWithRetry(deployment); err != nil {
		return err
	}

	slog.Info("✅ apply complete", "environment", deployment.Environment, "state", deployment.CurrentState)
	return nil
}
