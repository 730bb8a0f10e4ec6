package destroy

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cloudcomb/ncp/internal/services/persistence"
	"github.com/cloudcomb/ncp/internal/services/terraform"
	"github.com/cloudcomb/ncp/internal/types"
)

type DestroyerOpts struct {
	AssetDir    string
	AutoApprove bool
}

type Destroyer struct {
	assetDir    string
	autoApprove bool
}

func NewDestroyer(opts DestroyerOpts) *Destroyer {
	return &Destroyer{
		assetDir:    opts.AssetDir,
		autoApprove: opts.AutoApprove,
	}
}

func (d *Destroyer) Run() error {
	ctx := context.Background()

	slog.Info("🏁 destroying deployment", "directory", d.assetDir)

	store := persistence.NewDeploymentStore(d.assetDir)
	if !store.Exists() {
		return fmt.Errorf("no deployment state found in %s", d.assetDir)
	}

	deployment, err := types.LoadDeployment(d.assetDir)
	if err != nil {
		return err
	}

	if !d.autoApprove && !d.askForConfirmation(fmt.Sprintf("🤔 Destroy all resources of environment %q? (y/N): ", deployment.Environment)) {
		slog.Warn("🚫 Destroy aborted")
		return nil
	}

	if err := deployment.Transition(ctx, types.EventDestroy); err != nil {
		return err
	}

	// Components come down in reverse render order.
	components := deployment.Components()
	slices.Reverse(components)

	for _, component := range components {
		componentDir := filepath.Join(d.assetDir, component)

		runner, err := terraform.NewRunner(componentDir)
		if err != nil {
			return err
		}

		slog.Info("🚀 destroying component", "component", component, "version", deployment.ComponentVersions[component])
		if err := runner.Destroy(ctx); err != nil {
			return fmt.Errorf("failed to destroy %s: %w", component, err)
		}
	}

	if err := store.SaveWithRetry(deployment); err != nil {
		return err
	}

	slog.Info("✅ destroy complete", "environment", deployment.Environment, "state", deployment.CurrentState)
	return nil
}

func (d *Destroyer) askForConfirmation(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))

	return response == "y" || response == "yes"
}
