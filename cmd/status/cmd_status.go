package status

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/services/persistence"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	assetDir string
)

func NewStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:           "status",
		Short:         "Show the deployment state of a rendered environment",
		Long:          "Show where an environment sits in the render, preview, apply, destroy lifecycle, along with its pinned component versions and transition timestamps.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunStatus,
		RunE:          runStatus,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&assetDir, "asset-dir", "", "The asset directory of a rendered environment.")
	statusCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	statusCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		flagOrder := []*pflag.FlagSet{requiredFlags}
		groupNames := []string{"Required Flags"}

		for i, fs := range flagOrder {
			usage := fs.FlagUsages()
			if usage != "" {
				fmt.Printf("%s:\n%s\n", groupNames[i], usage)
			}
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	statusCmd.MarkFlagRequired("asset-dir")

	return statusCmd
}

func preRunStatus(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	opts, err := parseStatusOpts()
	if err != nil {
		return fmt.Errorf("❌ failed to parse status opts: %v", err)
	}

	statusPrinter := NewStatusPrinter(*opts)
	if err := statusPrinter.Run(); err != nil {
		return fmt.Errorf("❌ failed to show status: %v", err)
	}

	return nil
}

func parseStatusOpts() (*StatusPrinterOpts, error) {
	store := persistence.NewDeploymentStore(assetDir)
	if !store.Exists() {
		return nil, fmt.Errorf("no deployment state found in %s - run `ncp render` first", assetDir)
	}

	deployment, err := types.LoadDeployment(assetDir)
	if err != nil {
		return nil, err
	}

	opts := StatusPrinterOpts{
		AssetDir:   assetDir,
		Deployment: deployment,
	}

	return &opts, nil
}
