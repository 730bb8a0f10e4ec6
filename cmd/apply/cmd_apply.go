package apply

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	assetDir string
)

func NewApplyCmd() *cobra.Command {
	applyCmd := &cobra.Command{
		Use:           "apply",
		Short:         "Apply a previewed deployment with the provisioning engine",
		Long:          "Run terraform apply over every component of a previewed deployment, consuming the plan files written by preview. Refused unless the deployment has been previewed.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunApply,
		RunE:          runApply,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&assetDir, "asset-dir", "", "The asset directory of the previewed deployment.")
	applyCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	applyCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	applyCmd.MarkFlagRequired("asset-dir")

	return applyCmd
}

func preRunApply(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	opts := ApplierOpts{
		AssetDir: assetDir,
	}

	applier := NewApplier(opts)
	if err := applier.Run(); err != nil {
		return fmt.Errorf("failed to apply deployment: %w", err)
	}

	return nil
}
