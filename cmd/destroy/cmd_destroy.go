package destroy

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	assetDir    string
	autoApprove bool
)

func NewDestroyCmd() *cobra.Command {
	destroyCmd := &cobra.Command{
		Use:           "destroy",
		Short:         "Destroy an applied deployment with the provisioning engine",
		Long:          "Run terraform destroy over every component of an applied deployment, in reverse render order. Refused unless the deployment has been applied.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunDestroy,
		RunE:          runDestroy,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&assetDir, "asset-dir", "", "The asset directory of the applied deployment.")
	destroyCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.BoolVar(&autoApprove, "auto-approve", false, "Destroy without interactive confirmation.")
	destroyCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	destroyCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		flagOrder := []*pflag.FlagSet{requiredFlags, optionalFlags}
		groupNames := []string{"Required Flags", "Optional Flags"}

		for i, fs := range flagOrder {
			usage := fs.FlagUsages()
			if usage != "" {
				fmt.Printf("%s:\n%s\n", groupNames[i], usage)
			}
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	destroyCmd.MarkFlagRequired("asset-dir")

	return destroyCmd
}

func preRunDestroy(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runDestroy(cmd *cobra.Command, args []string) error {
	opts := DestroyerOpts{
		AssetDir:    assetDir,
		AutoApprove: autoApprove,
	}

	destroyer := NewDestroyer(opts)
	if err := destroyer.Run(); err != nil {
		return fmt.Errorf("failed to destroy deployment: %w", err)
	}

	return nil
}
