package preview

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	assetDir string
)

func NewPreviewCmd() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:           "preview",
		Short:         "Preview a rendered deployment with the provisioning engine",
		Long:          "Run terraform init and plan over every component of a rendered deployment, leaving the plan files behind for apply. Refused unless the deployment has been rendered.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunPreview,
		RunE:          runPreview,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&assetDir, "asset-dir", "", "The asset directory of the rendered deployment.")
	previewCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	previewCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	previewCmd.MarkFlagRequired("asset-dir")

	return previewCmd
}

func preRunPreview(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	opts := PreviewerOpts{
		AssetDir: assetDir,
	}

	previewer := NewPreviewer(opts)
	if err := previewer.Run(); err != nil {
		return fmt.Errorf("failed to preview deployment: %w", err)
	}

	return nil
}
