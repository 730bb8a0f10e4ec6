package render

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	manifestFile string
	outputDir    string
)

func NewRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:           "render",
		Short:         "Render all components of an environment manifest",
		Long:          "Render every component declared in the environment manifest into a Terraform asset directory, and record the deployment as rendered. Rendering is deterministic and touches nothing in AWS.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunRender,
		RunE:          runRender,
	}

	groups := map[*pflag.FlagSet]string{}

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&manifestFile, "manifest", types.DefaultManifestFile, "The path to the environment manifest.")
	optionalFlags.StringVar(&outputDir, "output-dir", "", "The directory to render assets into (defaults to ncp-assets/<environment>).")
	renderCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	renderCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		flagOrder := []*pflag.FlagSet{optionalFlags}
		groupNames := []string{"Optional Flags"}

		for i, fs := range flagOrder {
			usage := fs.FlagUsages()
			if usage != "" {
				fmt.Printf("%s:\n%s\n", groupNames[i], usage)
			}
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	return renderCmd
}

func preRunRender(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	opts := RendererOpts{
		ManifestFile: manifestFile,
		OutputDir:    outputDir,
	}

	renderer := NewRenderer(opts)
	if err := renderer.Run(); err != nil {
		return fmt.Errorf("failed to render environment: %w", err)
	}

	return nil
}
