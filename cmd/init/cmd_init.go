package init

import (
	"fmt"
	"os"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	outputFile string
	force      bool
)

func NewInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:           "init",
		Short:         "Interactively scaffold an environment manifest",
		Long:          "Walk through the environment questions (name, region, network layout, GitHub OIDC trust) and write the answers out as a manifest ready for `ncp render`.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunInit,
		RunE:          runInit,
	}

	groups := map[*pflag.FlagSet]string{}

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&outputFile, "output-file", types.DefaultManifestFile, "The file to write the manifest to.")
	optionalFlags.BoolVar(&force, "force", false, "Overwrite the output file if it already exists.")
	initCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	initCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	return initCmd
}

func preRunInit(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if !force {
		if _, err := os.Stat(outputFile); err == nil {
			return fmt.Errorf("❌ manifest %s already exists - pass --force to overwrite", outputFile)
		}
	}

	wizard := NewManifestWizard(outputFile)
	if err := wizard.Run(); err != nil {
		return fmt.Errorf("❌ failed to initialize manifest: %v", err)
	}

	return nil
}
