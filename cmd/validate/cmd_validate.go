package validate

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	manifestFile string
)

func NewValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:           "validate",
		Short:         "Validate an environment manifest offline",
		Long:          "Validate an environment manifest and its component specs without touching AWS: CIDR bounds and overlaps, list lengths, version pins, role and repository formats.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunValidate,
		RunE:          runValidate,
	}

	groups := map[*pflag.FlagSet]string{}

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&manifestFile, "manifest", types.DefaultManifestFile, "The path to the environment manifest.")
	validateCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	validateCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	return validateCmd
}

func preRunValidate(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts := ValidatorOpts{
		ManifestFile: manifestFile,
	}

	validator := NewValidator(opts)
	if err := validator.Run(); err != nil {
		return fmt.Errorf("failed to validate manifest: %w", err)
	}

	return nil
}
