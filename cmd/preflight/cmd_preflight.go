package preflight

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudcomb/ncp/internal/client"
	"github.com/cloudcomb/ncp/internal/services/ec2"
	"github.com/cloudcomb/ncp/internal/services/iam"
	"github.com/cloudcomb/ncp/internal/services/manifest"
	"github.com/cloudcomb/ncp/internal/services/preflight"
	"github.com/cloudcomb/ncp/internal/services/registry"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	manifestFile string
)

func NewPreflightCmd() *cobra.Command {
	preflightCmd := &cobra.Command{
		Use:           "preflight",
		Short:         "Check an environment manifest against the live AWS account",
		Long:          "Run read-only checks against the target AWS account before previewing or applying: caller identity, availability zones, VPC CIDR overlaps, OIDC provider and role name conflicts, managed policy resolution.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunPreflight,
		RunE:          runPreflight,
	}

	groups := map[*pflag.FlagSet]string{}

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&manifestFile, "manifest", types.DefaultManifestFile, "The path to the environment manifest.")
	preflightCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	preflightCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	return preflightCmd
}

func preRunPreflight(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runPreflight(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opts, err := parsePreflightOpts()
	if err != nil {
		return fmt.Errorf("failed to parse preflight options: %w", err)
	}

	ec2Client, err := client.NewEC2Client(ctx, opts.Manifest.Region, 8, 1) // DescribeVpcs pages count against the EC2 token bucket, stay well under it.
	if err != nil {
		return fmt.Errorf("failed to create ec2 client: %w", err)
	}

	iamClient, err := client.NewIAMClient(ctx, opts.Manifest.Region)
	if err != nil {
		return fmt.Errorf("failed to create iam client: %w", err)
	}

	stsClient, err := client.NewSTSClient(ctx, opts.Manifest.Region)
	if err != nil {
		return fmt.Errorf("failed to create sts client: %w", err)
	}

	preflightService := preflight.NewPreflightService(
		ec2.NewEC2Service(ec2Client),
		iam.NewIAMService(iamClient),
		stsClient,
	)

	runner := NewPreflightRunner(preflightService, *opts)
	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run preflight checks: %w", err)
	}

	return nil
}

func parsePreflightOpts() (*PreflightRunnerOpts, error) {
	environmentManifest, err := manifest.LoadManifest(manifestFile)
	if err != nil {
		return nil, err
	}

	registryService := registry.NewRegistryService()
	if err := manifest.ApplyDefaults(environmentManifest, registryService); err != nil {
		return nil, err
	}

	valid, errs := manifest.ValidateManifest(environmentManifest, registryService)
	if !valid {
		return nil, fmt.Errorf("manifest %s is invalid, fix it before preflighting: %w", manifestFile, errors.Join(errs...))
	}

	opts := PreflightRunnerOpts{
		Manifest: environmentManifest,
	}

	return &opts, nil
}
