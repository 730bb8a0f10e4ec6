package network

import (
	"errors"
	"fmt"

	"github.com/cloudcomb/ncp/internal/services/manifest"
	"github.com/cloudcomb/ncp/internal/services/registry"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	region             string
	vpcCidr            string
	publicSubnetCidrs  []string
	privateSubnetCidrs []string
	availabilityZones  []string

	vpcName          string
	enableNatGateway bool
	componentVersion string
	tags             []string
	outputDir        string
)

func NewNetworkCmd() *cobra.Command {
	networkCmd := &cobra.Command{
		Use:           "network",
		Short:         "Generate a network component Terraform project",
		Long:          "Generate the Terraform project for a network component (VPC, paired public/private subnets, internet gateway, optional NAT gateways) from flags.",
		SilenceErrors: true,
		PreRunE:       preRunNetwork,
		RunE:          runNetwork,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&region, "region", "", "The AWS region the network is rendered for.")
	requiredFlags.StringVar(&vpcCidr, "vpc-cidr", "", "The CIDR block of the VPC (/16 to /28).")
	requiredFlags.StringSliceVar(&availabilityZones, "availability-zones", []string{}, "The availability zones to spread subnets across (comma separated list or repeated flag).")
	requiredFlags.StringSliceVar(&publicSubnetCidrs, "public-subnet-cidrs", []string{}, "The public subnet CIDRs, one per availability zone, in zone order.")
	requiredFlags.StringSliceVar(&privateSubnetCidrs, "private-subnet-cidrs", []string{}, "The private subnet CIDRs, one per availability zone, in zone order.")
	networkCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&vpcName, "vpc-name", "", "The name of the VPC, used in Name tags and resource naming.")
	optionalFlags.BoolVar(&enableNatGateway, "enable-nat-gateway", false, "Create one NAT gateway per availability zone for private subnet egress.")
	optionalFlags.StringVar(&componentVersion, "component-version", "", "The network component version to render (defaults to the latest supported version).")
	optionalFlags.StringSliceVar(&tags, "tags", []string{}, "Additional tags for every resource as key=value (comma separated list or repeated flag).")
	optionalFlags.StringVar(&outputDir, "output-dir", "", "The directory to output the network assets to.")
	networkCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	networkCmd.SetUsageFunc(func(c *cobra.Command) error {
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

	networkCmd.MarkFlagRequired("region")
	networkCmd.MarkFlagRequired("vpc-cidr")
	networkCmd.MarkFlagRequired("availability-zones")
	networkCmd.MarkFlagRequired("public-subnet-cidrs")
	networkCmd.MarkFlagRequired("private-subnet-cidrs")

	return networkCmd
}

func preRunNetwork(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runNetwork(cmd *cobra.Command, args []string) error {
	opts, err := parseNetworkOpts()
	if err != nil {
		return fmt.Errorf("failed to parse network options: %w", err)
	}

	generator := NewNetworkAssetGenerator(*opts)
	if err := generator.Run(); err != nil {
		return fmt.Errorf("failed to run network generator: %w", err)
	}

	return nil
}

func parseNetworkOpts() (*NetworkOpts, error) {
	if err := utils.ValidateRegion(region); err != nil {
		return nil, err
	}

	additionalTags, err := utils.ParseTagAssignments(tags)
	if err != nil {
		return nil, err
	}

	spec := types.NetworkSpec{
		VpcName:            vpcName,
		VpcCidr:            vpcCidr,
		PublicSubnetCidrs:  publicSubnetCidrs,
		PrivateSubnetCidrs: privateSubnetCidrs,
		AvailabilityZones:  availabilityZones,
		EnableNatGateway:   enableNatGateway,
		AdditionalTags:     additionalTags,
	}
	spec.Normalize("")

	if errs := manifest.ValidateNetworkSpec(&spec); len(errs) > 0 {
		return nil, fmt.Errorf("invalid network spec: %w", errors.Join(errs...))
	}

	registryService := registry.NewRegistryService()
	version, err := registryService.Resolve(types.ComponentNetwork, componentVersion)
	if err != nil {
		return nil, err
	}

	opts := NetworkOpts{
		Region:    region,
		Version:   version,
		OutputDir: outputDir,
		Spec:      spec,
	}

	return &opts, nil
}
