package traffic

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cloudcomb/ncp/internal/client"
	"github.com/cloudcomb/ncp/internal/services/traffic"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	environment string
	region      string

	assetDir      string
	natGatewayIds []string

	start          string
	end            string
	lastWeek       bool
	lastThirtyDays bool
)

func NewReportTrafficCmd() *cobra.Command {
	reportTrafficCmd := &cobra.Command{
		Use:           "traffic",
		Short:         "Generate a NAT gateway traffic report for an environment",
		Long:          "Generate a CloudWatch traffic report (bytes out, bytes in, peak active connections) for the NAT gateways of an environment, resolved from rendered asset state or passed explicitly.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunReportTraffic,
		RunE:          runReportTraffic,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&environment, "environment", "", "The environment name the report is for.")
	requiredFlags.StringVar(&region, "region", "", "The AWS region to report on.")
	reportTrafficCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	natSourceFlags := pflag.NewFlagSet("nat-source", pflag.ExitOnError)
	natSourceFlags.SortFlags = false
	natSourceFlags.StringVar(&assetDir, "asset-dir", "", "The asset directory of an applied environment, NAT gateway ids are read from its network state outputs.")
	natSourceFlags.StringSliceVar(&natGatewayIds, "nat-gateway-ids", []string{}, "Explicit NAT gateway ids to report on (comma separated).")
	reportTrafficCmd.Flags().AddFlagSet(natSourceFlags)
	groups[natSourceFlags] = "NAT Gateway Source Flags"

	timeRangeFlags := pflag.NewFlagSet("time-range", pflag.ExitOnError)
	timeRangeFlags.SortFlags = false
	timeRangeFlags.StringVar(&start, "start", "", "inclusive start date for traffic report (YYYY-MM-DD)")
	timeRangeFlags.StringVar(&end, "end", "", "exclusive end date for traffic report (YYYY-MM-DD)")
	timeRangeFlags.BoolVar(&lastWeek, "last-week", false, "generate traffic report for the previous 7 days (not including today)")
	timeRangeFlags.BoolVar(&lastThirtyDays, "last-thirty-days", false, "generate traffic report for the previous 30 days (not including today)")
	reportTrafficCmd.Flags().AddFlagSet(timeRangeFlags)
	groups[timeRangeFlags] = "Time Range Flags"

	reportTrafficCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		flagOrder := []*pflag.FlagSet{requiredFlags, natSourceFlags, timeRangeFlags}
		groupNames := []string{"Required Flags", "NAT Gateway Source Flags", "Time Range Flags"}

		for i, fs := range flagOrder {
			usage := fs.FlagUsages()
			if usage != "" {
				fmt.Printf("%s:\n%s\n", groupNames[i], usage)
			}
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	reportTrafficCmd.MarkFlagRequired("environment")
	reportTrafficCmd.MarkFlagRequired("region")

	reportTrafficCmd.MarkFlagsMutuallyExclusive("asset-dir", "nat-gateway-ids")
	reportTrafficCmd.MarkFlagsOneRequired("asset-dir", "nat-gateway-ids")

	reportTrafficCmd.MarkFlagsMutuallyExclusive("start", "last-week", "last-thirty-days")
	reportTrafficCmd.MarkFlagsOneRequired("start", "last-week", "last-thirty-days")
	reportTrafficCmd.MarkFlagsRequiredTogether("start", "end")

	return reportTrafficCmd
}

func preRunReportTraffic(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runReportTraffic(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opts, err := parseTrafficReporterOpts()
	if err != nil {
		return fmt.Errorf("❌ failed to parse report opts: %v", err)
	}

	cloudWatchClient, err := client.NewCloudWatchClient(ctx, opts.Region)
	if err != nil {
		return fmt.Errorf("failed to create cloudwatch client: %v", err)
	}

	trafficService := traffic.NewTrafficService(cloudWatchClient)

	trafficReporter := NewTrafficReporter(trafficService, *opts)
	if err := trafficReporter.Run(); err != nil {
		return fmt.Errorf("❌ failed to report traffic: %v", err)
	}

	return nil
}

func parseTrafficReporterOpts() (*TrafficReporterOpts, error) {
	if err := utils.ValidateRegion(region); err != nil {
		return nil, err
	}

	const dateFormat = "2006-01-02"
	var startDate, endDate time.Time
	var err error

	switch {
	case start != "" && end != "":
		startDate, err = time.Parse(dateFormat, start)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format '%s': expected YYYY-MM-DD", start)
		}

		endDate, err = time.Parse(dateFormat, end)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format '%s': expected YYYY-MM-DD", end)
		}

		if startDate.After(endDate) {
			return nil, fmt.Errorf("start date '%s' cannot be after end date '%s'", start, end)
		}

	case lastWeek:
		now := time.Now().UTC().Truncate(24 * time.Hour)
		startDate = now.AddDate(0, 0, -7)
		endDate = now

	case lastThirtyDays:
		now := time.Now().UTC().Truncate(24 * time.Hour)
		startDate = now.AddDate(0, 0, -30)
		endDate = now
	}

	gatewayIds := natGatewayIds
	if assetDir != "" {
		gatewayIds, err = natGatewayIdsFromState(assetDir)
		if err != nil {
			return nil, err
		}
	}

	opts := TrafficReporterOpts{
		Environment:   environment,
		Region:        region,
		NatGatewayIds: gatewayIds,
		StartDate:     startDate,
		EndDate:       endDate,
	}

	return &opts, nil
}

func natGatewayIdsFromState(assetDir string) ([]string, error) {
	terraformState, err := utils.ParseTerraformState(filepath.Join(assetDir, types.ComponentNetwork))
	if err != nil {
		return nil, fmt.Errorf("failed to read network state in %s, has the environment been applied: %v", assetDir, err)
	}

	gatewayIds, ok := terraformState.StringListOutput("nat_gateway_ids")
	if !ok || len(gatewayIds) == 0 {
		return nil, fmt.Errorf("no nat_gateway_ids output in %s, the network was rendered without NAT gateways", assetDir)
	}

	return gatewayIds, nil
}
