package costs

import (
	"context"
	"fmt"
	"strings"
	"time"

	costexplorertypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/cloudcomb/ncp/internal/client"
	"github.com/cloudcomb/ncp/internal/services/cost"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	environment string
	region      string

	start          string
	end            string
	lastWeek       bool
	lastThirtyDays bool

	granularity string
	tags        []string
)

func NewReportCostsCmd() *cobra.Command {
	reportCostsCmd := &cobra.Command{
		Use:           "costs",
		Short:         "Generate a cost report for the network estate of an environment",
		Long:          "Generate a Cost Explorer report covering VPC and NAT gateway spend (Amazon Virtual Private Cloud, EC2 - Other) in a region, optionally narrowed by cost allocation tags.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunReportCosts,
		RunE:          runReportCosts,
	}

	groups := map[*pflag.FlagSet]string{}

	requiredFlags := pflag.NewFlagSet("required", pflag.ExitOnError)
	requiredFlags.SortFlags = false
	requiredFlags.StringVar(&environment, "environment", "", "The environment name the report is for.")
	requiredFlags.StringVar(&region, "region", "", "The AWS region to report on.")
	reportCostsCmd.Flags().AddFlagSet(requiredFlags)
	groups[requiredFlags] = "Required Flags"

	timeRangeFlags := pflag.NewFlagSet("time-range", pflag.ExitOnError)
	timeRangeFlags.SortFlags = false
	timeRangeFlags.StringVar(&start, "start", "", "inclusive start date for cost report (YYYY-MM-DD)")
	timeRangeFlags.StringVar(&end, "end", "", "exclusive end date for cost report (YYYY-MM-DD)")
	timeRangeFlags.BoolVar(&lastWeek, "last-week", false, "generate cost report for the previous 7 days (not including today)")
	timeRangeFlags.BoolVar(&lastThirtyDays, "last-thirty-days", false, "generate cost report for the previous 30 days (not including today)")
	reportCostsCmd.Flags().AddFlagSet(timeRangeFlags)
	groups[timeRangeFlags] = "Time Range Flags"

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&granularity, "granularity", "MONTHLY", "The report granularity: DAILY or MONTHLY.")
	optionalFlags.StringSliceVar(&tags, "tag", []string{}, "Narrow costs to resources with this cost allocation tag, as key=value (repeatable; repeated keys collect multiple values).")
	reportCostsCmd.Flags().AddFlagSet(optionalFlags)
	groups[optionalFlags] = "Optional Flags"

	reportCostsCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		flagOrder := []*pflag.FlagSet{requiredFlags, timeRangeFlags, optionalFlags}
		groupNames := []string{"Required Flags", "Time Range Flags", "Optional Flags"}

		for i, fs := range flagOrder {
			usage := fs.FlagUsages()
			if usage != "" {
				fmt.Printf("%s:\n%s\n", groupNames[i], usage)
			}
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	reportCostsCmd.MarkFlagRequired("environment")
	reportCostsCmd.MarkFlagRequired("region")

	reportCostsCmd.MarkFlagsMutuallyExclusive("start", "last-week", "last-thirty-days")
	reportCostsCmd.MarkFlagsOneRequired("start", "last-week", "last-thirty-days")
	reportCostsCmd.MarkFlagsRequiredTogether("start", "end")

	return reportCostsCmd
}

func preRunReportCosts(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runReportCosts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opts, err := parseCostReporterOpts()
	if err != nil {
		return fmt.Errorf("❌ failed to parse report opts: %v", err)
	}

	costExplorerClient, err := client.NewCostExplorerClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create cost explorer client: %v", err)
	}

	costService := cost.NewCostService(costExplorerClient)

	costReporter := NewCostReporter(costService, *opts)
	if err := costReporter.Run(); err != nil {
		return fmt.Errorf("❌ failed to report costs: %v", err)
	}

	return nil
}

func parseCostReporterOpts() (*CostReporterOpts, error) {
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

	reportGranularity := costexplorertypes.Granularity(strings.ToUpper(granularity))
	if reportGranularity != costexplorertypes.GranularityDaily && reportGranularity != costexplorertypes.GranularityMonthly {
		return nil, fmt.Errorf("invalid granularity '%s': expected DAILY or MONTHLY", granularity)
	}

	tagFilters, err := parseTagFilters(tags)
	if err != nil {
		return nil, err
	}

	opts := CostReporterOpts{
		Environment: environment,
		Region:      region,
		StartDate:   startDate,
		EndDate:     endDate,
		Granularity: reportGranularity,
		Tags:        tagFilters,
	}

	return &opts, nil
}

// parseTagFilters collects repeated key=value entries, so `--tag team=net
// --tag team=infra` means team IN (net, infra).
func parseTagFilters(entries []string) (map[string][]string, error) {
	if len(entries) == 0 {
		return map[string][]string{}, nil
	}

	filters := make(map[string][]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid tag filter %q: expected key=value", entry)
		}
		filters[key] = append(filters[key], value)
	}
	return filters, nil
}
