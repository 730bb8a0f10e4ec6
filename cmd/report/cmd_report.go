package report

import (
	"github.com/cloudcomb/ncp/cmd/report/costs"
	"github.com/cloudcomb/ncp/cmd/report/traffic"
	"github.com/spf13/cobra"
)

func NewReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:           "report",
		Short:         "Generate reports on the provisioned network estate",
		Long:          "Generate cost and traffic reports on the provisioned network estate of an environment.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}

	reportCmd.AddCommand(costs.NewReportCostsCmd())
	reportCmd.AddCommand(traffic.NewReportTrafficCmd())

	return reportCmd
}
