package costs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	costexplorertypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/cloudcomb/ncp/internal/types"
)

type CostService interface {
	GetCostsForTimeRange(ctx context.Context, region string, startDate, endDate time.Time, granularity costexplorertypes.Granularity, tags map[string][]string) (types.CostData, error)
}

type CostReporterOpts struct {
	Environment string
	Region      string
	StartDate   time.Time
	EndDate     time.Time
	Granularity costexplorertypes.Granularity
	Tags        map[string][]string
}

type CostReporter struct {
	costService CostService

	environment string
	region      string
	startDate   time.Time
	endDate     time.Time
	granularity costexplorertypes.Granularity
	tags        map[string][]string
}

func NewCostReporter(costService CostService, opts CostReporterOpts) *CostReporter {
	return &CostReporter{
		costService: costService,
		environment: opts.Environment,
		region:      opts.Region,
		startDate:   opts.StartDate,
		endDate:     opts.EndDate,
		granularity: opts.Granularity,
		tags:        opts.Tags,
	}
}

func (cr *CostReporter) Run() error {
	ctx := context.Background()

	slog.Info("💰 generating cost report", "environment", cr.environment, "region", cr.region, "start", cr.startDate.Format(time.DateOnly), "end", cr.endDate.Format(time.DateOnly), "granularity", cr.granularity)

	costData, err := cr.costService.GetCostsForTimeRange(ctx, cr.region, cr.startDate, cr.endDate, cr.granularity, cr.tags)
	if err != nil {
		return fmt.Errorf("failed to retrieve costs for region %s: %v", cr.region, err)
	}

	costReport := types.NewCostReport(cr.environment, cr.region, time.Now())
	costReport.CostData = costData
	costReport.StartDate = cr.startDate
	costReport.EndDate = cr.endDate
	costReport.Granularity = string(cr.granularity)
	costReport.Tags = cr.tags

	if err := costReport.WriteAsJson(); err != nil {
		return fmt.Errorf("failed to write cost report json: %v", err)
	}

	if err := costReport.WriteAsCSV(); err != nil {
		return fmt.Errorf("failed to write cost report csv: %v", err)
	}

	if err := costReport.WriteAsMarkdown(false); err != nil {
		return fmt.Errorf("failed to write cost report markdown: %v", err)
	}

	slog.Info("✅ cost report complete", "environment", cr.environment, "region", cr.region)

	return nil
}
