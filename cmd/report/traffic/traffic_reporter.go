package traffic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudcomb/ncp/internal/types"
)

type TrafficService interface {
	GetNatGatewayTraffic(ctx context.Context, natGatewayIds []string, startTime, endTime time.Time) ([]types.NatGatewayTraffic, error)
}

type TrafficReporterOpts struct {
	Environment   string
	Region        string
	NatGatewayIds []string
	StartDate     time.Time
	EndDate       time.Time
}

type TrafficReporter struct {
	trafficService TrafficService

	environment   string
	region        string
	natGatewayIds []string
	startDate     time.Time
	endDate       time.Time
}

func NewTrafficReporter(trafficService TrafficService, opts TrafficReporterOpts) *TrafficReporter {
	return &TrafficReporter{
		trafficService: trafficService,
		environment:    opts.Environment,
		region:         opts.Region,
		natGatewayIds:  opts.NatGatewayIds,
		startDate:      opts.StartDate,
		endDate:        opts.EndDate,
	}
}

func (tr *TrafficReporter) Run() error {
	ctx := context.Background()

	slog.Info("📊 generating traffic report", "environment", tr.environment, "region", tr.region, "natGateways", len(tr.natGatewayIds), "start", tr.startDate.Format(time.DateOnly), "end", tr.endDate.Format(time.DateOnly))

	natGateways, err := tr.trafficService.GetNatGatewayTraffic(ctx, tr.natGatewayIds, tr.startDate, tr.endDate)
	if err != nil {
		return fmt.Errorf("failed to retrieve NAT gateway traffic: %v", err)
	}

	trafficReport := types.NewTrafficReport(tr.environment, tr.region, time.Now())
	trafficReport.StartDate = tr.startDate
	trafficReport.EndDate = tr.endDate
	trafficReport.NatGateways = natGateways

	if err := trafficReport.WriteAsJson(); err != nil {
		return fmt.Errorf("failed to write traffic report json: %v", err)
	}

	if err := trafficReport.WriteAsMarkdown(false); err != nil {
		return fmt.Errorf("failed to write traffic report markdown: %v", err)
	}

	slog.Info("✅ traffic report complete", "environment", tr.environment, "region", tr.region)

	return nil
}
