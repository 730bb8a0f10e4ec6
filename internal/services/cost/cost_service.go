package cost

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	costexplorertypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/cloudcomb/ncp/internal/types"
)

// networkServices are the Cost Explorer service names the network estate
// shows up under. NAT gateway hours and data processing bill as "EC2 - Other".
var networkServices = []string{"Amazon Virtual Private Cloud", "EC2 - Other"}

type CostService struct {
	client *costexplorer.Client
}

func NewCostService(client *costexplorer.Client) *CostService {
	return &CostService{
		client: client,
	}
}

func (cs *CostService) GetCostsForTimeRange(ctx context.Context, region string, startDate time.Time, endDate time.Time, granularity costexplorertypes.Granularity, tags map[string][]string) (types.CostData, error) {
	slog.Info("💰 getting AWS costs", "region", region, "start", startDate, "end", endDate, "granularity", granularity, "tags", tags)

	startStr := aws.String(startDate.Format("2006-01-02"))
	endStr := aws.String(endDate.Format("2006-01-02"))

	if granularity == costexplorertypes.GranularityHourly {
		startStr = aws.String(startDate.Format("2006-01-02T00:00:00Z"))
		endStr = aws.String(endDate.Format("2006-01-02T00:00:00Z"))
	}

	// Collect all results across pages
	var allResults []costexplorertypes.ResultByTime
	var nextToken *string
	for {
		input := cs.buildCostExplorerInput(region, startStr, endStr, granularity, tags, nextToken)

		output, err := cs.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return types.CostData{}, fmt.Errorf("failed to get cost and usage: %v", err)
		}

		allResults = append(allResults, output.ResultsByTime...)

		if output.NextPageToken == nil {
			break
		}

		nextToken = output.NextPageToken
	}

	return cs.flattenResults(allResults), nil
}

func (cs *CostService) buildCostExplorerInput(region string, start, end *string, granularity costexplorertypes.Granularity, tags map[string][]string, nextToken *string) *costexplorer.GetCostAndUsageInput {
	filter := &costexplorertypes.Expression{
		And: []costexplorertypes.Expression{
			{
				Dimensions: &costexplorertypes.DimensionValues{
					Key:    costexplorertypes.DimensionRegion,
					Values: []string{region},
				},
			},
			{
				Dimensions: &costexplorertypes.DimensionValues{
					Key:    costexplorertypes.DimensionService,
					Values: networkServices,
				},
			},
		},
	}

	// https://docs.aws.amazon.com/aws-cost-management/latest/APIReference/API_GetDimensionValues.html#API_GetDimensionValues_RequestSyntax
	if len(tags) > 0 {
		for key, values := range tags {
			filter.And = append(filter.And, costexplorertypes.Expression{
				Tags: &costexplorertypes.TagValues{
					Key:    aws.String(key),
					Values: values,
				},
			})
		}
	}

	// GetCostAndUsage takes CamelCase metric names, not the SCREAMING_CASE
	// enum values the anomaly-monitor API uses.
	metrics := []string{"UnblendedCost", "UsageQuantity"}

	groupBy := []costexplorertypes.GroupDefinition{
		{
			Type: costexplorertypes.GroupDefinitionTypeDimension,
			Key:  aws.String(string(costexplorertypes.DimensionService)),
		},
		{
			Type: costexplorertypes.GroupDefinitionTypeDimension,
			Key:  aws.String(string(costexplorertypes.DimensionUsageType)),
		},
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &costexplorertypes.DateInterval{
			Start: start,
			End:   end,
		},
		Granularity: granularity,
		Filter:      filter,
		Metrics:     metrics,
		GroupBy:     groupBy,
	}

	if nextToken != nil {
		input.NextPageToken = nextToken
	}

	return input
}

// flattenResults turns paged Cost Explorer groups into flat cost rows and a
// running total. Rows whose amount fails to parse are skipped rather than
// failing the whole report.
func (cs *CostService) flattenResults(results []costexplorertypes.ResultByTime) types.CostData {
	costData := types.CostData{}

	for _, result := range results {
		if result.TimePeriod == nil {
			continue
		}

		start := aws.ToString(result.TimePeriod.Start)
		end := aws.ToString(result.TimePeriod.End)
		timestamp := parsePeriodStart(start)

		for _, group := range result.Groups {
			if len(group.Keys) < 2 || group.Metrics == nil {
				continue
			}

			unblendedCost, exists := group.Metrics["UnblendedCost"]
			if !exists || unblendedCost.Amount == nil {
				continue
			}

			amount, err := strconv.ParseFloat(aws.ToString(unblendedCost.Amount), 64)
			if err != nil {
				slog.Warn("⚠️ skipping cost row with unparseable amount", "amount", aws.ToString(unblendedCost.Amount), "service", group.Keys[0])
				continue
			}

			costData.Costs = append(costData.Costs, types.Cost{
				Timestamp:       timestamp,
				TimePeriodStart: start,
				TimePeriodEnd:   end,
				Service:         group.Keys[0],
				UsageType:       group.Keys[1],
				Cost:            amount,
			})
			costData.Total += amount
		}
	}

	return costData
}

func parsePeriodStart(start string) time.Time {
	if parsed, err := time.Parse("2006-01-02T15:04:05Z", start); err == nil {
		return parsed
	}
	if parsed, err := time.Parse("2006-01-02", start); err == nil {
		return parsed
	}
	return time.Time{}
}
