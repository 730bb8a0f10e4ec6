package cost

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	costexplorertypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostService_FlattenResults(t *testing.T) {
	cs := NewCostService(nil)

	results := []costexplorertypes.ResultByTime{
		{
			// result without a time period is skipped entirely
			Groups: []costexplorertypes.Group{
				{
					Keys:    []string{"Amazon Virtual Private Cloud", "NatGateway-Hours"},
					Metrics: map[string]costexplorertypes.MetricValue{"UnblendedCost": {Amount: aws.String("99.99")}},
				},
			},
		},
		{
			TimePeriod: &costexplorertypes.DateInterval{
				Start: aws.String("2026-07-01"),
				End:   aws.String("2026-08-01"),
			},
			Groups: []costexplorertypes.Group{
				{
					Keys:    []string{"Amazon Virtual Private Cloud", "NatGateway-Hours"},
					Metrics: map[string]costexplorertypes.MetricValue{"UnblendedCost": {Amount: aws.String("32.40")}},
				},
				{
					Keys:    []string{"EC2 - Other", "NatGateway-Bytes"},
					Metrics: map[string]costexplorertypes.MetricValue{"UnblendedCost": {Amount: aws.String("12.10")}},
				},
				{
					// unparseable amount is skipped, not fatal
					Keys:    []string{"EC2 - Other", "DataTransfer-Regional-Bytes"},
					Metrics: map[string]costexplorertypes.MetricValue{"UnblendedCost": {Amount: aws.String("not-a-number")}},
				},
				{
					// group missing the usage type key
					Keys:    []string{"EC2 - Other"},
					Metrics: map[string]costexplorertypes.MetricValue{"UnblendedCost": {Amount: aws.String("5.00")}},
				},
				{
					// group without an UnblendedCost metric
					Keys:    []string{"EC2 - Other", "VpcEndpoint-Hours"},
					Metrics: map[string]costexplorertypes.MetricValue{"UsageQuantity": {Amount: aws.String("720")}},
				},
			},
		},
	}

	costData := cs.flattenResults(results)

	require.Len(t, costData.Costs, 2)
	assert.InDelta(t, 44.50, costData.Total, 0.0001)

	first := costData.Costs[0]
	assert.Equal(t, "Amazon Virtual Private Cloud", first.Service)
	assert.Equal(t, "NatGateway-Hours", first.UsageType)
	assert.Equal(t, "2026-07-01", first.TimePeriodStart)
	assert.Equal(t, "2026-08-01", first.TimePeriodEnd)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.InDelta(t, 32.40, first.Cost, 0.0001)

	second := costData.Costs[1]
	assert.Equal(t, "EC2 - Other", second.Service)
	assert.Equal(t, "NatGateway-Bytes", second.UsageType)
	assert.InDelta(t, 12.10, second.Cost, 0.0001)
}

func TestCostService_FlattenResultsEmpty(t *testing.T) {
	cs := NewCostService(nil)

	costData := cs.flattenResults(nil)

	assert.Empty(t, costData.Costs)
	assert.Zero(t, costData.Total)
}

func TestCostService_BuildCostExplorerInput(t *testing.T) {
	cs := NewCostService(nil)

	input := cs.buildCostExplorerInput("eu-west-2", aws.String("2026-07-01"), aws.String("2026-08-01"), costexplorertypes.GranularityMonthly, nil, nil)

	assert.Equal(t, "2026-07-01", aws.ToString(input.TimePeriod.Start))
	assert.Equal(t, "2026-08-01", aws.ToString(input.TimePeriod.End))
	assert.Equal(t, costexplorertypes.GranularityMonthly, input.Granularity)
	assert.Equal(t, []string{"UnblendedCost", "UsageQuantity"}, input.Metrics)
	assert.Nil(t, input.NextPageToken)

	require.Len(t, input.GroupBy, 2)
	assert.Equal(t, "SERVICE", aws.ToString(input.GroupBy[0].Key))
	assert.Equal(t, "USAGE_TYPE", aws.ToString(input.GroupBy[1].Key))

	// region and service dimensions are always present
	require.NotNil(t, input.Filter)
	require.Len(t, input.Filter.And, 2)

	regionFilter := input.Filter.And[0].Dimensions
	require.NotNil(t, regionFilter)
	assert.Equal(t, costexplorertypes.DimensionRegion, regionFilter.Key)
	assert.Equal(t, []string{"eu-west-2"}, regionFilter.Values)

	serviceFilter := input.Filter.And[1].Dimensions
	require.NotNil(t, serviceFilter)
	assert.Equal(t, costexplorertypes.DimensionService, serviceFilter.Key)
	assert.Equal(t, []string{"Amazon Virtual Private Cloud", "EC2 - Other"}, serviceFilter.Values)
}

func TestCostService_BuildCostExplorerInputWithTags(t *testing.T) {
	cs := NewCostService(nil)

	tags := map[string][]string{
		"team":        {"networking", "platform"},
		"cost_center": {"cc-123"},
	}
	input := cs.buildCostExplorerInput("eu-west-2", aws.String("2026-07-01"), aws.String("2026-08-01"), costexplorertypes.GranularityDaily, tags, aws.String("page-2"))

	assert.Equal(t, "page-2", aws.ToString(input.NextPageToken))

	// one tag expression per key on top of the two dimension filters
	require.Len(t, input.Filter.And, 4)

	tagFilters := map[string][]string{}
	for _, expression := range input.Filter.And[2:] {
		require.NotNil(t, expression.Tags)
		tagFilters[aws.ToString(expression.Tags.Key)] = expression.Tags.Values
	}
	assert.Equal(t, tags, tagFilters)
}

func TestParsePeriodStart(t *testing.T) {
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), parsePeriodStart("2026-07-01"))
	assert.Equal(t, time.Date(2026, 7, 1, 13, 0, 0, 0, time.UTC), parsePeriodStart("2026-07-01T13:00:00Z"))
	assert.True(t, parsePeriodStart("whenever").IsZero())
}
