package traffic

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cloudwatchtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/cloudcomb/ncp/internal/types"
)

const (
	natGatewayNamespace = "AWS/NATGateway"

	// GetMetricData accepts at most 500 queries per call.
	maxQueriesPerCall = 500
)

// natMetrics lists the CloudWatch metrics collected per NAT gateway. Byte
// counters are summed over the window, the connection count is reported as
// the peak observed value.
var natMetrics = []struct {
	MetricName string
	IdPrefix   string
	Stat       string
}{
	{MetricName: "BytesOutToDestination", IdPrefix: "bytes_out", Stat: "Sum"},
	{MetricName: "BytesInFromSource", IdPrefix: "bytes_in", Stat: "Sum"},
	{MetricName: "ActiveConnectionCount", IdPrefix: "active_conn", Stat: "Maximum"},
}

type TrafficService struct {
	client *cloudwatch.Client
}

func NewTrafficService(cloudwatchClient *cloudwatch.Client) *TrafficService {
	return &TrafficService{
		client: cloudwatchClient,
	}
}

// GetNatGatewayTraffic collects the traffic metrics for the given NAT gateways
// over [startTime, endTime). Results come back in the same order as the input
// ids, with zero values for gateways that emitted no datapoints.
func (ts *TrafficService) GetNatGatewayTraffic(ctx context.Context, natGatewayIds []string, startTime, endTime time.Time) ([]types.NatGatewayTraffic, error) {
	traffic := make([]types.NatGatewayTraffic, len(natGatewayIds))
	for i, natGatewayId := range natGatewayIds {
		traffic[i] = types.NatGatewayTraffic{NatGatewayId: natGatewayId}
	}
	if len(natGatewayIds) == 0 {
		return traffic, nil
	}

	slog.Info("📊 getting NAT gateway traffic metrics",
		"natGateways", len(natGatewayIds),
		"startTime", startTime.Format(time.RFC3339),
		"endTime", endTime.Format(time.RFC3339),
	)

	queries := ts.buildQueries(natGatewayIds, startTime, endTime)

	for batchStart := 0; batchStart < len(queries); batchStart += maxQueriesPerCall {
		batchEnd := min(batchStart+maxQueriesPerCall, len(queries))
		results, err := ts.getMetricData(ctx, queries[batchStart:batchEnd], startTime, endTime)
		if err != nil {
			return nil, err
		}
		if err := applyResults(traffic, results); err != nil {
			return nil, err
		}
	}

	return traffic, nil
}

func (ts *TrafficService) buildQueries(natGatewayIds []string, startTime, endTime time.Time) []cloudwatchtypes.MetricDataQuery {
	period := int32(endTime.Sub(startTime).Seconds())
	period -= period % 60
	if period < 60 {
		period = 60
	}

	queries := make([]cloudwatchtypes.MetricDataQuery, 0, len(natGatewayIds)*len(natMetrics))
	for i, natGatewayId := range natGatewayIds {
		for _, metric := range natMetrics {
			queries = append(queries, cloudwatchtypes.MetricDataQuery{
				Id: aws.String(fmt.Sprintf("%s_%d", metric.IdPrefix, i)),
				MetricStat: &cloudwatchtypes.MetricStat{
					Metric: &cloudwatchtypes.Metric{
						Namespace:  aws.String(natGatewayNamespace),
						MetricName: aws.String(metric.MetricName),
						Dimensions: []cloudwatchtypes.Dimension{
							{
								Name:  aws.String("NatGatewayId"),
								Value: aws.String(natGatewayId),
							},
						},
					},
					Period: aws.Int32(period),
					Stat:   aws.String(metric.Stat),
				},
				ReturnData: aws.Bool(true),
			})
		}
	}
	return queries
}

func (ts *TrafficService) getMetricData(ctx context.Context, queries []cloudwatchtypes.MetricDataQuery, startTime, endTime time.Time) ([]cloudwatchtypes.MetricDataResult, error) {
	var results []cloudwatchtypes.MetricDataResult
	var nextToken *string

	for {
		output, err := ts.client.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
			MetricDataQueries: queries,
			StartTime:         aws.Time(startTime),
			EndTime:           aws.Time(endTime),
			ScanBy:            cloudwatchtypes.ScanByTimestampAscending,
			NextToken:         nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("❌ Failed to get NAT gateway metric data: %v", err)
		}

		results = append(results, output.MetricDataResults...)

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return results, nil
}

func applyResults(traffic []types.NatGatewayTraffic, results []cloudwatchtypes.MetricDataResult) error {
	for _, result := range results {
		id := aws.ToString(result.Id)
		separator := strings.LastIndex(id, "_")
		if separator < 0 {
			return fmt.Errorf("❌ Unexpected metric query id: %s", id)
		}
		index, err := strconv.Atoi(id[separator+1:])
		if err != nil || index < 0 || index >= len(traffic) {
			return fmt.Errorf("❌ Unexpected metric query id: %s", id)
		}

		switch id[:separator] {
		case "bytes_out":
			for _, value := range result.Values {
				traffic[index].BytesOutToDestination += value
			}
		case "bytes_in":
			for _, value := range result.Values {
				traffic[index].BytesInFromSource += value
			}
		case "active_conn":
			for _, value := range result.Values {
				if value > traffic[index].ActiveConnectionCount {
					traffic[index].ActiveConnectionCount = value
				}
			}
		default:
			return fmt.Errorf("❌ Unexpected metric query id: %s", id)
		}
	}
	return nil
}
