package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cloudcomb/ncp/internal/client"
)

// VpcCidr is a single CIDR association on a VPC. A VPC with secondary CIDR
// blocks produces one entry per association.
type VpcCidr struct {
	VpcId string
	Cidr  string
}

type EC2Service struct {
	client *client.RateLimitedEC2Client
}

func NewEC2Service(ec2Client *client.RateLimitedEC2Client) *EC2Service {
	return &EC2Service{
		client: ec2Client,
	}
}

// GetAvailableZoneNames returns the names of every availability zone in the
// client's region that is currently in the "available" state.
func (es *EC2Service) GetAvailableZoneNames(ctx context.Context) ([]string, error) {
	output, err := es.client.DescribeAvailabilityZones(ctx, &awsec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("state"),
				Values: []string{string(ec2types.AvailabilityZoneStateAvailable)},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to describe availability zones: %v", err)
	}

	zoneNames := make([]string, 0, len(output.AvailabilityZones))
	for _, zone := range output.AvailabilityZones {
		zoneNames = append(zoneNames, aws.ToString(zone.ZoneName))
	}

	return zoneNames, nil
}

// GetVpcCidrs returns every CIDR block associated with every VPC in the
// client's region, including secondary associations.
func (es *EC2Service) GetVpcCidrs(ctx context.Context) ([]VpcCidr, error) {
	var cidrs []VpcCidr
	var nextToken *string

	for {
		output, err := es.client.DescribeVpcs(ctx, &awsec2.DescribeVpcsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("❌ Failed to describe VPCs: %v", err)
		}

		for _, vpc := range output.Vpcs {
			for _, association := range vpc.CidrBlockAssociationSet {
				if association.CidrBlock == nil {
					continue
				}
				cidrs = append(cidrs, VpcCidr{
					VpcId: aws.ToString(vpc.VpcId),
					Cidr:  aws.ToString(association.CidrBlock),
				})
			}
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return cidrs, nil
}
