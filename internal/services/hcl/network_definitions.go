package hcl

import (
	"fmt"
	"strings"

	"github.com/cloudcomb/ncp/internal/services/hcl/aws"
	"github.com/cloudcomb/ncp/internal/types"
)

type NetworkVariableDefinition struct {
	Name           string
	Definition     types.TerraformVariable
	ValueExtractor func(request NetworkRenderRequest) any // Extracts the value for inputs.auto.tfvars.
}

var NetworkVariables = []NetworkVariableDefinition{
	{
		Name: "aws_region",
		Definition: types.TerraformVariable{
			Name:        "aws_region",
			Type:        "string",
			Description: "AWS region the network is created in",
		},
		ValueExtractor: func(request NetworkRenderRequest) any { return request.Region },
	},
	{
		Name: "vpc_name",
		Definition: types.TerraformVariable{
			Name:        "vpc_name",
			Type:        "string",
			Description: "Name of the VPC, used as the Name tag prefix on every resource",
		},
		ValueExtractor: func(request NetworkRenderRequest) any { return request.Spec.VpcName },
	},
	{
		Name: "vpc_cidr",
		Definition: types.TerraformVariable{
			Name:        "vpc_cidr",
			Type:        "string",
			Description: "IPv4 CIDR block of the VPC",
		},
		ValueExtractor: func(request NetworkRenderRequest) any { return request.Spec.VpcCidr },
	},
	{
		Name: "public_subnet_cidrs",
		Definition: types.TerraformVariable{
			Name:        "public_subnet_cidrs",
			Type:        "list(string)",
			Description: "CIDR blocks of the public subnets, one per availability zone",
		},
		ValueExtractor: func(request NetworkRenderRequest) any { return request.Spec.PublicSubnetCidrs },
	},
	{
		Name: "private_subnet_cidrs",
		Definition: types.TerraformVariable{
			Name:        "private_subnet_cidrs",
			Type:        "list(string)",
			Description: "CIDR blocks of the private subnets, one per availability zone",
		},
		ValueExtractor: func(request NetworkRenderRequest) any { return request.Spec.PrivateSubnetCidrs },
	},
	{
		Name: "availability_zones",
		Definition: types.TerraformVariable{
			Name:        "availability_zones",
			Type:        "list(string)",
			Description: "Availability zones the subnet pairs are spread across",
		},
		ValueExtractor: func(request NetworkRenderRequest) any { return request.Spec.AvailabilityZones },
	},
}

func GetNetworkVariableDefinitions() []types.TerraformVariable {
	var definitions []types.TerraformVariable

	for _, varDef := range NetworkVariables {
		definitions = append(definitions, varDef.Definition)
	}

	return definitions
}

func GetNetworkVariableValues(request NetworkRenderRequest) map[string]any {
	values := make(map[string]any)

	for _, varDef := range NetworkVariables {
		values[varDef.Name] = varDef.ValueExtractor(request)
	}

	return values
}

// GetNetworkOutputDefinitions builds the outputs.tf definitions for a network
// spec. Subnet and NAT gateway outputs are unrolled list literals so the
// output set matches exactly what was rendered. nat_gateway_ids is always
// declared and renders as [] when NAT is disabled.
func GetNetworkOutputDefinitions(spec types.NetworkSpec) []types.TerraformOutput {
	pairs := spec.SubnetPairs()

	publicSubnetIds := make([]string, len(pairs))
	privateSubnetIds := make([]string, len(pairs))
	natGatewayIds := make([]string, 0, len(pairs))
	for i, pair := range pairs {
		publicSubnetIds[i] = aws.GenerateSubnetResourceReference(fmt.Sprintf("public_subnet_%d", pair.Index))
		privateSubnetIds[i] = aws.GenerateSubnetResourceReference(fmt.Sprintf("private_subnet_%d", pair.Index))
		if spec.EnableNatGateway {
			natGatewayIds = append(natGatewayIds, aws.GenerateNATGatewayResourceReference(fmt.Sprintf("nat_%d", pair.Index)))
		}
	}

	return []types.TerraformOutput{
		{
			Name:        "vpc_id",
			Value:       aws.GenerateVpcResourceReference("main"),
			Description: "ID of the VPC",
		},
		{
			Name:        "vpc_arn",
			Value:       aws.GenerateVpcArnReference("main"),
			Description: "ARN of the VPC",
		},
		{
			Name:        "public_subnet_ids",
			Value:       fmt.Sprintf("[%s]", strings.Join(publicSubnetIds, ", ")),
			Description: "IDs of the public subnets",
		},
		{
			Name:        "private_subnet_ids",
			Value:       fmt.Sprintf("[%s]", strings.Join(privateSubnetIds, ", ")),
			Description: "IDs of the private subnets",
		},
		{
			Name:        "internet_gateway_id",
			Value:       aws.GenerateInternetGatewayResourceReference("main"),
			Description: "ID of the internet gateway",
		},
		{
			Name:        "nat_gateway_ids",
			Value:       fmt.Sprintf("[%s]", strings.Join(natGatewayIds, ", ")),
			Description: "IDs of the NAT gateways, empty when NAT is disabled",
		},
		{
			Name:        "default_security_group_id",
			Value:       aws.GenerateDefaultSecurityGroupResourceReference("main"),
			Description: "ID of the VPC default security group",
		},
	}
}
