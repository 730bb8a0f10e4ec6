package hcl

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/services/hcl/aws"
	"github.com/cloudcomb/ncp/internal/services/markdown"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// NetworkRenderRequest carries everything the network renderer needs: the spec
// itself plus the region and resolved component version the caller settled on.
type NetworkRenderRequest struct {
	Region  string
	Version string
	Spec    types.NetworkSpec
}

type NetworkHCLService struct {
}

func NewNetworkHCLService() *NetworkHCLService {
	return &NetworkHCLService{}
}

// GenerateTerraformProject renders the full network asset project. Rendering
// is pure: same request in, byte-identical project out.
func (n *NetworkHCLService) GenerateTerraformProject(request NetworkRenderRequest) types.AssetProject {
	return types.AssetProject{
		ComponentName:    types.ComponentNetwork,
		ComponentVersion: request.Version,
		ProvidersTf:      generateProvidersTf(),
		VariablesTf:      generateVariablesTf(GetNetworkVariableDefinitions()),
		MainTf:           n.generateMainTf(request),
		OutputsTf:        generateOutputsTf(GetNetworkOutputDefinitions(request.Spec)),
		InputsAutoTfvars: generateInputsAutoTfvars(GetNetworkVariableValues(request)),
		AdditionalFiles: map[string]string{
			"README.md": n.generateReadme(request),
		},
	}
}

func (n *NetworkHCLService) generateMainTf(request NetworkRenderRequest) string {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	spec := request.Spec
	pairs := spec.SubnetPairs()

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("VPC"))
	rootBody.AppendBlock(aws.GenerateVpcResource("main", "vpc_cidr",
		n.resourceTags(spec, utils.TokensForVarReference("vpc_name"), "")))
	rootBody.AppendNewline()

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("Public subnets"))
	for _, pair := range pairs {
		rootBody.AppendBlock(aws.GenerateSubnetResource(
			fmt.Sprintf("public_subnet_%d", pair.Index),
			"public_subnet_cidrs",
			"availability_zones",
			pair.Index-1,
			aws.GenerateVpcResourceReference("main"),
			true,
			n.resourceTags(spec, utils.TokensForStringTemplate(fmt.Sprintf("${var.vpc_name}-public-%d", pair.Index)), "public"),
		))
		rootBody.AppendNewline()
	}

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("Private subnets"))
	for _, pair := range pairs {
		rootBody.AppendBlock(aws.GenerateSubnetResource(
			fmt.Sprintf("private_subnet_%d", pair.Index),
			"private_subnet_cidrs",
			"availability_zones",
			pair.Index-1,
			aws.GenerateVpcResourceReference("main"),
			false,
			n.resourceTags(spec, utils.TokensForStringTemplate(fmt.Sprintf("${var.vpc_name}-private-%d", pair.Index)), "private"),
		))
		rootBody.AppendNewline()
	}

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("Internet gateway and public routing"))
	rootBody.AppendBlock(aws.GenerateInternetGatewayResource("main",
		aws.GenerateVpcResourceReference("main"),
		n.resourceTags(spec, utils.TokensForStringTemplate("${var.vpc_name}-igw"), "")))
	rootBody.AppendNewline()

	rootBody.AppendBlock(aws.GenerateRouteTableResource("public",
		aws.GenerateVpcResourceReference("main"),
		[]aws.Route{{DestinationCidr: "0.0.0.0/0", GatewayIdRef: aws.GenerateInternetGatewayResourceReference("main")}},
		n.resourceTags(spec, utils.TokensForStringTemplate("${var.vpc_name}-public"), "")))
	rootBody.AppendNewline()

	for _, pair := range pairs {
		rootBody.AppendBlock(aws.GenerateRouteTableAssociationResource(
			fmt.Sprintf("public_subnet_%d", pair.Index),
			aws.GenerateSubnetResourceReference(fmt.Sprintf("public_subnet_%d", pair.Index)),
			aws.GenerateRouteTableResourceReference("public"),
		))
		rootBody.AppendNewline()
	}

	if spec.EnableNatGateway {
		n.appendNatGatewayRouting(rootBody, spec, pairs)
	} else {
		n.appendIsolatedPrivateRouting(rootBody, spec, pairs)
	}

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("Default security group"))
	rootBody.AppendBlock(aws.GenerateDefaultSecurityGroupResource("main",
		aws.GenerateVpcResourceReference("main"),
		n.resourceTags(spec, utils.TokensForStringTemplate("${var.vpc_name}-default"), "")))
	rootBody.AppendNewline()

	return string(f.Bytes())
}

// appendNatGatewayRouting emits one EIP, NAT gateway, route table and
// association per subnet pair so each private subnet egresses through a NAT
// gateway in its own availability zone.
func (n *NetworkHCLService) appendNatGatewayRouting(rootBody *hclwrite.Body, spec types.NetworkSpec, pairs []types.SubnetPair) {
	rootBody.AppendUnstructuredTokens(utils.TokensForComment("NAT gateways, one per availability zone"))
	for _, pair := range pairs {
		natName := fmt.Sprintf("nat_%d", pair.Index)

		rootBody.AppendBlock(aws.GenerateEIPResource(natName,
			[]string{aws.GenerateInternetGatewayDependsOnReference("main")},
			n.resourceTags(spec, utils.TokensForStringTemplate(fmt.Sprintf("${var.vpc_name}-nat-%d", pair.Index)), "")))
		rootBody.AppendNewline()

		rootBody.AppendBlock(aws.GenerateNATGatewayResource(natName,
			aws.GenerateEIPAllocationReference(natName),
			aws.GenerateSubnetResourceReference(fmt.Sprintf("public_subnet_%d", pair.Index)),
			[]string{aws.GenerateInternetGatewayDependsOnReference("main")},
			n.resourceTags(spec, utils.TokensForStringTemplate(fmt.Sprintf("${var.vpc_name}-nat-%d", pair.Index)), "")))
		rootBody.AppendNewline()

		rootBody.AppendBlock(aws.GenerateRouteTableResource(fmt.Sprintf("private_%d", pair.Index),
			aws.GenerateVpcResourceReference("main"),
			[]aws.Route{{DestinationCidr: "0.0.0.0/0", NatGatewayIdRef: aws.GenerateNATGatewayResourceReference(natName)}},
			n.resourceTags(spec, utils.TokensForStringTemplate(fmt.Sprintf("${var.vpc_name}-private-%d", pair.Index)), "")))
		rootBody.AppendNewline()

		rootBody.AppendBlock(aws.GenerateRouteTableAssociationResource(
			fmt.Sprintf("private_subnet_%d", pair.Index),
			aws.GenerateSubnetResourceReference(fmt.Sprintf("private_subnet_%d", pair.Index)),
			aws.GenerateRouteTableResourceReference(fmt.Sprintf("private_%d", pair.Index)),
		))
		rootBody.AppendNewline()
	}
}

// appendIsolatedPrivateRouting emits a single route table with no default
// route. Private subnets stay reachable inside the VPC only.
func (n *NetworkHCLService) appendIsolatedPrivateRouting(rootBody *hclwrite.Body, spec types.NetworkSpec, pairs []types.SubnetPair) {
	rootBody.AppendUnstructuredTokens(utils.TokensForComment("Private routing, no internet egress"))
	rootBody.AppendBlock(aws.GenerateRouteTableResource("private",
		aws.GenerateVpcResourceReference("main"),
		nil,
		n.resourceTags(spec, utils.TokensForStringTemplate("${var.vpc_name}-private"), "")))
	rootBody.AppendNewline()

	for _, pair := range pairs {
		rootBody.AppendBlock(aws.GenerateRouteTableAssociationResource(
			fmt.Sprintf("private_subnet_%d", pair.Index),
			aws.GenerateSubnetResourceReference(fmt.Sprintf("private_subnet_%d", pair.Index)),
			aws.GenerateRouteTableResourceReference("private"),
		))
		rootBody.AppendNewline()
	}
}

// resourceTags merges the spec's additional tags with the resource's Name tag
// and, for subnets, a Type tag. The Name tag wins on key collisions.
func (n *NetworkHCLService) resourceTags(spec types.NetworkSpec, nameTokens hclwrite.Tokens, subnetType string) map[string]hclwrite.Tokens {
	tags := make(map[string]hclwrite.Tokens, len(spec.AdditionalTags)+2)
	for key, value := range spec.AdditionalTags {
		tags[key] = hclwrite.TokensForValue(cty.StringVal(value))
	}
	tags["Name"] = nameTokens
	if subnetType != "" {
		tags["Type"] = hclwrite.TokensForValue(cty.StringVal(subnetType))
	}

	return tags
}

func (n *NetworkHCLService) generateReadme(request NetworkRenderRequest) string {
	spec := request.Spec
	pairs := spec.SubnetPairs()

	md := markdown.New()
	md.AddHeading(fmt.Sprintf("network %s", request.Version), 1)
	md.AddParagraph(fmt.Sprintf("Terraform assets for the `%s` VPC in `%s`. Generated by ncp - do not edit by hand, re-render instead.", spec.VpcName, request.Region))

	rows := [][]string{
		{"aws_vpc.main", fmt.Sprintf("VPC %s with DNS support and hostnames enabled", spec.VpcCidr)},
		{"aws_internet_gateway.main", "Internet gateway for public subnet egress"},
		{"aws_route_table.public", "Public route table with a default route via the internet gateway"},
		{"aws_default_security_group.main", "Default security group pinned to allow-all"},
	}
	for _, pair := range pairs {
		rows = append(rows, []string{
			fmt.Sprintf("aws_subnet.public_subnet_%d", pair.Index),
			fmt.Sprintf("Public subnet %s in %s", pair.PublicCidr, pair.AvailabilityZone),
		})
		rows = append(rows, []string{
			fmt.Sprintf("aws_subnet.private_subnet_%d", pair.Index),
			fmt.Sprintf("Private subnet %s in %s", pair.PrivateCidr, pair.AvailabilityZone),
		})
		if spec.EnableNatGateway {
			rows = append(rows, []string{
				fmt.Sprintf("aws_nat_gateway.nat_%d", pair.Index),
				fmt.Sprintf("NAT gateway for private egress in %s", pair.AvailabilityZone),
			})
		}
	}
	md.AddTable([]string{"Resource", "Purpose"}, rows)

	md.AddHeading("Usage", 2)
	md.AddCodeBlock("terraform init\nterraform plan -out=tfplan\nterraform apply tfplan", "sh")

	return md.String()
}
