package hcl

import (
	"strings"
	"testing"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNetworkRenderRequest() NetworkRenderRequest {
	return NetworkRenderRequest{
		Region:  "eu-west-2",
		Version: "1.4.0",
		Spec: types.NetworkSpec{
			VpcName:            "staging",
			VpcCidr:            "10.0.0.0/16",
			PublicSubnetCidrs:  []string{"10.0.0.0/20", "10.0.16.0/20"},
			PrivateSubnetCidrs: []string{"10.0.128.0/20", "10.0.144.0/20"},
			AvailabilityZones:  []string{"eu-west-2a", "eu-west-2b"},
			EnableNatGateway:   true,
			AdditionalTags:     map[string]string{"team": "platform"},
		},
	}
}

func requireValidHcl(t *testing.T, filename, content string) {
	t.Helper()
	_, diags := hclwrite.ParseConfig([]byte(content), filename, hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "%s should be valid HCL: %s", filename, diags.Error())
}

func TestNetworkHCLService_GenerateTerraformProject_AllFilesValid(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	assert.Equal(t, types.ComponentNetwork, project.ComponentName)
	assert.Equal(t, "1.4.0", project.ComponentVersion)

	requireValidHcl(t, "providers.tf", project.ProvidersTf)
	requireValidHcl(t, "variables.tf", project.VariablesTf)
	requireValidHcl(t, "main.tf", project.MainTf)
	requireValidHcl(t, "outputs.tf", project.OutputsTf)
	requireValidHcl(t, "inputs.auto.tfvars", project.InputsAutoTfvars)

	assert.Contains(t, project.AdditionalFiles, "README.md")
}

func TestNetworkHCLService_GenerateTerraformProject_IsDeterministic(t *testing.T) {
	service := NewNetworkHCLService()
	request := testNetworkRenderRequest()
	request.Spec.AdditionalTags = map[string]string{
		"team":        "platform",
		"cost-center": "1234",
		"env":         "staging",
	}

	first := service.GenerateTerraformProject(request)
	second := service.GenerateTerraformProject(request)

	assert.Equal(t, first, second, "rendering the same request twice should be byte-identical")
}

func TestNetworkHCLService_MainTf_CoreResources(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	mainTf := project.MainTf

	assert.Contains(t, mainTf, `resource "aws_vpc" "main"`)
	assert.Contains(t, mainTf, "enable_dns_support")
	assert.Contains(t, mainTf, "enable_dns_hostnames")
	assert.Contains(t, mainTf, `resource "aws_internet_gateway" "main"`)
	assert.Contains(t, mainTf, `resource "aws_default_security_group" "main"`)

	// subnet resource names are 1-based, variable indexes 0-based
	assert.Contains(t, mainTf, `resource "aws_subnet" "public_subnet_1"`)
	assert.Contains(t, mainTf, `resource "aws_subnet" "public_subnet_2"`)
	assert.Contains(t, mainTf, `resource "aws_subnet" "private_subnet_1"`)
	assert.Contains(t, mainTf, `resource "aws_subnet" "private_subnet_2"`)
	assert.Contains(t, mainTf, "var.public_subnet_cidrs[0]")
	assert.Contains(t, mainTf, "var.private_subnet_cidrs[1]")
	assert.Contains(t, mainTf, "var.availability_zones[0]")
	assert.NotContains(t, mainTf, "var.public_subnet_cidrs[2]")

	// only public subnets auto-assign public IPs
	assert.Equal(t, 2, strings.Count(mainTf, "map_public_ip_on_launch"))

	// public routing goes via the internet gateway
	assert.Contains(t, mainTf, `resource "aws_route_table" "public"`)
	assert.Regexp(t, `gateway_id\s+=\s+aws_internet_gateway\.main\.id`, mainTf)
	assert.Contains(t, mainTf, "0.0.0.0/0")
}

func TestNetworkHCLService_MainTf_NatGatewayEnabled(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	mainTf := project.MainTf

	// one EIP, NAT gateway and private route table per subnet pair
	assert.Contains(t, mainTf, `resource "aws_eip" "nat_1"`)
	assert.Contains(t, mainTf, `resource "aws_eip" "nat_2"`)
	assert.Contains(t, mainTf, `resource "aws_nat_gateway" "nat_1"`)
	assert.Contains(t, mainTf, `resource "aws_nat_gateway" "nat_2"`)
	assert.Contains(t, mainTf, `resource "aws_route_table" "private_1"`)
	assert.Contains(t, mainTf, `resource "aws_route_table" "private_2"`)
	assert.Regexp(t, `nat_gateway_id\s+=\s+aws_nat_gateway\.nat_1\.id`, mainTf)

	// NAT gateways sit in the public subnets and wait for the IGW
	natStart := strings.Index(mainTf, `resource "aws_nat_gateway" "nat_1"`)
	require.GreaterOrEqual(t, natStart, 0)
	natBlock := mainTf[natStart:]
	natEnd := strings.Index(natBlock, `resource "aws_route_table"`)
	require.GreaterOrEqual(t, natEnd, 0)
	natBlock = natBlock[:natEnd]

	assert.Contains(t, natBlock, "aws_eip.nat_1.id")
	assert.Contains(t, natBlock, "aws_subnet.public_subnet_1.id")
	assert.Contains(t, natBlock, "depends_on")
	assert.Contains(t, natBlock, "aws_internet_gateway.main")
}

func TestNetworkHCLService_MainTf_NatGatewayDisabled(t *testing.T) {
	service := NewNetworkHCLService()
	request := testNetworkRenderRequest()
	request.Spec.EnableNatGateway = false

	project := service.GenerateTerraformProject(request)
	mainTf := project.MainTf

	assert.NotContains(t, mainTf, "aws_eip")
	assert.NotContains(t, mainTf, "aws_nat_gateway")
	assert.Contains(t, mainTf, `resource "aws_route_table" "private"`)
	assert.NotContains(t, mainTf, `resource "aws_route_table" "private_1"`)

	// the private route table carries no default route
	privateRtIdx := strings.Index(mainTf, `resource "aws_route_table" "private"`)
	require.GreaterOrEqual(t, privateRtIdx, 0)
	assert.NotContains(t, mainTf[privateRtIdx:], "nat_gateway_id")
}

func TestNetworkHCLService_MainTf_Tags(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	mainTf := project.MainTf

	assert.Regexp(t, `Name\s+=\s+var\.vpc_name`, mainTf)
	assert.Contains(t, mainTf, `"${var.vpc_name}-public-1"`)
	assert.Contains(t, mainTf, `"${var.vpc_name}-private-2"`)
	assert.Contains(t, mainTf, `"${var.vpc_name}-igw"`)
	assert.Regexp(t, `Type\s+=\s+"public"`, mainTf)
	assert.Regexp(t, `Type\s+=\s+"private"`, mainTf)
	assert.Regexp(t, `team\s+=\s+"platform"`, mainTf)
}

func TestNetworkHCLService_OutputsTf(t *testing.T) {
	tests := []struct {
		name             string
		enableNatGateway bool
		wantNatOutput    string
	}{
		{
			name:             "nat enabled lists every gateway",
			enableNatGateway: true,
			wantNatOutput:    "[aws_nat_gateway.nat_1.id, aws_nat_gateway.nat_2.id]",
		},
		{
			name:             "nat disabled still declares an empty list",
			enableNatGateway: false,
			wantNatOutput:    "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewNetworkHCLService()
			request := testNetworkRenderRequest()
			request.Spec.EnableNatGateway = tt.enableNatGateway

			project := service.GenerateTerraformProject(request)

			requireValidHcl(t, "outputs.tf", project.OutputsTf)
			assert.Contains(t, project.OutputsTf, `output "vpc_id"`)
			assert.Contains(t, project.OutputsTf, `output "vpc_arn"`)
			assert.Contains(t, project.OutputsTf, `output "public_subnet_ids"`)
			assert.Contains(t, project.OutputsTf, `output "private_subnet_ids"`)
			assert.Contains(t, project.OutputsTf, `output "internet_gateway_id"`)
			assert.Contains(t, project.OutputsTf, `output "default_security_group_id"`)
			assert.Contains(t, project.OutputsTf, `output "nat_gateway_ids"`)
			assert.Contains(t, project.OutputsTf, tt.wantNatOutput)
		})
	}
}

func TestNetworkHCLService_VariablesTf(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	for _, want := range []string{
		`variable "aws_region"`,
		`variable "vpc_name"`,
		`variable "vpc_cidr"`,
		`variable "public_subnet_cidrs"`,
		`variable "private_subnet_cidrs"`,
		`variable "availability_zones"`,
	} {
		assert.Contains(t, project.VariablesTf, want)
	}
	assert.Contains(t, project.VariablesTf, "list(string)")
}

func TestNetworkHCLService_InputsAutoTfvars(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	tfvars := project.InputsAutoTfvars

	assert.Regexp(t, `aws_region\s+=\s+"eu-west-2"`, tfvars)
	assert.Regexp(t, `vpc_name\s+=\s+"staging"`, tfvars)
	assert.Regexp(t, `vpc_cidr\s+=\s+"10.0.0.0/16"`, tfvars)
	assert.Contains(t, tfvars, `"10.0.16.0/20"`)
	assert.Contains(t, tfvars, `"eu-west-2b"`)

	// variables are written in name order
	assert.Less(t, strings.Index(tfvars, "availability_zones"), strings.Index(tfvars, "aws_region"))
	assert.Less(t, strings.Index(tfvars, "aws_region"), strings.Index(tfvars, "vpc_cidr"))
}

func TestNetworkHCLService_ProvidersTf(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	assert.Contains(t, project.ProvidersTf, "required_providers")
	assert.Contains(t, project.ProvidersTf, "hashicorp/aws")
	assert.Contains(t, project.ProvidersTf, `provider "aws"`)
	assert.Regexp(t, `region\s+=\s+var\.aws_region`, project.ProvidersTf)
}

func TestNetworkHCLService_Readme(t *testing.T) {
	service := NewNetworkHCLService()
	project := service.GenerateTerraformProject(testNetworkRenderRequest())

	readme := project.AdditionalFiles["README.md"]

	assert.Contains(t, readme, "# network 1.4.0")
	assert.Contains(t, readme, "aws_vpc.main")
	assert.Contains(t, readme, "aws_nat_gateway.nat_1")
	assert.Contains(t, readme, "terraform init")
}
