package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

func GenerateVpcResource(tfResourceName, cidrVarName string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	vpcBlock := hclwrite.NewBlock("resource", []string{"aws_vpc", tfResourceName})
	vpcBlock.Body().SetAttributeRaw("cidr_block", utils.TokensForVarReference(cidrVarName))
	vpcBlock.Body().SetAttributeValue("enable_dns_support", cty.BoolVal(true))
	vpcBlock.Body().SetAttributeValue("enable_dns_hostnames", cty.BoolVal(true))
	if len(tags) > 0 {
		vpcBlock.Body().AppendNewline()
		vpcBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return vpcBlock
}

func GenerateVpcResourceReference(tfResourceName string) string {
	return fmt.Sprintf("aws_vpc.%s.id", tfResourceName)
}

func GenerateVpcArnReference(tfResourceName string) string {
	return fmt.Sprintf("aws_vpc.%s.arn", tfResourceName)
}
