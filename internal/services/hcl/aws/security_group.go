package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// GenerateDefaultSecurityGroupResource adopts the VPC's default security group
// and pins it to an allow-all posture so Terraform tracks it instead of
// leaving it unmanaged.
func GenerateDefaultSecurityGroupResource(tfResourceName, vpcIdRef string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	securityGroupBlock := hclwrite.NewBlock("resource", []string{"aws_default_security_group", tfResourceName})
	securityGroupBlock.Body().SetAttributeRaw("vpc_id", utils.TokensForResourceReference(vpcIdRef))
	securityGroupBlock.Body().AppendNewline()

	ingressBlock := hclwrite.NewBlock("ingress", nil)
	ingressBlock.Body().SetAttributeValue("description", cty.StringVal("Allow all inbound traffic"))
	ingressBlock.Body().SetAttributeValue("from_port", cty.NumberIntVal(0))
	ingressBlock.Body().SetAttributeValue("to_port", cty.NumberIntVal(0))
	ingressBlock.Body().SetAttributeValue("protocol", cty.StringVal("-1"))
	ingressBlock.Body().SetAttributeValue("cidr_blocks", cty.ListVal([]cty.Value{cty.StringVal("0.0.0.0/0")}))
	securityGroupBlock.Body().AppendBlock(ingressBlock)
	securityGroupBlock.Body().AppendNewline()

	egressBlock := hclwrite.NewBlock("egress", nil)
	egressBlock.Body().SetAttributeValue("description", cty.StringVal("Allow all outbound traffic"))
	egressBlock.Body().SetAttributeValue("from_port", cty.NumberIntVal(0))
	egressBlock.Body().SetAttributeValue("to_port", cty.NumberIntVal(0))
	egressBlock.Body().SetAttributeValue("protocol", cty.StringVal("-1"))
	egressBlock.Body().SetAttributeValue("cidr_blocks", cty.ListVal([]cty.Value{cty.StringVal("0.0.0.0/0")}))
	securityGroupBlock.Body().AppendBlock(egressBlock)

	if len(tags) > 0 {
		securityGroupBlock.Body().AppendNewline()
		securityGroupBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return securityGroupBlock
}

func GenerateDefaultSecurityGroupResourceReference(tfResourceName string) string {
	return fmt.Sprintf("aws_default_security_group.%s.id", tfResourceName)
}
