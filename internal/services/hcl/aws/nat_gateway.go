package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

func GenerateNATGatewayResource(tfResourceName, allocationIdRef, subnetIdRef string, dependsOn []string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	natGatewayBlock := hclwrite.NewBlock("resource", []string{"aws_nat_gateway", tfResourceName})
	natGatewayBlock.Body().SetAttributeRaw("allocation_id", utils.TokensForResourceReference(allocationIdRef))
	natGatewayBlock.Body().SetAttributeRaw("subnet_id", utils.TokensForResourceReference(subnetIdRef))
	if len(tags) > 0 {
		natGatewayBlock.Body().AppendNewline()
		natGatewayBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}
	if len(dependsOn) > 0 {
		natGatewayBlock.Body().AppendNewline()
		natGatewayBlock.Body().SetAttributeRaw("depends_on", utils.TokensForList(dependsOn))
	}

	return natGatewayBlock
}

func GenerateNATGatewayResourceReference(tfResourceName string) string {
	return fmt.Sprintf("aws_nat_gateway.%s.id", tfResourceName)
}
