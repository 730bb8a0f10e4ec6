package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

func GenerateInternetGatewayResource(tfResourceName, vpcIdRef string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	internetGatewayBlock := hclwrite.NewBlock("resource", []string{"aws_internet_gateway", tfResourceName})
	internetGatewayBlock.Body().SetAttributeRaw("vpc_id", utils.TokensForResourceReference(vpcIdRef))
	if len(tags) > 0 {
		internetGatewayBlock.Body().AppendNewline()
		internetGatewayBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return internetGatewayBlock
}

func GenerateInternetGatewayResourceReference(tfResourceName string) string {
	return fmt.Sprintf("aws_internet_gateway.%s.id", tfResourceName)
}

// GenerateInternetGatewayDependsOnReference returns the resource address used
// in depends_on lists (no attribute suffix).
func GenerateInternetGatewayDependsOnReference(tfResourceName string) string {
	return fmt.Sprintf("aws_internet_gateway.%s", tfResourceName)
}
