package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Generates a single subnet resource zipped from the CIDR and availability zone
// list variables at the given index.
func GenerateSubnetResource(tfResourceName, cidrsVarName, availabilityZonesVarName string, index int, vpcIdRef string, mapPublicIpOnLaunch bool, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	subnetBlock := hclwrite.NewBlock("resource", []string{"aws_subnet", tfResourceName})
	subnetBlock.Body().SetAttributeRaw("vpc_id", utils.TokensForResourceReference(vpcIdRef))
	subnetBlock.Body().SetAttributeRaw("cidr_block", utils.TokensForVarIndex(cidrsVarName, index))
	subnetBlock.Body().SetAttributeRaw("availability_zone", utils.TokensForVarIndex(availabilityZonesVarName, index))
	if mapPublicIpOnLaunch {
		subnetBlock.Body().SetAttributeValue("map_public_ip_on_launch", cty.BoolVal(true))
	}
	if len(tags) > 0 {
		subnetBlock.Body().AppendNewline()
		subnetBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return subnetBlock
}

func GenerateSubnetResourceReference(tfResourceName string) string {
	return fmt.Sprintf("aws_subnet.%s.id", tfResourceName)
}
