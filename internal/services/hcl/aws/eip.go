package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

func GenerateEIPResource(tfResourceName string, dependsOn []string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	eipBlock := hclwrite.NewBlock("resource", []string{"aws_eip", tfResourceName})
	eipBlock.Body().SetAttributeValue("domain", cty.StringVal("vpc"))
	if len(tags) > 0 {
		eipBlock.Body().AppendNewline()
		eipBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}
	if len(dependsOn) > 0 {
		eipBlock.Body().AppendNewline()
		eipBlock.Body().SetAttributeRaw("depends_on", utils.TokensForList(dependsOn))
	}

	return eipBlock
}

func GenerateEIPAllocationReference(tfResourceName string) string {
	return fmt.Sprintf("aws_eip.%s.id", tfResourceName)
}
