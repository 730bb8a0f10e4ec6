package aws

import (
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	awsProviderSource  = "hashicorp/aws"
	awsProviderVersion = "6.18.0"
)

// GenerateRequiredProviderTokens returns the provider name and the tokens for
// its entry in the terraform.required_providers map.
func GenerateRequiredProviderTokens() (string, hclwrite.Tokens) {
	return "aws", utils.TokensForMap(map[string]hclwrite.Tokens{
		"source":  hclwrite.TokensForValue(cty.StringVal(awsProviderSource)),
		"version": hclwrite.TokensForValue(cty.StringVal(awsProviderVersion)),
	})
}

func GenerateProviderBlock(region string) *hclwrite.Block {
	providerBlock := hclwrite.NewBlock("provider", []string{"aws"})
	providerBlock.Body().SetAttributeValue("region", cty.StringVal(region))

	return providerBlock
}

// GenerateProviderBlockWithVar renders the provider with its region sourced
// from a Terraform variable instead of a literal.
func GenerateProviderBlockWithVar(regionVarName string) *hclwrite.Block {
	providerBlock := hclwrite.NewBlock("provider", []string{"aws"})
	providerBlock.Body().SetAttributeRaw("region", utils.TokensForVarReference(regionVarName))

	return providerBlock
}
