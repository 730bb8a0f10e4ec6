package hcl

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cloudcomb/ncp/internal/services/hcl/aws"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// regionVarName is the Terraform variable every component sources its provider
// region from.
const regionVarName = "aws_region"

// generateProvidersTf generates the providers.tf shared by all components: the
// terraform.required_providers block plus an aws provider wired to var.aws_region.
func generateProvidersTf() string {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	terraformBlock := rootBody.AppendNewBlock("terraform", nil)
	terraformBody := terraformBlock.Body()

	requiredProvidersBlock := terraformBody.AppendNewBlock("required_providers", nil)
	requiredProvidersBody := requiredProvidersBlock.Body()

	requiredProvidersBody.SetAttributeRaw(aws.GenerateRequiredProviderTokens())
	rootBody.AppendNewline()

	rootBody.AppendBlock(aws.GenerateProviderBlockWithVar(regionVarName))
	rootBody.AppendNewline()

	return string(f.Bytes())
}

// generateVariablesTf generates variables.tf content from variable definitions.
func generateVariablesTf(tfVariables []types.TerraformVariable) string {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	for _, v := range tfVariables {
		variableBlock := rootBody.AppendNewBlock("variable", []string{v.Name})
		variableBody := variableBlock.Body()
		variableBody.SetAttributeRaw("type", utils.TokensForResourceReference(v.Type))
		if v.Description != "" {
			variableBody.SetAttributeValue("description", cty.StringVal(v.Description))
		}
		if v.Sensitive {
			variableBody.SetAttributeValue("sensitive", cty.BoolVal(true))
		}
		rootBody.AppendNewline()
	}

	return string(f.Bytes())
}

// generateOutputsTf generates outputs.tf content from output definitions.
func generateOutputsTf(tfOutputs []types.TerraformOutput) string {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	for _, output := range tfOutputs {
		outputBlock := rootBody.AppendNewBlock("output", []string{output.Name})
		outputBody := outputBlock.Body()

		// Parse the value expression by wrapping it in a temporary output block.
		// This allows us to emit complex expressions (list literals, data source
		// references) without hand-building their tokens.
		tempHcl := fmt.Sprintf("output \"temp\" {\n  value = %s\n}", output.Value)
		tempFile, diags := hclwrite.ParseConfig([]byte(tempHcl), "", hcl.Pos{Line: 1, Column: 1})
		if diags.HasErrors() {
			// If parsing fails, fall back to using the raw expression as a resource reference
			outputBody.SetAttributeRaw("value", utils.TokensForResourceReference(output.Value))
		} else {
			tempBody := tempFile.Body()
			blocks := tempBody.Blocks()
			if len(blocks) > 0 {
				tempOutputBody := blocks[0].Body()
				attrs := tempOutputBody.Attributes()
				if valueAttr, ok := attrs["value"]; ok {
					outputBody.SetAttributeRaw("value", valueAttr.Expr().BuildTokens(nil))
				} else {
					outputBody.SetAttributeRaw("value", utils.TokensForResourceReference(output.Value))
				}
			} else {
				outputBody.SetAttributeRaw("value", utils.TokensForResourceReference(output.Value))
			}
		}

		if output.Description != "" {
			outputBody.SetAttributeValue("description", cty.StringVal(output.Description))
		}
		if output.Sensitive {
			outputBody.SetAttributeValue("sensitive", cty.BoolVal(true))
		}
		rootBody.AppendNewline()
	}

	return string(f.Bytes())
}

// generateInputsAutoTfvars generates inputs.auto.tfvars content from variable
// values. Variables are emitted in name order so renders are byte-stable, and
// empty values are skipped so Terraform prompts for anything genuinely missing.
func generateInputsAutoTfvars(values map[string]any) string {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	for _, varName := range slices.Sorted(maps.Keys(values)) {
		switch v := values[varName].(type) {
		case string:
			if v != "" {
				rootBody.SetAttributeValue(varName, cty.StringVal(v))
			}
		case []string:
			if len(v) > 0 {
				ctyValues := make([]cty.Value, len(v))
				for i, s := range v {
					ctyValues[i] = cty.StringVal(s)
				}
				rootBody.SetAttributeValue(varName, cty.ListVal(ctyValues))
			}
		case bool:
			rootBody.SetAttributeValue(varName, cty.BoolVal(v))
		case int:
			rootBody.SetAttributeValue(varName, cty.NumberIntVal(int64(v)))
		}
	}

	return string(f.Bytes())
}
