package aws

import (
	"fmt"

	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

func GenerateOidcProviderResource(tfResourceName, url string, clientIdList []string, thumbprintVarName string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	providerBlock := hclwrite.NewBlock("resource", []string{"aws_iam_openid_connect_provider", tfResourceName})
	providerBlock.Body().SetAttributeValue("url", cty.StringVal(url))
	providerBlock.Body().SetAttributeRaw("client_id_list", utils.TokensForStringList(clientIdList))
	providerBlock.Body().SetAttributeRaw("thumbprint_list", utils.TokensForList([]string{"var." + thumbprintVarName}))

	if len(tags) > 0 {
		providerBlock.Body().AppendNewline()
		providerBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return providerBlock
}

func GenerateOidcProviderArnReference(tfResourceName string) string {
	return fmt.Sprintf("aws_iam_openid_connect_provider.%s.arn", tfResourceName)
}

func GenerateOidcProviderUrlReference(tfResourceName string) string {
	return fmt.Sprintf("aws_iam_openid_connect_provider.%s.url", tfResourceName)
}

// GenerateAssumeRolePolicyDocument renders a data "aws_iam_policy_document"
// trust policy for web identity federation. The subject condition uses
// StringLike so wildcard subjects keep their meaning.
func GenerateAssumeRolePolicyDocument(tfResourceName, providerArnRef, conditionKey, audience string, trustSubjects []string) *hclwrite.Block {
	documentBlock := hclwrite.NewBlock("data", []string{"aws_iam_policy_document", tfResourceName})

	statementBlock := hclwrite.NewBlock("statement", nil)
	statementBlock.Body().SetAttributeValue("effect", cty.StringVal("Allow"))
	statementBlock.Body().SetAttributeRaw("actions", utils.TokensForStringList([]string{"sts:AssumeRoleWithWebIdentity"}))
	statementBlock.Body().AppendNewline()

	principalsBlock := hclwrite.NewBlock("principals", nil)
	principalsBlock.Body().SetAttributeValue("type", cty.StringVal("Federated"))
	principalsBlock.Body().SetAttributeRaw("identifiers", utils.TokensForList([]string{providerArnRef}))
	statementBlock.Body().AppendBlock(principalsBlock)
	statementBlock.Body().AppendNewline()

	audienceBlock := hclwrite.NewBlock("condition", nil)
	audienceBlock.Body().SetAttributeValue("test", cty.StringVal("StringEquals"))
	audienceBlock.Body().SetAttributeValue("variable", cty.StringVal(conditionKey+":aud"))
	audienceBlock.Body().SetAttributeRaw("values", utils.TokensForStringList([]string{audience}))
	statementBlock.Body().AppendBlock(audienceBlock)
	statementBlock.Body().AppendNewline()

	subjectBlock := hclwrite.NewBlock("condition", nil)
	subjectBlock.Body().SetAttributeValue("test", cty.StringVal("StringLike"))
	subjectBlock.Body().SetAttributeValue("variable", cty.StringVal(conditionKey+":sub"))
	subjectBlock.Body().SetAttributeRaw("values", utils.TokensForStringList(trustSubjects))
	statementBlock.Body().AppendBlock(subjectBlock)

	documentBlock.Body().AppendBlock(statementBlock)

	return documentBlock
}

func GeneratePolicyDocumentJsonReference(tfResourceName string) string {
	return fmt.Sprintf("data.aws_iam_policy_document.%s.json", tfResourceName)
}

func GenerateIamRoleResource(tfResourceName, roleNameVarName, assumeRolePolicyRef string, tags map[string]hclwrite.Tokens) *hclwrite.Block {
	roleBlock := hclwrite.NewBlock("resource", []string{"aws_iam_role", tfResourceName})
	roleBlock.Body().SetAttributeRaw("name", utils.TokensForVarReference(roleNameVarName))
	roleBlock.Body().SetAttributeRaw("assume_role_policy", utils.TokensForResourceReference(assumeRolePolicyRef))

	if len(tags) > 0 {
		roleBlock.Body().AppendNewline()
		roleBlock.Body().SetAttributeRaw("tags", utils.TokensForMap(tags))
	}

	return roleBlock
}

func GenerateIamRoleArnReference(tfResourceName string) string {
	return fmt.Sprintf("aws_iam_role.%s.arn", tfResourceName)
}

func GenerateIamRoleNameReference(tfResourceName string) string {
	return fmt.Sprintf("aws_iam_role.%s.name", tfResourceName)
}

func GenerateRolePolicyAttachmentResource(tfResourceName, roleNameRef, policyArn string) *hclwrite.Block {
	attachmentBlock := hclwrite.NewBlock("resource", []string{"aws_iam_role_policy_attachment", tfResourceName})
	attachmentBlock.Body().SetAttributeRaw("role", utils.TokensForResourceReference(roleNameRef))
	attachmentBlock.Body().SetAttributeValue("policy_arn", cty.StringVal(policyArn))

	return attachmentBlock
}

// GenerateRolePolicyResource renders an inline role policy. policyTokens holds
// the policy document expression, typically a jsonencode(...) call.
func GenerateRolePolicyResource(tfResourceName, policyName, roleIdRef string, policyTokens hclwrite.Tokens) *hclwrite.Block {
	policyBlock := hclwrite.NewBlock("resource", []string{"aws_iam_role_policy", tfResourceName})
	policyBlock.Body().SetAttributeValue("name", cty.StringVal(policyName))
	policyBlock.Body().SetAttributeRaw("role", utils.TokensForResourceReference(roleIdRef))
	policyBlock.Body().SetAttributeRaw("policy", policyTokens)

	return policyBlock
}

func GenerateIamRoleIdReference(tfResourceName string) string {
	return fmt.Sprintf("aws_iam_role.%s.id", tfResourceName)
}
