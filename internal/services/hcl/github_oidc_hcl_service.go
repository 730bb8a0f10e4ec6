package hcl

import (
	"encoding/json"
	"fmt"

	"github.com/cloudcomb/ncp/internal/services/hcl/aws"
	"github.com/cloudcomb/ncp/internal/services/markdown"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// GithubOidcRenderRequest carries the github-oidc spec plus the region and
// resolved component version the caller settled on.
type GithubOidcRenderRequest struct {
	Region  string
	Version string
	Spec    types.GithubOidcSpec
}

type GithubOidcHCLService struct {
}

func NewGithubOidcHCLService() *GithubOidcHCLService {
	return &GithubOidcHCLService{}
}

// GenerateTerraformProject renders the full github-oidc asset project. The
// only failure mode is an inline policy that is not valid JSON.
func (g *GithubOidcHCLService) GenerateTerraformProject(request GithubOidcRenderRequest) (types.AssetProject, error) {
	mainTf, err := g.generateMainTf(request)
	if err != nil {
		return types.AssetProject{}, err
	}

	return types.AssetProject{
		ComponentName:    types.ComponentGithubOidc,
		ComponentVersion: request.Version,
		ProvidersTf:      generateProvidersTf(),
		VariablesTf:      generateVariablesTf(GetGithubOidcVariableDefinitions()),
		MainTf:           mainTf,
		OutputsTf:        generateOutputsTf(GetGithubOidcOutputDefinitions()),
		InputsAutoTfvars: generateInputsAutoTfvars(GetGithubOidcVariableValues(request)),
		AdditionalFiles: map[string]string{
			"README.md": g.generateReadme(request),
		},
	}, nil
}

func (g *GithubOidcHCLService) generateMainTf(request GithubOidcRenderRequest) (string, error) {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	spec := request.Spec

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("GitHub OIDC identity provider"))
	rootBody.AppendBlock(aws.GenerateOidcProviderResource("github",
		types.GithubOidcUrl,
		[]string{types.GithubOidcAudience},
		"oidc_thumbprint",
		g.resourceTags(spec)))
	rootBody.AppendNewline()

	rootBody.AppendUnstructuredTokens(utils.TokensForComment("Trust policy scoped to the configured repositories"))
	rootBody.AppendBlock(aws.GenerateAssumeRolePolicyDocument("github_assume_role",
		aws.GenerateOidcProviderArnReference("github"),
		types.GithubOidcConditionKey,
		types.GithubOidcAudience,
		spec.TrustSubjects()))
	rootBody.AppendNewline()

	rootBody.AppendBlock(aws.GenerateIamRoleResource("github",
		"role_name",
		aws.GeneratePolicyDocumentJsonReference("github_assume_role"),
		g.resourceTags(spec)))
	rootBody.AppendNewline()

	if len(spec.ManagedPolicyArns) > 0 {
		rootBody.AppendUnstructuredTokens(utils.TokensForComment("Managed policy attachments"))
		for i, policyArn := range spec.ManagedPolicyArns {
			rootBody.AppendBlock(aws.GenerateRolePolicyAttachmentResource(
				fmt.Sprintf("managed_policy_%d", i),
				aws.GenerateIamRoleNameReference("github"),
				policyArn,
			))
			rootBody.AppendNewline()
		}
	}

	if len(spec.InlinePolicies) > 0 {
		rootBody.AppendUnstructuredTokens(utils.TokensForComment("Inline policies"))
		for _, policy := range spec.InlinePolicies {
			policyTokens, err := g.inlinePolicyTokens(policy)
			if err != nil {
				return "", err
			}
			rootBody.AppendBlock(aws.GenerateRolePolicyResource(
				utils.FormatHclResourceName(policy.Name),
				policy.Name,
				aws.GenerateIamRoleIdReference("github"),
				policyTokens,
			))
			rootBody.AppendNewline()
		}
	}

	return string(f.Bytes()), nil
}

// inlinePolicyTokens decodes the policy document and re-emits it as a
// jsonencode(...) expression so the generated HCL stays readable and the
// document is guaranteed to be valid JSON.
func (g *GithubOidcHCLService) inlinePolicyTokens(policy types.InlinePolicy) (hclwrite.Tokens, error) {
	var document any
	if err := json.Unmarshal([]byte(policy.Policy), &document); err != nil {
		return nil, fmt.Errorf("inline policy %q is not valid JSON: %w", policy.Name, err)
	}

	value, err := utils.ConvertToCtyValue(document)
	if err != nil {
		return nil, fmt.Errorf("inline policy %q could not be rendered: %w", policy.Name, err)
	}

	return utils.TokensForFunctionCall("jsonencode", hclwrite.TokensForValue(value)), nil
}

func (g *GithubOidcHCLService) resourceTags(spec types.GithubOidcSpec) map[string]hclwrite.Tokens {
	tags := make(map[string]hclwrite.Tokens, len(spec.AdditionalTags)+1)
	for key, value := range spec.AdditionalTags {
		tags[key] = hclwrite.TokensForValue(cty.StringVal(value))
	}
	tags["Name"] = utils.TokensForVarReference("role_name")

	return tags
}

func (g *GithubOidcHCLService) generateReadme(request GithubOidcRenderRequest) string {
	spec := request.Spec

	md := markdown.New()
	md.AddHeading(fmt.Sprintf("github-oidc %s", request.Version), 1)
	md.AddParagraph(fmt.Sprintf("Terraform assets for the `%s` GitHub Actions deploy role in `%s`. Generated by ncp - do not edit by hand, re-render instead.", spec.RoleName, request.Region))

	rows := [][]string{
		{"aws_iam_openid_connect_provider.github", "OIDC identity provider for " + types.GithubOidcUrl},
		{"aws_iam_role.github", "Role assumable via AssumeRoleWithWebIdentity"},
	}
	for i, policyArn := range spec.ManagedPolicyArns {
		rows = append(rows, []string{
			fmt.Sprintf("aws_iam_role_policy_attachment.managed_policy_%d", i),
			"Attaches " + policyArn,
		})
	}
	for _, policy := range spec.InlinePolicies {
		rows = append(rows, []string{
			fmt.Sprintf("aws_iam_role_policy.%s", utils.FormatHclResourceName(policy.Name)),
			fmt.Sprintf("Inline policy %s", policy.Name),
		})
	}
	md.AddTable([]string{"Resource", "Purpose"}, rows)

	md.AddHeading("Trusted subjects", 2)
	md.AddList(spec.TrustSubjects())

	md.AddHeading("Usage", 2)
	md.AddCodeBlock("terraform init\nterraform plan -out=tfplan\nterraform apply tfplan", "sh")

	return md.String()
}
