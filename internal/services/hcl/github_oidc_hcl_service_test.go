package hcl

import (
	"testing"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGithubOidcRenderRequest() GithubOidcRenderRequest {
	return GithubOidcRenderRequest{
		Region:  "eu-west-2",
		Version: "2.1.0",
		Spec: types.GithubOidcSpec{
			RoleName:          "staging-deployer",
			Repositories:      []string{"cloudcomb/platform"},
			Branches:          []string{"main"},
			Thumbprint:        types.GithubOidcDefaultThumbprint,
			ManagedPolicyArns: []string{"arn:aws:iam::aws:policy/AmazonVPCFullAccess", "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess"},
			AdditionalTags:    map[string]string{"team": "platform"},
		},
	}
}

func TestGithubOidcHCLService_GenerateTerraformProject_AllFilesValid(t *testing.T) {
	service := NewGithubOidcHCLService()
	project, err := service.GenerateTerraformProject(testGithubOidcRenderRequest())
	require.NoError(t, err)

	assert.Equal(t, types.ComponentGithubOidc, project.ComponentName)
	assert.Equal(t, "2.1.0", project.ComponentVersion)

	requireValidHcl(t, "providers.tf", project.ProvidersTf)
	requireValidHcl(t, "variables.tf", project.VariablesTf)
	requireValidHcl(t, "main.tf", project.MainTf)
	requireValidHcl(t, "outputs.tf", project.OutputsTf)
	requireValidHcl(t, "inputs.auto.tfvars", project.InputsAutoTfvars)

	assert.Contains(t, project.AdditionalFiles, "README.md")
}

func TestGithubOidcHCLService_MainTf_ProviderAndTrustPolicy(t *testing.T) {
	service := NewGithubOidcHCLService()
	project, err := service.GenerateTerraformProject(testGithubOidcRenderRequest())
	require.NoError(t, err)

	mainTf := project.MainTf

	assert.Contains(t, mainTf, `resource "aws_iam_openid_connect_provider" "github"`)
	assert.Contains(t, mainTf, "https://token.actions.githubusercontent.com")
	assert.Contains(t, mainTf, `"sts.amazonaws.com"`)
	assert.Contains(t, mainTf, "var.oidc_thumbprint")

	assert.Contains(t, mainTf, `data "aws_iam_policy_document" "github_assume_role"`)
	assert.Contains(t, mainTf, `"sts:AssumeRoleWithWebIdentity"`)
	assert.Contains(t, mainTf, `"Federated"`)
	assert.Contains(t, mainTf, "aws_iam_openid_connect_provider.github.arn")
	assert.Contains(t, mainTf, `"StringEquals"`)
	assert.Contains(t, mainTf, "token.actions.githubusercontent.com:aud")
	assert.Contains(t, mainTf, `"StringLike"`)
	assert.Contains(t, mainTf, "token.actions.githubusercontent.com:sub")
	assert.Contains(t, mainTf, `"repo:cloudcomb/platform:ref:refs/heads/main"`)

	assert.Contains(t, mainTf, `resource "aws_iam_role" "github"`)
	assert.Regexp(t, `name\s+=\s+var\.role_name`, mainTf)
	assert.Regexp(t, `assume_role_policy\s+=\s+data\.aws_iam_policy_document\.github_assume_role\.json`, mainTf)
}

func TestGithubOidcHCLService_MainTf_ManagedPolicies(t *testing.T) {
	service := NewGithubOidcHCLService()
	project, err := service.GenerateTerraformProject(testGithubOidcRenderRequest())
	require.NoError(t, err)

	mainTf := project.MainTf

	// attachments are indexed from zero in spec order
	assert.Contains(t, mainTf, `resource "aws_iam_role_policy_attachment" "managed_policy_0"`)
	assert.Contains(t, mainTf, `resource "aws_iam_role_policy_attachment" "managed_policy_1"`)
	assert.Contains(t, mainTf, "arn:aws:iam::aws:policy/AmazonVPCFullAccess")
	assert.Contains(t, mainTf, "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess")
	assert.Contains(t, mainTf, "aws_iam_role.github.name")
}

func TestGithubOidcHCLService_MainTf_InlinePolicies(t *testing.T) {
	service := NewGithubOidcHCLService()
	request := testGithubOidcRenderRequest()
	request.Spec.InlinePolicies = []types.InlinePolicy{
		{
			Name:   "state-bucket-access",
			Policy: `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"],"Resource":"*"}]}`,
		},
	}

	project, err := service.GenerateTerraformProject(request)
	require.NoError(t, err)

	mainTf := project.MainTf
	requireValidHcl(t, "main.tf", mainTf)

	assert.Contains(t, mainTf, `resource "aws_iam_role_policy" "state_bucket_access"`)
	assert.Regexp(t, `name\s+=\s+"state-bucket-access"`, mainTf)
	assert.Contains(t, mainTf, "aws_iam_role.github.id")
	assert.Contains(t, mainTf, "jsonencode(")
	assert.Contains(t, mainTf, "s3:GetObject")
	assert.Contains(t, mainTf, "2012-10-17")
}

func TestGithubOidcHCLService_MainTf_InlinePolicyNameSanitized(t *testing.T) {
	service := NewGithubOidcHCLService()
	request := testGithubOidcRenderRequest()
	request.Spec.InlinePolicies = []types.InlinePolicy{
		{
			Name:   "s3.read@prod",
			Policy: `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["s3:GetObject"],"Resource":"*"}]}`,
		},
	}

	project, err := service.GenerateTerraformProject(request)
	require.NoError(t, err)
	requireValidHcl(t, "main.tf", project.MainTf)

	// the resource address is a valid identifier, the IAM name stays as given
	assert.Contains(t, project.MainTf, `resource "aws_iam_role_policy" "s3_read_prod"`)
	assert.Regexp(t, `name\s+=\s+"s3.read@prod"`, project.MainTf)
}

func TestGithubOidcHCLService_MainTf_InvalidInlinePolicy(t *testing.T) {
	service := NewGithubOidcHCLService()
	request := testGithubOidcRenderRequest()
	request.Spec.InlinePolicies = []types.InlinePolicy{
		{Name: "broken", Policy: `{"Version": oops}`},
	}

	_, err := service.GenerateTerraformProject(request)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestGithubOidcHCLService_MainTf_WildcardTrustSubjects(t *testing.T) {
	service := NewGithubOidcHCLService()
	request := testGithubOidcRenderRequest()
	request.Spec.Branches = nil

	project, err := service.GenerateTerraformProject(request)
	require.NoError(t, err)

	assert.Contains(t, project.MainTf, `"repo:cloudcomb/platform:*"`)
}

func TestGithubOidcHCLService_OutputsTf(t *testing.T) {
	service := NewGithubOidcHCLService()
	project, err := service.GenerateTerraformProject(testGithubOidcRenderRequest())
	require.NoError(t, err)

	assert.Contains(t, project.OutputsTf, `output "oidc_provider_arn"`)
	assert.Contains(t, project.OutputsTf, `output "oidc_provider_url"`)
	assert.Contains(t, project.OutputsTf, `output "role_arn"`)
	assert.Contains(t, project.OutputsTf, `output "role_name"`)
	assert.Contains(t, project.OutputsTf, "aws_iam_openid_connect_provider.github.arn")
	assert.Contains(t, project.OutputsTf, "aws_iam_role.github.arn")
}

func TestGithubOidcHCLService_VariablesAndTfvars(t *testing.T) {
	service := NewGithubOidcHCLService()
	project, err := service.GenerateTerraformProject(testGithubOidcRenderRequest())
	require.NoError(t, err)

	assert.Contains(t, project.VariablesTf, `variable "aws_region"`)
	assert.Contains(t, project.VariablesTf, `variable "role_name"`)
	assert.Contains(t, project.VariablesTf, `variable "oidc_thumbprint"`)

	assert.Regexp(t, `role_name\s+=\s+"staging-deployer"`, project.InputsAutoTfvars)
	assert.Regexp(t, `oidc_thumbprint\s+=\s+"`+types.GithubOidcDefaultThumbprint+`"`, project.InputsAutoTfvars)
}

func TestGithubOidcHCLService_IsDeterministic(t *testing.T) {
	service := NewGithubOidcHCLService()
	request := testGithubOidcRenderRequest()
	request.Spec.InlinePolicies = []types.InlinePolicy{
		{
			Name:   "deploy",
			Policy: `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"ec2:*","Resource":"*"}]}`,
		},
	}

	first, err := service.GenerateTerraformProject(request)
	require.NoError(t, err)
	second, err := service.GenerateTerraformProject(request)
	require.NoError(t, err)

	assert.Equal(t, first, second, "rendering the same request twice should be byte-identical")
}
