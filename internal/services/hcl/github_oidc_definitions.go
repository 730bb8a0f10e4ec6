package hcl

import (
	"github.com/cloudcomb/ncp/internal/services/hcl/aws"
	"github.com/cloudcomb/ncp/internal/types"
)

type GithubOidcVariableDefinition struct {
	Name           string
	Definition     types.TerraformVariable
	ValueExtractor func(request GithubOidcRenderRequest) any // Extracts the value for inputs.auto.tfvars.
}

var GithubOidcVariables = []GithubOidcVariableDefinition{
	{
		Name: "aws_region",
		Definition: types.TerraformVariable{
			Name:        "aws_region",
			Type:        "string",
			Description: "AWS region the role is created in",
		},
		ValueExtractor: func(request GithubOidcRenderRequest) any { return request.Region },
	},
	{
		Name: "role_name",
		Definition: types.TerraformVariable{
			Name:        "role_name",
			Type:        "string",
			Description: "Name of the IAM role assumed by GitHub Actions",
		},
		ValueExtractor: func(request GithubOidcRenderRequest) any { return request.Spec.RoleName },
	},
	{
		Name: "oidc_thumbprint",
		Definition: types.TerraformVariable{
			Name:        "oidc_thumbprint",
			Type:        "string",
			Description: "SHA-1 thumbprint of the GitHub OIDC token signing certificate",
		},
		ValueExtractor: func(request GithubOidcRenderRequest) any { return request.Spec.Thumbprint },
	},
}

func GetGithubOidcVariableDefinitions() []types.TerraformVariable {
	var definitions []types.TerraformVariable

	for _, varDef := range GithubOidcVariables {
		definitions = append(definitions, varDef.Definition)
	}

	return definitions
}

func GetGithubOidcVariableValues(request GithubOidcRenderRequest) map[string]any {
	values := make(map[string]any)

	for _, varDef := range GithubOidcVariables {
		values[varDef.Name] = varDef.ValueExtractor(request)
	}

	return values
}

func GetGithubOidcOutputDefinitions() []types.TerraformOutput {
	return []types.TerraformOutput{
		{
			Name:        "oidc_provider_arn",
			Value:       aws.GenerateOidcProviderArnReference("github"),
			Description: "ARN of the GitHub OIDC identity provider",
		},
		{
			Name:        "oidc_provider_url",
			Value:       aws.GenerateOidcProviderUrlReference("github"),
			Description: "URL of the GitHub OIDC identity provider",
		},
		{
			Name:        "role_arn",
			Value:       aws.GenerateIamRoleArnReference("github"),
			Description: "ARN of the role assumed by GitHub Actions",
		},
		{
			Name:        "role_name",
			Value:       aws.GenerateIamRoleNameReference("github"),
			Description: "Name of the role assumed by GitHub Actions",
		},
	}
}
