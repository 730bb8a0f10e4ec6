package types

import (
	"fmt"
	"slices"
)

const (
	// GithubOidcUrl is the issuer URL of the GitHub Actions OIDC provider.
	GithubOidcUrl = "https://token.actions.githubusercontent.com"

	// GithubOidcAudience is the audience GitHub Actions presents when assuming a role.
	GithubOidcAudience = "sts.amazonaws.com"

	// GithubOidcDefaultThumbprint is the thumbprint of the GitHub Actions OIDC root CA.
	GithubOidcDefaultThumbprint = "6938fd4d98bab03faadb97b34396831e3780aea1"

	// GithubOidcConditionKey is the claim prefix used in trust policy conditions.
	GithubOidcConditionKey = "token.actions.githubusercontent.com"
)

// InlinePolicy is an IAM policy document attached directly to the role.
type InlinePolicy struct {
	Name   string `yaml:"name" json:"name"`
	Policy string `yaml:"policy" json:"policy"`
}

// GithubOidcSpec describes the github-oidc component: an IAM OIDC provider for
// GitHub Actions and a role whose trust policy is scoped to selected
// repositories, optionally narrowed to branches or environments.
type GithubOidcSpec struct {
	RoleName          string            `yaml:"roleName" json:"role_name"`
	Repositories      []string          `yaml:"repositories" json:"repositories"`
	Branches          []string          `yaml:"branches,omitempty" json:"branches,omitempty"`
	Environments      []string          `yaml:"environments,omitempty" json:"environments,omitempty"`
	Thumbprint        string            `yaml:"thumbprint,omitempty" json:"thumbprint,omitempty"`
	ManagedPolicyArns []string          `yaml:"managedPolicyArns,omitempty" json:"managed_policy_arns,omitempty"`
	InlinePolicies    []InlinePolicy    `yaml:"inlinePolicies,omitempty" json:"inline_policies,omitempty"`
	AdditionalTags    map[string]string `yaml:"additionalTags,omitempty" json:"additional_tags,omitempty"`
}

// Normalize fills spec defaults.
func (s *GithubOidcSpec) Normalize() {
	if s.Thumbprint == "" {
		s.Thumbprint = GithubOidcDefaultThumbprint
	}
}

// TrustSubjects derives the `sub` claim patterns for the role trust policy.
// Branch restrictions take precedence over environment restrictions; a
// wildcard branch entry disables branch narrowing. With neither, the whole
// repository is trusted.
func (s *GithubOidcSpec) TrustSubjects() []string {
	var subjects []string

	switch {
	case len(s.Branches) > 0 && !slices.Contains(s.Branches, "*"):
		for _, repository := range s.Repositories {
			for _, branch := range s.Branches {
				subjects = append(subjects, fmt.Sprintf("repo:%s:ref:refs/heads/%s", repository, branch))
			}
		}
	case len(s.Environments) > 0:
		for _, repository := range s.Repositories {
			for _, environment := range s.Environments {
				subjects = append(subjects, fmt.Sprintf("repo:%s:environment:%s", repository, environment))
			}
		}
	default:
		for _, repository := range s.Repositories {
			subjects = append(subjects, fmt.Sprintf("repo:%s:*", repository))
		}
	}

	return subjects
}
