package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustSubjects(t *testing.T) {
	tests := []struct {
		name             string
		spec             GithubOidcSpec
		expectedSubjects []string
	}{
		{
			name: "branches produce per-branch refs",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure"},
				Branches:     []string{"main", "release"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:ref:refs/heads/main",
				"repo:acme/infrastructure:ref:refs/heads/release",
			},
		},
		{
			name: "branches take precedence over environments",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure"},
				Branches:     []string{"main"},
				Environments: []string{"production"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:ref:refs/heads/main",
			},
		},
		{
			name: "wildcard branch falls through to environments",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure"},
				Branches:     []string{"*"},
				Environments: []string{"production"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:environment:production",
			},
		},
		{
			name: "environments alone produce environment subjects",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure"},
				Environments: []string{"staging", "production"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:environment:staging",
				"repo:acme/infrastructure:environment:production",
			},
		},
		{
			name: "no narrowing trusts the whole repository",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:*",
			},
		},
		{
			name: "wildcard branch alone trusts the whole repository",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure"},
				Branches:     []string{"*"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:*",
			},
		},
		{
			name: "multiple repositories fan out",
			spec: GithubOidcSpec{
				Repositories: []string{"acme/infrastructure", "acme/services"},
				Branches:     []string{"main"},
			},
			expectedSubjects: []string{
				"repo:acme/infrastructure:ref:refs/heads/main",
				"repo:acme/services:ref:refs/heads/main",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedSubjects, tt.spec.TrustSubjects())
		})
	}
}

func TestGithubOidcSpecNormalize(t *testing.T) {
	spec := GithubOidcSpec{RoleName: "gha-deploy"}
	spec.Normalize()
	assert.Equal(t, GithubOidcDefaultThumbprint, spec.Thumbprint)

	spec = GithubOidcSpec{RoleName: "gha-deploy", Thumbprint: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	spec.Normalize()
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", spec.Thumbprint)
}
