package preflight

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/cloudcomb/ncp/internal/mocks"
	"github.com/cloudcomb/ncp/internal/services/ec2"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func happyIdentity() *mocks.MockIdentityInspector {
	return &mocks.MockIdentityInspector{
		GetCallerIdentityFunc: func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
			return &sts.GetCallerIdentityOutput{
				Account: aws.String("123456789012"),
				Arn:     aws.String("arn:aws:iam::123456789012:role/deployer"),
			}, nil
		},
	}
}

func happyEC2() *mocks.MockEC2Inspector {
	return &mocks.MockEC2Inspector{
		GetAvailableZoneNamesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"eu-west-2a", "eu-west-2b", "eu-west-2c"}, nil
		},
		GetVpcCidrsFunc: func(ctx context.Context) ([]ec2.VpcCidr, error) {
			return []ec2.VpcCidr{{VpcId: "vpc-existing", Cidr: "172.31.0.0/16"}}, nil
		},
	}
}

func happyIAM() *mocks.MockIamInspector {
	return &mocks.MockIamInspector{
		FindOpenIDConnectProviderByUrlFunc: func(ctx context.Context, providerUrl string) (string, bool, error) {
			return "", false, nil
		},
		RoleExistsFunc: func(ctx context.Context, roleName string) (bool, error) {
			return false, nil
		},
		PolicyExistsFunc: func(ctx context.Context, policyArn string) (bool, error) {
			return true, nil
		},
	}
}

func testNetworkSpec() *types.NetworkSpec {
	return &types.NetworkSpec{
		VpcName:            "staging",
		VpcCidr:            "10.0.0.0/16",
		PublicSubnetCidrs:  []string{"10.0.0.0/20", "10.0.16.0/20"},
		PrivateSubnetCidrs: []string{"10.0.128.0/20", "10.0.144.0/20"},
		AvailabilityZones:  []string{"eu-west-2a", "eu-west-2b"},
	}
}

func testGithubOidcSpec() *types.GithubOidcSpec {
	return &types.GithubOidcSpec{
		RoleName:     "staging-deploy",
		Repositories: []string{"cloudcomb/platform"},
	}
}

func resultByName(results []CheckResult, name string) (CheckResult, bool) {
	for _, result := range results {
		if result.Name == name {
			return result, true
		}
	}
	return CheckResult{}, false
}

func TestPreflightService_AllChecksPass(t *testing.T) {
	service := NewPreflightService(happyEC2(), happyIAM(), happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:     "eu-west-2",
		Network:    testNetworkSpec(),
		GithubOidc: testGithubOidcSpec(),
	})

	require.Len(t, results, 5)
	for _, result := range results {
		assert.Equal(t, CheckPass, result.Status, "check %q: %s", result.Name, result.Detail)
	}
	assert.False(t, HasFailures(results))

	// identity first, then network checks, then oidc checks
	assert.Equal(t, "aws identity", results[0].Name)
	assert.Equal(t, "availability zones", results[1].Name)
	assert.Equal(t, "vpc cidr overlap", results[2].Name)
	assert.Equal(t, "github oidc provider", results[3].Name)
	assert.Equal(t, "iam role name", results[4].Name)
}

func TestPreflightService_NilSpecsSkipChecks(t *testing.T) {
	service := NewPreflightService(happyEC2(), happyIAM(), happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{Region: "eu-west-2"})

	require.Len(t, results, 1)
	assert.Equal(t, "aws identity", results[0].Name)
}

func TestPreflightService_MissingZoneFails(t *testing.T) {
	ec2Inspector := happyEC2()
	ec2Inspector.GetAvailableZoneNamesFunc = func(ctx context.Context) ([]string, error) {
		return []string{"eu-west-2a"}, nil
	}
	service := NewPreflightService(ec2Inspector, happyIAM(), happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:  "eu-west-2",
		Network: testNetworkSpec(),
	})

	result, ok := resultByName(results, "availability zones")
	require.True(t, ok)
	assert.Equal(t, CheckFail, result.Status)
	assert.Contains(t, result.Detail, "eu-west-2b")
	assert.True(t, HasFailures(results))
}

func TestPreflightService_VpcOverlapWarns(t *testing.T) {
	ec2Inspector := happyEC2()
	ec2Inspector.GetVpcCidrsFunc = func(ctx context.Context) ([]ec2.VpcCidr, error) {
		return []ec2.VpcCidr{{VpcId: "vpc-existing", Cidr: "10.0.0.0/8"}}, nil
	}
	service := NewPreflightService(ec2Inspector, happyIAM(), happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:  "eu-west-2",
		Network: testNetworkSpec(),
	})

	result, ok := resultByName(results, "vpc cidr overlap")
	require.True(t, ok)
	assert.Equal(t, CheckWarn, result.Status)
	assert.Contains(t, result.Detail, "vpc-existing")

	// a warning alone does not fail the preflight
	assert.False(t, HasFailures(results))
}

func TestPreflightService_ExistingProviderFails(t *testing.T) {
	iamInspector := happyIAM()
	iamInspector.FindOpenIDConnectProviderByUrlFunc = func(ctx context.Context, providerUrl string) (string, bool, error) {
		assert.Equal(t, types.GithubOidcUrl, providerUrl)
		return "arn:aws:iam::123456789012:oidc-provider/token.actions.githubusercontent.com", true, nil
	}
	service := NewPreflightService(happyEC2(), iamInspector, happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:     "eu-west-2",
		GithubOidc: testGithubOidcSpec(),
	})

	result, ok := resultByName(results, "github oidc provider")
	require.True(t, ok)
	assert.Equal(t, CheckFail, result.Status)
	assert.Contains(t, result.Detail, "already registered")
}

func TestPreflightService_ExistingRoleFails(t *testing.T) {
	iamInspector := happyIAM()
	iamInspector.RoleExistsFunc = func(ctx context.Context, roleName string) (bool, error) {
		return roleName == "staging-deploy", nil
	}
	service := NewPreflightService(happyEC2(), iamInspector, happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:     "eu-west-2",
		GithubOidc: testGithubOidcSpec(),
	})

	result, ok := resultByName(results, "iam role name")
	require.True(t, ok)
	assert.Equal(t, CheckFail, result.Status)
	assert.Contains(t, result.Detail, "already exists")
}

func TestPreflightService_ManagedPolicies(t *testing.T) {
	spec := testGithubOidcSpec()
	spec.ManagedPolicyArns = []string{
		"arn:aws:iam::aws:policy/ReadOnlyAccess",
		"arn:aws:iam::123456789012:policy/missing",
	}

	iamInspector := happyIAM()
	iamInspector.PolicyExistsFunc = func(ctx context.Context, policyArn string) (bool, error) {
		return policyArn == "arn:aws:iam::aws:policy/ReadOnlyAccess", nil
	}
	service := NewPreflightService(happyEC2(), iamInspector, happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:     "eu-west-2",
		GithubOidc: spec,
	})

	result, ok := resultByName(results, "managed policies")
	require.True(t, ok)
	assert.Equal(t, CheckFail, result.Status)
	assert.Contains(t, result.Detail, "arn:aws:iam::123456789012:policy/missing")
}

func TestPreflightService_ApiErrorSurfacesAsFail(t *testing.T) {
	identityInspector := &mocks.MockIdentityInspector{
		GetCallerIdentityFunc: func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
			return nil, fmt.Errorf("no credentials configured")
		},
	}
	ec2Inspector := happyEC2()
	ec2Inspector.GetVpcCidrsFunc = func(ctx context.Context) ([]ec2.VpcCidr, error) {
		return nil, fmt.Errorf("throttled")
	}
	service := NewPreflightService(ec2Inspector, happyIAM(), identityInspector)

	results := service.Run(context.Background(), PreflightRequest{
		Region:  "eu-west-2",
		Network: testNetworkSpec(),
	})

	// every requested check still reports, API errors become FAIL results
	require.Len(t, results, 3)

	identity, ok := resultByName(results, "aws identity")
	require.True(t, ok)
	assert.Equal(t, CheckFail, identity.Status)
	assert.Contains(t, identity.Detail, "no credentials configured")

	overlap, ok := resultByName(results, "vpc cidr overlap")
	require.True(t, ok)
	assert.Equal(t, CheckFail, overlap.Status)
	assert.Contains(t, overlap.Detail, "throttled")
}

func TestPreflightService_UnparseableExistingCidrIgnored(t *testing.T) {
	ec2Inspector := happyEC2()
	ec2Inspector.GetVpcCidrsFunc = func(ctx context.Context) ([]ec2.VpcCidr, error) {
		return []ec2.VpcCidr{
			{VpcId: "vpc-broken", Cidr: "not-a-cidr"},
			{VpcId: "vpc-fine", Cidr: "172.31.0.0/16"},
		}, nil
	}
	service := NewPreflightService(ec2Inspector, happyIAM(), happyIdentity())

	results := service.Run(context.Background(), PreflightRequest{
		Region:  "eu-west-2",
		Network: testNetworkSpec(),
	})

	result, ok := resultByName(results, "vpc cidr overlap")
	require.True(t, ok)
	assert.Equal(t, CheckPass, result.Status)
}
