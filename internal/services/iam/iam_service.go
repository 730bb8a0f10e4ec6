package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

type IAMService struct {
	client *awsiam.Client
}

func NewIAMService(iamClient *awsiam.Client) *IAMService {
	return &IAMService{
		client: iamClient,
	}
}

// FindOpenIDConnectProviderByUrl looks for an OIDC provider registered for the
// given issuer URL and returns its ARN when one exists. The comparison ignores
// the scheme because GetOpenIDConnectProvider reports URLs without it.
func (is *IAMService) FindOpenIDConnectProviderByUrl(ctx context.Context, providerUrl string) (string, bool, error) {
	listOutput, err := is.client.ListOpenIDConnectProviders(ctx, &awsiam.ListOpenIDConnectProvidersInput{})
	if err != nil {
		return "", false, fmt.Errorf("❌ Failed to list OIDC providers: %v", err)
	}

	wantUrl := strings.TrimPrefix(providerUrl, "https://")
	for _, provider := range listOutput.OpenIDConnectProviderList {
		getOutput, err := is.client.GetOpenIDConnectProvider(ctx, &awsiam.GetOpenIDConnectProviderInput{
			OpenIDConnectProviderArn: provider.Arn,
		})
		if err != nil {
			return "", false, fmt.Errorf("❌ Failed to get OIDC provider %s: %v", aws.ToString(provider.Arn), err)
		}
		if strings.TrimPrefix(aws.ToString(getOutput.Url), "https://") == wantUrl {
			return aws.ToString(provider.Arn), true, nil
		}
	}

	return "", false, nil
}

// RoleExists reports whether an IAM role with the given name already exists
// in the account.
func (is *IAMService) RoleExists(ctx context.Context, roleName string) (bool, error) {
	_, err := is.client.GetRole(ctx, &awsiam.GetRoleInput{
		RoleName: aws.String(roleName),
	})
	if err != nil {
		var notFound *iamtypes.NoSuchEntityException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("❌ Failed to get role %s: %v", roleName, err)
	}
	return true, nil
}

// PolicyExists reports whether the managed policy ARN resolves to a policy.
func (is *IAMService) PolicyExists(ctx context.Context, policyArn string) (bool, error) {
	_, err := is.client.GetPolicy(ctx, &awsiam.GetPolicyInput{
		PolicyArn: aws.String(policyArn),
	})
	if err != nil {
		var notFound *iamtypes.NoSuchEntityException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("❌ Failed to get policy %s: %v", policyArn, err)
	}
	return true, nil
}
