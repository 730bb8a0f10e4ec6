package client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// NewIAMClient builds the client preflight uses for OIDC provider, role and
// policy lookups. IAM is a global service, the region only picks the STS
// signing region.
func NewIAMClient(ctx context.Context, region string) (*iam.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to load AWS config: %v", err)
	}

	if region != "" {
		cfg.Region = region
	}

	iamClient := iam.NewFromConfig(cfg)

	return iamClient, nil
}
