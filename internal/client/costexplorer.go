package client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
)

// NewCostExplorerClient builds the client behind `ncp report costs`. Cost
// Explorer only serves from us-east-1 regardless of where the estate runs,
// so the estate region travels as a REGION dimension filter instead.
func NewCostExplorerClient(ctx context.Context) (*costexplorer.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to load AWS config: %v", err)
	}

	costExplorerClient := costexplorer.NewFromConfig(cfg)

	return costExplorerClient, nil
}
