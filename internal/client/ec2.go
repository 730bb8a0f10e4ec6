package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"golang.org/x/time/rate"
)

// RateLimitedEC2Client spaces out EC2 describe calls. Preflight fans checks
// out concurrently and large accounts page through DescribeVpcs, which is
// enough to trip the EC2 request token bucket without client-side limiting.
type RateLimitedEC2Client struct {
	*ec2.Client
	limiter *rate.Limiter
}

func NewEC2Client(ctx context.Context, region string, requestsPerSecond float64, burstSize int) (*RateLimitedEC2Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		// https://docs.aws.amazon.com/sdk-for-go/v2/developer-guide/configure-retries-timeouts.html
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(opts *retry.StandardOptions) {
				opts.MaxAttempts = 3
				opts.MaxBackoff = 20 * time.Second
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to load AWS config: %v", err)
	}

	if region != "" {
		cfg.Region = region
	}

	ec2Client := ec2.NewFromConfig(cfg)
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return &RateLimitedEC2Client{
		Client:  ec2Client,
		limiter: limiter,
	}, nil
}

func (c *RateLimitedEC2Client) Wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// DescribeVpcs waits for a rate limiter token before each call and retries
// outside the SDK's standard retryer when EC2 still answers with a throttle.
func (c *RateLimitedEC2Client) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	const maxExtraRetries = 5
	var lastErr error

	for i := 0; i <= maxExtraRetries; i++ {
		if err := c.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter cancelled: %w", err)
		}

		output, err := c.Client.DescribeVpcs(ctx, params, optFns...)
		if err == nil {
			return output, nil
		}

		lastErr = err
		errMsg := err.Error()
		if strings.Contains(errMsg, "RequestLimitExceeded") ||
			strings.Contains(errMsg, "retry quota exceeded") {
			if i < maxExtraRetries {
				continue
			}
		} else {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *RateLimitedEC2Client) DescribeAvailabilityZones(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	return c.Client.DescribeAvailabilityZones(ctx, params, optFns...)
}
