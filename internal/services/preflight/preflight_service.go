package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/cloudcomb/ncp/internal/services/ec2"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"golang.org/x/sync/errgroup"
)

type CheckStatus string

const (
	CheckPass CheckStatus = "PASS"
	CheckWarn CheckStatus = "WARN"
	CheckFail CheckStatus = "FAIL"
)

// CheckResult is the outcome of a single preflight check.
type CheckResult struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail"`
}

// PreflightRequest selects which checks run. Component specs left nil skip
// their checks; the identity check always runs.
type PreflightRequest struct {
	Region     string
	Network    *types.NetworkSpec
	GithubOidc *types.GithubOidcSpec
}

// EC2Inspector covers the EC2 lookups preflight needs.
type EC2Inspector interface {
	GetAvailableZoneNames(ctx context.Context) ([]string, error)
	GetVpcCidrs(ctx context.Context) ([]ec2.VpcCidr, error)
}

// IamInspector covers the IAM lookups preflight needs.
type IamInspector interface {
	FindOpenIDConnectProviderByUrl(ctx context.Context, providerUrl string) (string, bool, error)
	RoleExists(ctx context.Context, roleName string) (bool, error)
	PolicyExists(ctx context.Context, policyArn string) (bool, error)
}

// IdentityInspector is satisfied by *sts.Client.
type IdentityInspector interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type PreflightService struct {
	ec2Inspector      EC2Inspector
	iamInspector      IamInspector
	identityInspector IdentityInspector
}

func NewPreflightService(ec2Inspector EC2Inspector, iamInspector IamInspector, identityInspector IdentityInspector) *PreflightService {
	return &PreflightService{
		ec2Inspector:      ec2Inspector,
		iamInspector:      iamInspector,
		identityInspector: identityInspector,
	}
}

// Run executes the checks for the requested components against the live
// account. API failures surface as FAIL results rather than aborting the run,
// so the report always covers every check. Results come back in a fixed order
// regardless of which check finishes first.
func (ps *PreflightService) Run(ctx context.Context, request PreflightRequest) []CheckResult {
	slog.Info("🚀 running preflight checks", "region", request.Region)

	var (
		identityResult CheckResult
		networkResults []CheckResult
		oidcResults    []CheckResult
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		identityResult = ps.checkIdentity(gCtx)
		return nil
	})

	if request.Network != nil {
		g.Go(func() error {
			networkResults = ps.checkNetwork(gCtx, request.Region, request.Network)
			return nil
		})
	}

	if request.GithubOidc != nil {
		g.Go(func() error {
			oidcResults = ps.checkGithubOidc(gCtx, request.GithubOidc)
			return nil
		})
	}

	// Check funcs never return errors, they report them as FAIL results.
	_ = g.Wait()

	results := []CheckResult{identityResult}
	results = append(results, networkResults...)
	results = append(results, oidcResults...)
	return results
}

// HasFailures reports whether any check failed. WARN results do not count.
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == CheckFail {
			return true
		}
	}
	return false
}

func (ps *PreflightService) checkIdentity(ctx context.Context) CheckResult {
	result := CheckResult{Name: "aws identity"}

	output, err := ps.identityInspector.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("failed to resolve caller identity: %v", err)
		return result
	}

	result.Status = CheckPass
	result.Detail = fmt.Sprintf("authenticated as %s (account %s)", aws.ToString(output.Arn), aws.ToString(output.Account))
	return result
}

func (ps *PreflightService) checkNetwork(ctx context.Context, region string, spec *types.NetworkSpec) []CheckResult {
	return []CheckResult{
		ps.checkAvailabilityZones(ctx, region, spec),
		ps.checkVpcCidrOverlap(ctx, spec),
	}
}

func (ps *PreflightService) checkAvailabilityZones(ctx context.Context, region string, spec *types.NetworkSpec) CheckResult {
	result := CheckResult{Name: "availability zones"}

	availableZones, err := ps.ec2Inspector.GetAvailableZoneNames(ctx)
	if err != nil {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("failed to list availability zones: %v", err)
		return result
	}

	available := make(map[string]bool, len(availableZones))
	for _, zone := range availableZones {
		available[zone] = true
	}

	var missing []string
	for _, zone := range spec.AvailabilityZones {
		if !available[zone] {
			missing = append(missing, zone)
		}
	}

	if len(missing) > 0 {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("zones not available in %s: %s", region, strings.Join(missing, ", "))
		return result
	}

	result.Status = CheckPass
	result.Detail = fmt.Sprintf("all %d requested zones are available", len(spec.AvailabilityZones))
	return result
}

// checkVpcCidrOverlap warns rather than fails: AWS permits overlapping VPC
// CIDRs, but deploying one usually signals a planning mistake and rules out
// peering later.
func (ps *PreflightService) checkVpcCidrOverlap(ctx context.Context, spec *types.NetworkSpec) CheckResult {
	result := CheckResult{Name: "vpc cidr overlap"}

	existingCidrs, err := ps.ec2Inspector.GetVpcCidrs(ctx)
	if err != nil {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("failed to list VPC CIDRs: %v", err)
		return result
	}

	var overlapping []string
	for _, existing := range existingCidrs {
		overlap, err := utils.CidrsOverlap(spec.VpcCidr, existing.Cidr)
		if err != nil {
			// Unparseable CIDRs on existing VPCs are not this deployment's problem.
			continue
		}
		if overlap {
			overlapping = append(overlapping, fmt.Sprintf("%s (%s)", existing.VpcId, existing.Cidr))
		}
	}

	if len(overlapping) > 0 {
		result.Status = CheckWarn
		result.Detail = fmt.Sprintf("%s overlaps existing VPCs: %s", spec.VpcCidr, strings.Join(overlapping, ", "))
		return result
	}

	result.Status = CheckPass
	result.Detail = fmt.Sprintf("%s does not overlap any of the %d existing VPC CIDRs", spec.VpcCidr, len(existingCidrs))
	return result
}

func (ps *PreflightService) checkGithubOidc(ctx context.Context, spec *types.GithubOidcSpec) []CheckResult {
	results := []CheckResult{
		ps.checkOidcProvider(ctx),
		ps.checkRoleName(ctx, spec),
	}
	if len(spec.ManagedPolicyArns) > 0 {
		results = append(results, ps.checkManagedPolicies(ctx, spec))
	}
	return results
}

func (ps *PreflightService) checkOidcProvider(ctx context.Context) CheckResult {
	result := CheckResult{Name: "github oidc provider"}

	arn, found, err := ps.iamInspector.FindOpenIDConnectProviderByUrl(ctx, types.GithubOidcUrl)
	if err != nil {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("failed to list OIDC providers: %v", err)
		return result
	}

	if found {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("provider for %s already registered: %s", types.GithubOidcUrl, arn)
		return result
	}

	result.Status = CheckPass
	result.Detail = fmt.Sprintf("no existing provider for %s", types.GithubOidcUrl)
	return result
}

func (ps *PreflightService) checkRoleName(ctx context.Context, spec *types.GithubOidcSpec) CheckResult {
	result := CheckResult{Name: "iam role name"}

	exists, err := ps.iamInspector.RoleExists(ctx, spec.RoleName)
	if err != nil {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("failed to look up role %s: %v", spec.RoleName, err)
		return result
	}

	if exists {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("role %s already exists", spec.RoleName)
		return result
	}

	result.Status = CheckPass
	result.Detail = fmt.Sprintf("role name %s is free", spec.RoleName)
	return result
}

func (ps *PreflightService) checkManagedPolicies(ctx context.Context, spec *types.GithubOidcSpec) CheckResult {
	result := CheckResult{Name: "managed policies"}

	var unresolvable []string
	for _, policyArn := range spec.ManagedPolicyArns {
		exists, err := ps.iamInspector.PolicyExists(ctx, policyArn)
		if err != nil {
			result.Status = CheckFail
			result.Detail = fmt.Sprintf("failed to look up policy %s: %v", policyArn, err)
			return result
		}
		if !exists {
			unresolvable = append(unresolvable, policyArn)
		}
	}

	if len(unresolvable) > 0 {
		result.Status = CheckFail
		result.Detail = fmt.Sprintf("policies not found: %s", strings.Join(unresolvable, ", "))
		return result
	}

	result.Status = CheckPass
	result.Detail = fmt.Sprintf("all %d managed policies resolve", len(spec.ManagedPolicyArns))
	return result
}
