package mocks

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/cloudcomb/ncp/internal/services/ec2"
)

// MockEC2Inspector is a mock implementation of the preflight EC2Inspector interface
type MockEC2Inspector struct {
	GetAvailableZoneNamesFunc func(ctx context.Context) ([]string, error)
	GetVpcCidrsFunc           func(ctx context.Context) ([]ec2.VpcCidr, error)
}

func (m *MockEC2Inspector) GetAvailableZoneNames(ctx context.Context) ([]string, error) {
	return m.GetAvailableZoneNamesFunc(ctx)
}

func (m *MockEC2Inspector) GetVpcCidrs(ctx context.Context) ([]ec2.VpcCidr, error) {
	return m.GetVpcCidrsFunc(ctx)
}

// MockIamInspector is a mock implementation of the preflight IamInspector interface
type MockIamInspector struct {
	FindOpenIDConnectProviderByUrlFunc func(ctx context.Context, providerUrl string) (string, bool, error)
	RoleExistsFunc                     func(ctx context.Context, roleName string) (bool, error)
	PolicyExistsFunc                   func(ctx context.Context, policyArn string) (bool, error)
}

func (m *MockIamInspector) FindOpenIDConnectProviderByUrl(ctx context.Context, providerUrl string) (string, bool, error) {
	return m.FindOpenIDConnectProviderByUrlFunc(ctx, providerUrl)
}

func (m *MockIamInspector) RoleExists(ctx context.Context, roleName string) (bool, error) {
	return m.RoleExistsFunc(ctx, roleName)
}

func (m *MockIamInspector) PolicyExists(ctx context.Context, policyArn string) (bool, error) {
	return m.PolicyExistsFunc(ctx, policyArn)
}

// MockIdentityInspector is a mock implementation of the preflight IdentityInspector interface
type MockIdentityInspector struct {
	GetCallerIdentityFunc func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func (m *MockIdentityInspector) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.GetCallerIdentityFunc(ctx, params, optFns...)
}

// MockArtifactUploader is a mock implementation of the registry ArtifactUploader interface
type MockArtifactUploader struct {
	CheckBucketAccessFunc func(ctx context.Context, bucket string) error
	UploadFunc            func(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
}

func (m *MockArtifactUploader) CheckBucketAccess(ctx context.Context, bucket string) error {
	return m.CheckBucketAccessFunc(ctx, bucket)
}

func (m *MockArtifactUploader) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error) {
	return m.UploadFunc(ctx, bucket, key, body, contentType)
}
