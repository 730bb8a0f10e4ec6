//go:build integration

package hcl

import (
	"path/filepath"
	"testing"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/gruntwork-io/terratest/modules/terraform"
	"github.com/stretchr/testify/require"
)

// These tests shell out to a real terraform binary and hit the provider
// registry, so they only run with:
//
//	go test -tags integration ./internal/services/hcl/
//
// They catch the class of rendering bug the HCL parser cannot: references to
// resources that were never rendered, provider argument typos, type
// mismatches between variables and tfvars.

func TestNetworkProject_TerraformValidate(t *testing.T) {
	project := NewNetworkHCLService().GenerateTerraformProject(testNetworkRenderRequest())

	assetDir := filepath.Join(t.TempDir(), types.ComponentNetwork)
	_, err := project.WriteToDir(assetDir)
	require.NoError(t, err)

	terraformOptions := terraform.WithDefaultRetryableErrors(t, &terraform.Options{
		TerraformDir: assetDir,
		NoColor:      true,
	})

	terraform.Init(t, terraformOptions)
	terraform.Validate(t, terraformOptions)
}

func TestNetworkProject_TerraformValidateWithoutNat(t *testing.T) {
	request := testNetworkRenderRequest()
	request.Spec.EnableNatGateway = false
	project := NewNetworkHCLService().GenerateTerraformProject(request)

	assetDir := filepath.Join(t.TempDir(), types.ComponentNetwork)
	_, err := project.WriteToDir(assetDir)
	require.NoError(t, err)

	terraformOptions := terraform.WithDefaultRetryableErrors(t, &terraform.Options{
		TerraformDir: assetDir,
		NoColor:      true,
	})

	terraform.Init(t, terraformOptions)
	terraform.Validate(t, terraformOptions)
}

func TestGithubOidcProject_TerraformValidate(t *testing.T) {
	project, err := NewGithubOidcHCLService().GenerateTerraformProject(testGithubOidcRenderRequest())
	require.NoError(t, err)

	assetDir := filepath.Join(t.TempDir(), types.ComponentGithubOidc)
	_, err = project.WriteToDir(assetDir)
	require.NoError(t, err)

	terraformOptions := terraform.WithDefaultRetryableErrors(t, &terraform.Options{
		TerraformDir: assetDir,
		NoColor:      true,
	})

	terraform.Init(t, terraformOptions)
	terraform.Validate(t, terraformOptions)
}
