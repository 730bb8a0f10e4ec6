package github_oidc

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cloudcomb/ncp/internal/services/hcl"
	"github.com/cloudcomb/ncp/internal/types"
)

type GithubOidcOpts struct {
	Region    string
	Version   string
	OutputDir string
	Spec      types.GithubOidcSpec
}

type GithubOidcAssetGenerator struct {
	region    string
	version   string
	outputDir string
	spec      types.GithubOidcSpec
}

func NewGithubOidcAssetGenerator(opts GithubOidcOpts) *GithubOidcAssetGenerator {
	return &GithubOidcAssetGenerator{
		region:    opts.Region,
		version:   opts.Version,
		outputDir: opts.OutputDir,
		spec:      opts.Spec,
	}
}

func (g *GithubOidcAssetGenerator) Run() error {
	slog.Info("🏁 generating github-oidc component", "roleName", g.spec.RoleName, "version", g.version, "region", g.region)

	outputDir := g.outputDir
	if outputDir == "" {
		outputDir = types.ComponentGithubOidc
	}

	slog.Info("📋 generating Terraform configuration")
	hclService := hcl.NewGithubOidcHCLService()
	project, err := hclService.GenerateTerraformProject(hcl.GithubOidcRenderRequest{
		Region:  g.region,
		Version: g.version,
		Spec:    g.spec,
	})
	if err != nil {
		return fmt.Errorf("failed to generate Terraform configuration: %w", err)
	}

	slog.Info("📁 writing github-oidc assets", "directory", outputDir)
	files, err := project.WriteToDir(outputDir)
	if err != nil {
		return fmt.Errorf("failed to write Terraform project: %w", err)
	}
	for _, file := range files {
		slog.Info("✅ wrote " + filepath.Base(file))
	}

	slog.Info("✅ github-oidc component generated", "directory", outputDir)
	return nil
}
