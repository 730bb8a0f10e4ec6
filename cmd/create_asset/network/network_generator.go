package network

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cloudcomb/ncp/internal/services/hcl"
	"github.com/cloudcomb/ncp/internal/types"
)

type NetworkOpts struct {
	Region    string
	Version   string
	OutputDir string
	Spec      types.NetworkSpec
}

type NetworkAssetGenerator struct {
	region    string
	version   string
	outputDir string
	spec      types.NetworkSpec
}

func NewNetworkAssetGenerator(opts NetworkOpts) *NetworkAssetGenerator {
	return &NetworkAssetGenerator{
		region:    opts.Region,
		version:   opts.Version,
		outputDir: opts.OutputDir,
		spec:      opts.Spec,
	}
}

func (n *NetworkAssetGenerator) Run() error {
	slog.Info("🏁 generating network component", "vpcName", n.spec.VpcName, "version", n.version, "region", n.region)

	outputDir := n.outputDir
	if outputDir == "" {
		outputDir = types.ComponentNetwork
	}

	slog.Info("📋 generating Terraform configuration")
	hclService := hcl.NewNetworkHCLService()
	project := hclService.GenerateTerraformProject(hcl.NetworkRenderRequest{
		Region:  n.region,
		Version: n.version,
		Spec:    n.spec,
	})

	slog.Info("📁 writing network assets", "directory", outputDir)
	files, err := project.WriteToDir(outputDir)
	if err != nil {
		return fmt.Errorf("failed to write Terraform project: %w", err)
	}
	for _, file := range files {
		slog.Info("✅ wrote " + filepath.Base(file))
	}

	slog.Info("✅ network component generated", "directory", outputDir)
	return nil
}
