package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cloudcomb/ncp/internal/services/hcl"
	"github.com/cloudcomb/ncp/internal/services/manifest"
	"github.com/cloudcomb/ncp/internal/services/persistence"
	"github.com/cloudcomb/ncp/internal/services/registry"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/google/uuid"
)

type RendererOpts struct {
	ManifestFile string
	OutputDir    string
}

type Renderer struct {
	manifestFile string
	outputDir    string
}

func NewRenderer(opts RendererOpts) *Renderer {
	return &Renderer{
		manifestFile: opts.ManifestFile,
		outputDir:    opts.OutputDir,
	}
}

func (r *Renderer) Run() error {
	ctx := context.Background()

	slog.Info("🏁 rendering environment", "manifest", r.manifestFile)

	environmentManifest, err := manifest.LoadManifest(r.manifestFile)
	if err != nil {
		return err
	}

	registryService := registry.NewRegistryService()
	if err := manifest.ApplyDefaults(environmentManifest, registryService); err != nil {
		return err
	}

	valid, errs := manifest.ValidateManifest(environmentManifest, registryService)
	if !valid {
		return fmt.Errorf("manifest %s is invalid: %w", r.manifestFile, errors.Join(errs...))
	}

	outputDir := r.outputDir
	if outputDir == "" {
		outputDir = filepath.Join("ncp-assets", environmentManifest.Name)
	}

	deployment, err := r.loadOrCreateDeployment(outputDir, environmentManifest)
	if err != nil {
		return err
	}

	// An applied deployment refuses a re-render, its assets describe live
	// resources. This has to surface before any file is touched.
	if err := deployment.Transition(ctx, types.EventRender); err != nil {
		return err
	}

	slog.Info("📁 rendering assets", "environment", environmentManifest.Name, "directory", outputDir)

	componentVersions := map[string]string{}

	if network := environmentManifest.Components.Network; network != nil {
		spec := network.Spec
		spec.AdditionalTags = environmentManifest.MergedTags(spec.AdditionalTags)

		slog.Info("📋 generating Terraform configuration", "component", types.ComponentNetwork, "version", network.Version)
		project := hcl.NewNetworkHCLService().GenerateTerraformProject(hcl.NetworkRenderRequest{
			Region:  environmentManifest.Region,
			Version: network.Version,
			Spec:    spec,
		})

		if err := r.writeProject(outputDir, types.ComponentNetwork, project); err != nil {
			return err
		}
		componentVersions[types.ComponentNetwork] = network.Version
	}

	if githubOidc := environmentManifest.Components.GithubOidc; githubOidc != nil {
		spec := githubOidc.Spec
		spec.AdditionalTags = environmentManifest.MergedTags(spec.AdditionalTags)

		slog.Info("📋 generating Terraform configuration", "component", types.ComponentGithubOidc, "version", githubOidc.Version)
		project, err := hcl.NewGithubOidcHCLService().GenerateTerraformProject(hcl.GithubOidcRenderRequest{
			Region:  environmentManifest.Region,
			Version: githubOidc.Version,
			Spec:    spec,
		})
		if err != nil {
			return fmt.Errorf("failed to generate github-oidc configuration: %w", err)
		}

		if err := r.writeProject(outputDir, types.ComponentGithubOidc, project); err != nil {
			return err
		}
		componentVersions[types.ComponentGithubOidc] = githubOidc.Version
	}

	deployment.RunId = uuid.NewString()
	deployment.ComponentVersions = componentVersions

	store := persistence.NewDeploymentStore(outputDir)
	if err := store.SaveWithRetry(deployment); err != nil {
		return err
	}

	slog.Info("✅ environment rendered", "environment", environmentManifest.Name, "runId", deployment.RunId, "directory", outputDir)
	return nil
}

func (r *Renderer) loadOrCreateDeployment(outputDir string, environmentManifest *types.Manifest) (*types.Deployment, error) {
	store := persistence.NewDeploymentStore(outputDir)
	if !store.Exists() {
		return types.NewDeployment(environmentManifest.Name, environmentManifest.Region), nil
	}

	deployment, err := types.LoadDeployment(outputDir)
	if err != nil {
		return nil, err
	}

	if deployment.Environment != environmentManifest.Name {
		return nil, fmt.Errorf("asset directory %s belongs to environment %q, not %q", outputDir, deployment.Environment, environmentManifest.Name)
	}

	return deployment, nil
}

func (r *Renderer) writeProject(outputDir, component string, project types.AssetProject) error {
	componentDir := filepath.Join(outputDir, component)

	files, err := project.WriteToDir(componentDir)
	if err != nil {
		return fmt.Errorf("failed to write %s project: %w", component, err)
	}
	for _, file := range files {
		slog.Info("✅ wrote " + filepath.Join(component, filepath.Base(file)))
	}

	return nil
}
