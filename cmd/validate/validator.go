package validate

import (
	"fmt"
	"log/slog"

	"github.com/cloudcomb/ncp/internal/services/manifest"
	"github.com/cloudcomb/ncp/internal/services/registry"
)

type ValidatorOpts struct {
	ManifestFile string
}

type Validator struct {
	manifestFile string
}

func NewValidator(opts ValidatorOpts) *Validator {
	return &Validator{
		manifestFile: opts.ManifestFile,
	}
}

func (v *Validator) Run() error {
	slog.Info("🏁 validating environment manifest", "manifest", v.manifestFile)

	environmentManifest, err := manifest.LoadManifest(v.manifestFile)
	if err != nil {
		return err
	}

	registryService := registry.NewRegistryService()
	if err := manifest.ApplyDefaults(environmentManifest, registryService); err != nil {
		return err
	}

	valid, errs := manifest.ValidateManifest(environmentManifest, registryService)
	if !valid {
		for _, validationErr := range errs {
			slog.Error("❌ " + validationErr.Error())
		}
		return fmt.Errorf("manifest %s has %d validation error(s)", v.manifestFile, len(errs))
	}

	for _, component := range environmentManifest.ComponentNames() {
		slog.Info("✅ component spec is valid", "component", component)
	}
	slog.Info("✅ manifest is valid", "environment", environmentManifest.Name, "region", environmentManifest.Region)

	return nil
}
