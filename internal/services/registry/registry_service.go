package registry

import (
	"fmt"
	"strings"

	"github.com/cloudcomb/ncp/internal/types"
	version "github.com/hashicorp/go-version"
)

// componentEntry is one catalog row: the latest released version of a
// component and the semver range this build of ncp knows how to render.
type componentEntry struct {
	Latest    string
	Supported string
}

var catalog = map[string]componentEntry{
	types.ComponentNetwork:    {Latest: "1.4.0", Supported: ">= 1.0.0, < 2.0.0"},
	types.ComponentGithubOidc: {Latest: "1.1.0", Supported: ">= 1.0.0, < 2.0.0"},
}

// renderOrder keeps component listings stable.
var renderOrder = []string{types.ComponentNetwork, types.ComponentGithubOidc}

type RegistryService struct{}

func NewRegistryService() *RegistryService {
	return &RegistryService{}
}

// Components lists the known component names in render order.
func (rs *RegistryService) Components() []string {
	components := make([]string, len(renderOrder))
	copy(components, renderOrder)
	return components
}

// LatestVersion returns the latest released version of a component.
func (rs *RegistryService) LatestVersion(component string) (string, error) {
	entry, ok := catalog[component]
	if !ok {
		return "", rs.unknownComponentError(component)
	}
	return entry.Latest, nil
}

// SupportedRange returns the semver range this build supports for a component.
func (rs *RegistryService) SupportedRange(component string) (string, error) {
	entry, ok := catalog[component]
	if !ok {
		return "", rs.unknownComponentError(component)
	}
	return entry.Supported, nil
}

// Resolve turns a version pin into the effective component version: the
// normalized pin when one is given (a leading "v" is accepted), otherwise the
// latest version. Pins outside the supported range are rejected.
func (rs *RegistryService) Resolve(component, pin string) (string, error) {
	entry, ok := catalog[component]
	if !ok {
		return "", rs.unknownComponentError(component)
	}

	if pin == "" {
		return entry.Latest, nil
	}

	pinned, err := version.NewVersion(pin)
	if err != nil {
		return "", fmt.Errorf("invalid version pin %q for component %s: %w", pin, component, err)
	}

	constraints, err := version.NewConstraint(entry.Supported)
	if err != nil {
		return "", fmt.Errorf("invalid supported range %q for component %s: %w", entry.Supported, component, err)
	}

	if !constraints.Check(pinned) {
		return "", fmt.Errorf("version %s of component %s is outside the supported range %s", pinned, component, entry.Supported)
	}

	return pinned.String(), nil
}

func (rs *RegistryService) unknownComponentError(component string) error {
	return fmt.Errorf("unknown component %q (known components: %s)", component, strings.Join(rs.Components(), ", "))
}
