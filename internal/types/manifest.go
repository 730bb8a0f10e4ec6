package types

// DefaultManifestFile is the manifest filename looked up when --manifest is not given.
const DefaultManifestFile = "ncp.yaml"

// Manifest describes one environment: where it lives, how it is tagged, and
// which component versions it pins.
type Manifest struct {
	Name       string             `yaml:"name" json:"name"`
	Region     string             `yaml:"region" json:"region"`
	Tags       map[string]string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Components ManifestComponents `yaml:"components" json:"components"`
}

// ManifestComponents holds the optional component entries of a manifest.
type ManifestComponents struct {
	Network    *NetworkComponent    `yaml:"network,omitempty" json:"network,omitempty"`
	GithubOidc *GithubOidcComponent `yaml:"githubOidc,omitempty" json:"github_oidc,omitempty"`
}

// NetworkComponent pins a network component version to a spec.
type NetworkComponent struct {
	Version string      `yaml:"version,omitempty" json:"version,omitempty"`
	Spec    NetworkSpec `yaml:"spec" json:"spec"`
}

// GithubOidcComponent pins a github-oidc component version to a spec.
type GithubOidcComponent struct {
	Version string         `yaml:"version,omitempty" json:"version,omitempty"`
	Spec    GithubOidcSpec `yaml:"spec" json:"spec"`
}

// HasComponents reports whether the manifest declares at least one component.
func (m *Manifest) HasComponents() bool {
	return m.Components.Network != nil || m.Components.GithubOidc != nil
}

// ComponentNames lists the declared components in render order.
func (m *Manifest) ComponentNames() []string {
	var names []string
	if m.Components.Network != nil {
		names = append(names, ComponentNetwork)
	}
	if m.Components.GithubOidc != nil {
		names = append(names, ComponentGithubOidc)
	}
	return names
}

// MergedTags overlays component tags on top of the environment tags.
func (m *Manifest) MergedTags(componentTags map[string]string) map[string]string {
	merged := make(map[string]string, len(m.Tags)+len(componentTags))
	for k, v := range m.Tags {
		merged[k] = v
	}
	for k, v := range componentTags {
		merged[k] = v
	}
	return merged
}
