package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
	"github.com/goccy/go-yaml"
)

// VersionResolver is satisfied by the registry service.
type VersionResolver interface {
	Resolve(component, pin string) (string, error)
}

// tagKeys name the map fields whose keys are user data. Key normalization
// must not touch anything below them.
var tagKeys = map[string]bool{
	"tags":           true,
	"additionalTags": true,
}

// LoadManifest reads and parses an environment manifest.
func LoadManifest(path string) (*types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return manifest, nil
}

// ParseManifest decodes manifest YAML. Keys are accepted in both snake_case
// and camelCase (vpc_cidr ≡ vpcCidr); unknown keys are an error.
func ParseManifest(data []byte) (*types.Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	normalized, err := yaml.Marshal(normalizeKeys(raw, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to normalize manifest keys: %w", err)
	}

	var manifest types.Manifest
	if err := yaml.UnmarshalWithOptions(normalized, &manifest, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return &manifest, nil
}

// SaveManifest writes the manifest with stable key order.
func SaveManifest(path string, manifest *types.Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// normalizeKeys rewrites snake_case mapping keys to camelCase at any depth,
// except below tag maps, whose keys belong to the user.
func normalizeKeys(node any, parentKey string) any {
	if tagKeys[parentKey] {
		return node
	}

	switch value := node.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(value))
		for key, child := range value {
			camelKey := snakeToCamel(key)
			normalized[camelKey] = normalizeKeys(child, camelKey)
		}
		return normalized
	case map[any]any:
		normalized := make(map[string]any, len(value))
		for key, child := range value {
			camelKey := snakeToCamel(fmt.Sprintf("%v", key))
			normalized[camelKey] = normalizeKeys(child, camelKey)
		}
		return normalized
	case []any:
		normalized := make([]any, len(value))
		for i, child := range value {
			normalized[i] = normalizeKeys(child, parentKey)
		}
		return normalized
	default:
		return node
	}
}

func snakeToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// ApplyDefaults fills manifest gaps in place: unpinned component versions
// resolve to the registry latest, and the component specs pick up their
// environment-derived defaults.
func ApplyDefaults(manifest *types.Manifest, versions VersionResolver) error {
	if network := manifest.Components.Network; network != nil {
		network.Spec.Normalize(manifest.Name)
		if network.Version == "" {
			latest, err := versions.Resolve(types.ComponentNetwork, "")
			if err != nil {
				return err
			}
			network.Version = latest
		}
	}

	if githubOidc := manifest.Components.GithubOidc; githubOidc != nil {
		githubOidc.Spec.Normalize()
		if githubOidc.Version == "" {
			latest, err := versions.Resolve(types.ComponentGithubOidc, "")
			if err != nil {
				return err
			}
			githubOidc.Version = latest
		}
	}

	return nil
}

// ValidateManifest checks the whole manifest and reports every problem found,
// not just the first.
func ValidateManifest(manifest *types.Manifest, versions VersionResolver) (bool, []error) {
	var errs []error

	if err := utils.ValidateEnvironmentName(manifest.Name); err != nil {
		errs = append(errs, fmt.Errorf("name: %w", err))
	}
	if err := utils.ValidateRegion(manifest.Region); err != nil {
		errs = append(errs, fmt.Errorf("region: %w", err))
	}
	if !manifest.HasComponents() {
		errs = append(errs, fmt.Errorf("manifest declares no components"))
	}

	if network := manifest.Components.Network; network != nil {
		if network.Version != "" {
			if _, err := versions.Resolve(types.ComponentNetwork, network.Version); err != nil {
				errs = append(errs, fmt.Errorf("components.network.version: %w", err))
			}
		}
		errs = append(errs, prefixErrors("components.network.spec", ValidateNetworkSpec(&network.Spec))...)
	}

	if githubOidc := manifest.Components.GithubOidc; githubOidc != nil {
		if githubOidc.Version != "" {
			if _, err := versions.Resolve(types.ComponentGithubOidc, githubOidc.Version); err != nil {
				errs = append(errs, fmt.Errorf("components.githubOidc.version: %w", err))
			}
		}
		errs = append(errs, prefixErrors("components.githubOidc.spec", ValidateGithubOidcSpec(&githubOidc.Spec))...)
	}

	return len(errs) == 0, errs
}

// ValidateNetworkSpec checks a network spec offline. AWS bounds apply: VPC
// and subnet netmasks must fall between /16 and /28.
func ValidateNetworkSpec(spec *types.NetworkSpec) []error {
	var errs []error

	if spec.VpcName == "" {
		errs = append(errs, fmt.Errorf("vpcName is required"))
	}

	vpcCidrValid := false
	vpcPrefix, err := utils.ValidateCidr(spec.VpcCidr)
	if err != nil {
		errs = append(errs, fmt.Errorf("vpcCidr: %w", err))
	} else if vpcPrefix.Bits() < 16 || vpcPrefix.Bits() > 28 {
		errs = append(errs, fmt.Errorf("vpcCidr: netmask /%d is outside the allowed /16-/28 range", vpcPrefix.Bits()))
	} else {
		vpcCidrValid = true
	}

	if len(spec.AvailabilityZones) == 0 {
		errs = append(errs, fmt.Errorf("at least one availability zone is required"))
	}
	seenZones := make(map[string]bool, len(spec.AvailabilityZones))
	for _, zone := range spec.AvailabilityZones {
		if err := utils.ValidateAvailabilityZoneName(zone); err != nil {
			errs = append(errs, err)
			continue
		}
		if seenZones[zone] {
			errs = append(errs, fmt.Errorf("availability zone %s is listed more than once", zone))
		}
		seenZones[zone] = true
	}

	if len(spec.PublicSubnetCidrs) != len(spec.AvailabilityZones) {
		errs = append(errs, fmt.Errorf("publicSubnetCidrs must match availabilityZones in length (%d != %d)",
			len(spec.PublicSubnetCidrs), len(spec.AvailabilityZones)))
	}
	if len(spec.PrivateSubnetCidrs) != len(spec.AvailabilityZones) {
		errs = append(errs, fmt.Errorf("privateSubnetCidrs must match availabilityZones in length (%d != %d)",
			len(spec.PrivateSubnetCidrs), len(spec.AvailabilityZones)))
	}

	subnetCidrs := make([]string, 0, len(spec.PublicSubnetCidrs)+len(spec.PrivateSubnetCidrs))
	subnetCidrs = append(subnetCidrs, spec.PublicSubnetCidrs...)
	subnetCidrs = append(subnetCidrs, spec.PrivateSubnetCidrs...)

	subnetsValid := true
	for _, cidr := range subnetCidrs {
		prefix, err := utils.ValidateCidr(cidr)
		if err != nil {
			errs = append(errs, err)
			subnetsValid = false
			continue
		}
		if prefix.Bits() > 28 {
			errs = append(errs, fmt.Errorf("subnet CIDR %s: netmask /%d is beyond the allowed /28", cidr, prefix.Bits()))
		}
		if vpcCidrValid {
			if err := utils.ValidateCidrWithin(cidr, spec.VpcCidr); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if subnetsValid && len(subnetCidrs) > 1 {
		if err := utils.ValidateCidrsDisjoint(subnetCidrs); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// ValidateGithubOidcSpec checks a github-oidc spec offline.
func ValidateGithubOidcSpec(spec *types.GithubOidcSpec) []error {
	var errs []error

	if spec.RoleName == "" {
		errs = append(errs, fmt.Errorf("roleName is required"))
	} else if err := utils.ValidateRoleName(spec.RoleName); err != nil {
		errs = append(errs, err)
	}

	if len(spec.Repositories) == 0 {
		errs = append(errs, fmt.Errorf("at least one repository is required"))
	}
	for _, repository := range spec.Repositories {
		if err := utils.ValidateRepositoryFormat(repository); err != nil {
			errs = append(errs, err)
		}
	}

	if spec.Thumbprint != "" {
		if err := utils.ValidateThumbprint(spec.Thumbprint); err != nil {
			errs = append(errs, err)
		}
	}

	for _, policyArn := range spec.ManagedPolicyArns {
		if !strings.HasPrefix(policyArn, "arn:") {
			errs = append(errs, fmt.Errorf("invalid managed policy ARN %q", policyArn))
		}
	}

	seenPolicies := make(map[string]bool, len(spec.InlinePolicies))
	for _, policy := range spec.InlinePolicies {
		if policy.Name == "" {
			errs = append(errs, fmt.Errorf("inline policies must be named"))
			continue
		}
		if seenPolicies[policy.Name] {
			errs = append(errs, fmt.Errorf("inline policy %q is defined more than once", policy.Name))
		}
		seenPolicies[policy.Name] = true
		if !json.Valid([]byte(policy.Policy)) {
			errs = append(errs, fmt.Errorf("inline policy %q is not valid JSON", policy.Name))
		}
	}

	return errs
}

func prefixErrors(prefix string, errs []error) []error {
	prefixed := make([]error, 0, len(errs))
	for _, err := range errs {
		prefixed = append(prefixed, fmt.Errorf("%s: %w", prefix, err))
	}
	return prefixed
}
