package utils

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

var (
	availabilityZoneRegex = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d[a-z]$`)
	regionRegex           = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d$`)
	environmentNameRegex  = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	repositoryRegex       = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
	thumbprintRegex       = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	roleNameRegex         = regexp.MustCompile(`^[\w+=,.@-]{1,64}$`)
)

// ValidateCidr checks that the string is a valid IPv4 CIDR block in canonical form.
func ValidateCidr(cidr string) (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: only IPv4 is supported", cidr)
	}
	if prefix.Masked() != prefix {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: host bits are set, expected %s", cidr, prefix.Masked())
	}
	return prefix, nil
}

// ValidateCidrWithin checks that inner is fully contained in outer.
func ValidateCidrWithin(inner, outer string) error {
	innerPrefix, err := ValidateCidr(inner)
	if err != nil {
		return err
	}
	outerPrefix, err := ValidateCidr(outer)
	if err != nil {
		return err
	}
	if innerPrefix.Bits() < outerPrefix.Bits() || !outerPrefix.Contains(innerPrefix.Addr()) {
		return fmt.Errorf("CIDR block %s is not within %s", inner, outer)
	}
	return nil
}

// CidrsOverlap reports whether the two CIDR blocks share any addresses.
func CidrsOverlap(a, b string) (bool, error) {
	prefixA, err := ValidateCidr(a)
	if err != nil {
		return false, err
	}
	prefixB, err := ValidateCidr(b)
	if err != nil {
		return false, err
	}
	return prefixA.Overlaps(prefixB), nil
}

// ValidateCidrsDisjoint checks that no two CIDR blocks in the list overlap.
func ValidateCidrsDisjoint(cidrs []string) error {
	for i := range cidrs {
		for j := i + 1; j < len(cidrs); j++ {
			overlap, err := CidrsOverlap(cidrs[i], cidrs[j])
			if err != nil {
				return err
			}
			if overlap {
				return fmt.Errorf("CIDR blocks %s and %s overlap", cidrs[i], cidrs[j])
			}
		}
	}
	return nil
}

// ValidateRegion checks the region looks like e.g. "us-east-1".
func ValidateRegion(region string) error {
	if !regionRegex.MatchString(region) {
		return fmt.Errorf("invalid region %q: expected format like 'us-east-1'", region)
	}
	return nil
}

// ValidateEnvironmentName checks the name is usable in resource names, tags
// and S3 keys: lowercase alphanumerics and hyphens, at most 63 characters.
func ValidateEnvironmentName(name string) error {
	if !environmentNameRegex.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: must be lowercase alphanumerics and hyphens, not starting or ending with a hyphen", name)
	}
	return nil
}

// ValidateAvailabilityZoneName checks the zone looks like e.g. "us-east-1a".
func ValidateAvailabilityZoneName(zone string) error {
	if !availabilityZoneRegex.MatchString(zone) {
		return fmt.Errorf("invalid availability zone %q: expected format like 'us-east-1a'", zone)
	}
	return nil
}

// ValidateRepositoryFormat checks a GitHub repository reference is "owner/name".
func ValidateRepositoryFormat(repository string) error {
	if !repositoryRegex.MatchString(repository) {
		return fmt.Errorf("invalid repository %q: expected format 'owner/name'", repository)
	}
	return nil
}

// ValidateThumbprint checks an OIDC provider certificate thumbprint (40 hex chars).
func ValidateThumbprint(thumbprint string) error {
	if !thumbprintRegex.MatchString(thumbprint) {
		return fmt.Errorf("invalid thumbprint %q: expected 40 hexadecimal characters", thumbprint)
	}
	return nil
}

// ValidateRoleName checks an IAM role name against the IAM naming rules.
func ValidateRoleName(roleName string) error {
	if !roleNameRegex.MatchString(roleName) {
		return fmt.Errorf("invalid role name %q: must be 1-64 characters from [A-Za-z0-9+=,.@_-]", roleName)
	}
	return nil
}

// SplitRepository splits "owner/name" into its parts.
func SplitRepository(repository string) (owner, name string, err error) {
	if err := ValidateRepositoryFormat(repository); err != nil {
		return "", "", err
	}
	parts := strings.SplitN(repository, "/", 2)
	return parts[0], parts[1], nil
}
