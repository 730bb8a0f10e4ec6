package types

// ComponentNetwork and ComponentGithubOidc are the component kinds ncp can render.
const (
	ComponentNetwork    = "network"
	ComponentGithubOidc = "github-oidc"
)

// NetworkSpec describes the network component: a VPC with paired public/private
// subnets spread across availability zones, an internet gateway and optional
// per-AZ NAT gateways.
type NetworkSpec struct {
	VpcName            string            `yaml:"vpcName" json:"vpc_name"`
	VpcCidr            string            `yaml:"vpcCidr" json:"vpc_cidr"`
	PublicSubnetCidrs  []string          `yaml:"publicSubnetCidrs" json:"public_subnet_cidrs"`
	PrivateSubnetCidrs []string          `yaml:"privateSubnetCidrs" json:"private_subnet_cidrs"`
	AvailabilityZones  []string          `yaml:"availabilityZones" json:"availability_zones"`
	EnableNatGateway   bool              `yaml:"enableNatGateway" json:"enable_nat_gateway"`
	AdditionalTags     map[string]string `yaml:"additionalTags,omitempty" json:"additional_tags,omitempty"`
}

// SubnetPair is one public/private subnet pairing produced by zipping the CIDR
// lists against the availability zone list.
type SubnetPair struct {
	Index            int // 1-based, used in resource names and Name tags
	AvailabilityZone string
	PublicCidr       string
	PrivateCidr      string
}

// Normalize fills defaults that depend on the surrounding environment.
func (s *NetworkSpec) Normalize(environmentName string) {
	if s.VpcName == "" {
		if environmentName != "" {
			s.VpcName = environmentName
		} else {
			s.VpcName = "main"
		}
	}
}

// SubnetCount returns the number of subnet pairs the spec describes.
func (s *NetworkSpec) SubnetCount() int {
	return len(s.AvailabilityZones)
}

// SubnetPairs zips the public and private CIDR lists against the availability
// zones. Callers must have validated that the three lists are equal length.
func (s *NetworkSpec) SubnetPairs() []SubnetPair {
	pairs := make([]SubnetPair, 0, len(s.AvailabilityZones))
	for i, zone := range s.AvailabilityZones {
		pair := SubnetPair{
			Index:            i + 1,
			AvailabilityZone: zone,
		}
		if i < len(s.PublicSubnetCidrs) {
			pair.PublicCidr = s.PublicSubnetCidrs[i]
		}
		if i < len(s.PrivateSubnetCidrs) {
			pair.PrivateCidr = s.PrivateSubnetCidrs[i]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}
