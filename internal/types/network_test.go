package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkSpecSubnetPairs(t *testing.T) {
	spec := NetworkSpec{
		VpcCidr:            "10.0.0.0/16",
		PublicSubnetCidrs:  []string{"10.0.1.0/24", "10.0.2.0/24", "10.0.3.0/24"},
		PrivateSubnetCidrs: []string{"10.0.101.0/24", "10.0.102.0/24", "10.0.103.0/24"},
		AvailabilityZones:  []string{"us-east-1a", "us-east-1b", "us-east-1c"},
	}

	pairs := spec.SubnetPairs()
	require.Len(t, pairs, 3)

	assert.Equal(t, SubnetPair{
		Index:            1,
		AvailabilityZone: "us-east-1a",
		PublicCidr:       "10.0.1.0/24",
		PrivateCidr:      "10.0.101.0/24",
	}, pairs[0])

	assert.Equal(t, SubnetPair{
		Index:            3,
		AvailabilityZone: "us-east-1c",
		PublicCidr:       "10.0.3.0/24",
		PrivateCidr:      "10.0.103.0/24",
	}, pairs[2])
}

func TestNetworkSpecNormalize(t *testing.T) {
	tests := []struct {
		name            string
		spec            NetworkSpec
		environmentName string
		expectedVpcName string
	}{
		{
			name:            "explicit name is kept",
			spec:            NetworkSpec{VpcName: "core"},
			environmentName: "production",
			expectedVpcName: "core",
		},
		{
			name:            "empty name defaults to environment",
			spec:            NetworkSpec{},
			environmentName: "production",
			expectedVpcName: "production",
		},
		{
			name:            "empty name and environment default to main",
			spec:            NetworkSpec{},
			environmentName: "",
			expectedVpcName: "main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.spec.Normalize(tt.environmentName)
			assert.Equal(t, tt.expectedVpcName, tt.spec.VpcName)
		})
	}
}

func TestManifestMergedTags(t *testing.T) {
	m := Manifest{
		Name: "production",
		Tags: map[string]string{"environment": "production", "team": "infra"},
	}

	merged := m.MergedTags(map[string]string{"team": "platform", "component": "network"})

	assert.Equal(t, map[string]string{
		"environment": "production",
		"team":        "platform",
		"component":   "network",
	}, merged)
}

func TestManifestComponentNames(t *testing.T) {
	m := Manifest{}
	assert.False(t, m.HasComponents())
	assert.Empty(t, m.ComponentNames())

	m.Components.Network = &NetworkComponent{}
	m.Components.GithubOidc = &GithubOidcComponent{}
	assert.True(t, m.HasComponents())
	assert.Equal(t, []string{ComponentNetwork, ComponentGithubOidc}, m.ComponentNames())
}
