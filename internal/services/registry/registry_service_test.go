package registry

import (
	"testing"

	"github.com/cloudcomb/ncp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryService_Components(t *testing.T) {
	service := NewRegistryService()

	assert.Equal(t, []string{types.ComponentNetwork, types.ComponentGithubOidc}, service.Components())
}

func TestRegistryService_LatestVersion(t *testing.T) {
	service := NewRegistryService()

	latest, err := service.LatestVersion(types.ComponentNetwork)
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", latest)

	_, err = service.LatestVersion("load-balancer")
	assert.ErrorContains(t, err, `unknown component "load-balancer"`)
}

func TestRegistryService_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		component string
		pin       string
		want      string
		wantErr   string
	}{
		{
			name:      "empty pin resolves to latest",
			component: types.ComponentNetwork,
			pin:       "",
			want:      "1.4.0",
		},
		{
			name:      "exact pin within range",
			component: types.ComponentNetwork,
			pin:       "1.2.0",
			want:      "1.2.0",
		},
		{
			name:      "leading v is normalized away",
			component: types.ComponentGithubOidc,
			pin:       "v1.1.0",
			want:      "1.1.0",
		},
		{
			name:      "pin above supported range",
			component: types.ComponentNetwork,
			pin:       "2.5.0",
			wantErr:   "outside the supported range",
		},
		{
			name:      "pin below supported range",
			component: types.ComponentNetwork,
			pin:       "0.9.0",
			wantErr:   "outside the supported range",
		},
		{
			name:      "garbage pin",
			component: types.ComponentNetwork,
			pin:       "latest-and-greatest",
			wantErr:   "invalid version pin",
		},
		{
			name:      "unknown component",
			component: "load-balancer",
			pin:       "1.0.0",
			wantErr:   "unknown component",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewRegistryService()

			resolved, err := service.Resolve(tt.component, tt.pin)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resolved)
		})
	}
}

func TestRegistryService_SupportedRange(t *testing.T) {
	service := NewRegistryService()

	supported, err := service.SupportedRange(types.ComponentGithubOidc)
	require.NoError(t, err)
	assert.Equal(t, ">= 1.0.0, < 2.0.0", supported)
}
