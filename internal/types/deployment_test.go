package types

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentLifecycle(t *testing.T) {
	ctx := context.Background()
	d := NewDeployment("production", "us-east-1")

	assert.Equal(t, StateUninitialized, d.CurrentState)

	// preview and apply are refused before a render
	assert.Error(t, d.Transition(ctx, EventPreview))
	assert.Error(t, d.Transition(ctx, EventApply))

	require.NoError(t, d.Transition(ctx, EventRender))
	assert.Equal(t, StateRendered, d.CurrentState)
	require.NotNil(t, d.RenderedAt)

	// apply is refused before a preview
	assert.Error(t, d.Transition(ctx, EventApply))

	require.NoError(t, d.Transition(ctx, EventPreview))
	assert.Equal(t, StatePreviewed, d.CurrentState)

	require.NoError(t, d.Transition(ctx, EventApply))
	assert.Equal(t, StateApplied, d.CurrentState)
	require.NotNil(t, d.AppliedAt)

	// an applied deployment cannot be re-rendered in place
	assert.Error(t, d.Transition(ctx, EventRender))

	// but it can be re-previewed to check for drift
	require.NoError(t, d.Transition(ctx, EventPreview))
	assert.Equal(t, StatePreviewed, d.CurrentState)

	// re-render from previewed resets the pipeline
	require.NoError(t, d.Transition(ctx, EventRender))
	assert.Equal(t, StateRendered, d.CurrentState)
	assert.Nil(t, d.PreviewedAt)
	assert.Nil(t, d.AppliedAt)
}

func TestDeploymentDestroyRequiresApply(t *testing.T) {
	ctx := context.Background()
	d := NewDeployment("production", "us-east-1")

	require.NoError(t, d.Transition(ctx, EventRender))
	assert.Error(t, d.Transition(ctx, EventDestroy))

	require.NoError(t, d.Transition(ctx, EventPreview))
	require.NoError(t, d.Transition(ctx, EventApply))
	require.NoError(t, d.Transition(ctx, EventDestroy))
	assert.Equal(t, StateDestroyed, d.CurrentState)

	// a destroyed environment can start over
	require.NoError(t, d.Transition(ctx, EventRender))
	assert.Equal(t, StateRendered, d.CurrentState)
}

func TestLoadDeploymentRestoresState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	d := NewDeployment("production", "us-east-1")
	d.RunId = "11111111-2222-3333-4444-555555555555"
	d.ComponentVersions[ComponentNetwork] = "1.2.0"
	require.NoError(t, d.Transition(ctx, EventRender))
	require.NoError(t, d.Transition(ctx, EventPreview))

	data, err := json.MarshalIndent(d, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DeploymentStateFile), data, 0644))

	loaded, err := LoadDeployment(dir)
	require.NoError(t, err)
	assert.Equal(t, StatePreviewed, loaded.CurrentState)
	assert.Equal(t, "production", loaded.Environment)
	assert.Equal(t, "1.2.0", loaded.ComponentVersions[ComponentNetwork])

	// the restored state machine allows apply
	require.NoError(t, loaded.Transition(ctx, EventApply))
	assert.Equal(t, StateApplied, loaded.CurrentState)
}

func TestLoadDeploymentMissingFile(t *testing.T) {
	_, err := LoadDeployment(t.TempDir())
	assert.Error(t, err)
}
