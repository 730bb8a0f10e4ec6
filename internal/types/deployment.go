package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/looplab/fsm"
)

// DeploymentStateFile is the per-environment state file written next to the
// rendered assets.
const DeploymentStateFile = ".ncp-deployment.json"

// FSM State constants
const (
	StateUninitialized = "uninitialized"
	StateRendered      = "rendered"
	StatePreviewed     = "previewed"
	StateApplied       = "applied"
	StateDestroyed     = "destroyed"
)

// FSM Event constants
const (
	EventRender  = "render"
	EventPreview = "preview"
	EventApply   = "apply"
	EventDestroy = "destroy"
)

// Deployment tracks the lifecycle of a rendered environment through the
// render -> preview -> apply -> destroy pipeline. Preview is refused before a
// render, apply before a preview, destroy before an apply.
type Deployment struct {
	Environment       string            `json:"environment"`
	Region            string            `json:"region"`
	CurrentState      string            `json:"current_state"`
	FSM               *fsm.FSM          `json:"-"`
	RunId             string            `json:"run_id"`
	ComponentVersions map[string]string `json:"component_versions"`

	RenderedAt  *time.Time `json:"rendered_at,omitempty"`
	PreviewedAt *time.Time `json:"previewed_at,omitempty"`
	AppliedAt   *time.Time `json:"applied_at,omitempty"`
	DestroyedAt *time.Time `json:"destroyed_at,omitempty"`
}

// initializeFSM sets up the FSM for the deployment with the given initial state
func (d *Deployment) initializeFSM(initialState string) {
	d.FSM = fsm.NewFSM(
		initialState,
		fsm.Events{
			// An applied deployment cannot be re-rendered in place, its
			// resources are live. It goes back through preview, or down
			// through destroy.
			{Name: EventRender, Src: []string{StateUninitialized, StateRendered, StatePreviewed, StateDestroyed}, Dst: StateRendered},
			{Name: EventPreview, Src: []string{StateRendered, StatePreviewed, StateApplied}, Dst: StatePreviewed},
			{Name: EventApply, Src: []string{StatePreviewed}, Dst: StateApplied},
			{Name: EventDestroy, Src: []string{StateApplied}, Dst: StateDestroyed},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				d.CurrentState = d.FSM.Current()
				now := time.Now().UTC()
				switch e.Event {
				case EventRender:
					d.RenderedAt = &now
					d.PreviewedAt = nil
					d.AppliedAt = nil
				case EventPreview:
					d.PreviewedAt = &now
				case EventApply:
					d.AppliedAt = &now
				case EventDestroy:
					d.DestroyedAt = &now
				}
			},
		},
	)
}

// NewDeployment creates a Deployment for an environment, starting uninitialized.
func NewDeployment(environment, region string) *Deployment {
	d := &Deployment{
		Environment:       environment,
		Region:            region,
		CurrentState:      StateUninitialized,
		ComponentVersions: map[string]string{},
	}

	d.initializeFSM(StateUninitialized)

	return d
}

// LoadDeployment reads the deployment state file from an asset directory and
// reconstructs it with its state machine intact.
func LoadDeployment(assetDir string) (*Deployment, error) {
	data, err := os.ReadFile(filepath.Join(assetDir, DeploymentStateFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment state: %w", err)
	}

	var d Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deployment state: %w", err)
	}

	d.initializeFSM(d.CurrentState)

	return &d, nil
}

// Transition fires an FSM event, translating refusals into actionable errors.
func (d *Deployment) Transition(ctx context.Context, event string) error {
	if err := d.FSM.Event(ctx, event); err != nil {
		return fmt.Errorf("cannot %s while deployment is %s: %w", event, d.CurrentState, err)
	}
	return nil
}

// Components lists the deployment's rendered components in render order.
func (d *Deployment) Components() []string {
	var components []string
	for _, component := range []string{ComponentNetwork, ComponentGithubOidc} {
		if _, ok := d.ComponentVersions[component]; ok {
			components = append(components, component)
		}
	}
	return components
}

// StatePath returns the location of the state file for an asset directory.
func StatePath(assetDir string) string {
	return filepath.Join(assetDir, DeploymentStateFile)
}
