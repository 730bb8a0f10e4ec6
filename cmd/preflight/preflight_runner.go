package preflight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudcomb/ncp/internal/services/markdown"
	"github.com/cloudcomb/ncp/internal/services/preflight"
	"github.com/cloudcomb/ncp/internal/types"
)

type PreflightRunnerOpts struct {
	Manifest *types.Manifest
}

type PreflightRunner struct {
	preflightService *preflight.PreflightService

	manifest *types.Manifest
}

func NewPreflightRunner(preflightService *preflight.PreflightService, opts PreflightRunnerOpts) *PreflightRunner {
	return &PreflightRunner{
		preflightService: preflightService,
		manifest:         opts.Manifest,
	}
}

func (p *PreflightRunner) Run() error {
	ctx := context.Background()

	request := preflight.PreflightRequest{
		Region: p.manifest.Region,
	}
	if network := p.manifest.Components.Network; network != nil {
		request.Network = &network.Spec
	}
	if githubOidc := p.manifest.Components.GithubOidc; githubOidc != nil {
		request.GithubOidc = &githubOidc.Spec
	}

	results := p.preflightService.Run(ctx, request)

	md := p.generateReport(results)
	if err := md.Print(markdown.PrintOptions{ToTerminal: true}); err != nil {
		return fmt.Errorf("failed to print preflight report: %v", err)
	}

	if preflight.HasFailures(results) {
		return fmt.Errorf("preflight checks failed for environment %q", p.manifest.Name)
	}

	slog.Info("✅ preflight checks passed", "environment", p.manifest.Name, "checks", len(results))
	return nil
}

func (p *PreflightRunner) generateReport(results []preflight.CheckResult) *markdown.Markdown {
	md := markdown.New()
	md.AddHeading(fmt.Sprintf("Preflight Report - %s (%s)", p.manifest.Name, p.manifest.Region), 1)

	headers := []string{"Check", "Status", "Detail"}
	data := [][]string{}
	for _, result := range results {
		data = append(data, []string{result.Name, statusIcon(result.Status), result.Detail})
	}
	md.AddTable(headers, data)

	return md
}

func statusIcon(status preflight.CheckStatus) string {
	switch status {
	case preflight.CheckPass:
		return "✅ PASS"
	case preflight.CheckWarn:
		return "⚠️ WARN"
	default:
		return "❌ FAIL"
	}
}
