package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cloudcomb/ncp/internal/types"
)

var (
	// Nord theme color palette
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#88C0D0")).Bold(true) // Nord Frost - Ice Blue
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5E81AC")).Bold(true) // Nord Frost - Deep Blue
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D8DEE9"))            // Nord Snow Storm
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#616E88"))            // Nord Polar Night - Light Gray
	renderedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B")).Bold(true) // Nord Aurora - Yellow
	appliedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C")).Bold(true) // Nord Aurora - Green
	downStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A")).Bold(true) // Nord Aurora - Red

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5E81AC")).
			Padding(0, 2)
)

type StatusPrinterOpts struct {
	AssetDir   string
	Deployment *types.Deployment
}

type StatusPrinter struct {
	assetDir   string
	deployment *types.Deployment
}

func NewStatusPrinter(opts StatusPrinterOpts) *StatusPrinter {
	return &StatusPrinter{
		assetDir:   opts.AssetDir,
		deployment: opts.Deployment,
	}
}

func (sp *StatusPrinter) Run() error {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("🌐 Environment %s", sp.deployment.Environment)) + "\n\n")

	b.WriteString(renderField("Region", valueStyle.Render(sp.deployment.Region)))
	b.WriteString(renderField("State", stateStyle(sp.deployment.CurrentState).Render(sp.deployment.CurrentState)))
	if sp.deployment.RunId != "" {
		b.WriteString(renderField("Run id", subtleStyle.Render(sp.deployment.RunId)))
	}

	components := sp.deployment.Components()
	if len(components) > 0 {
		b.WriteString("\n" + labelStyle.Render("Components") + "\n")
		for _, component := range components {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				valueStyle.Render(component),
				subtleStyle.Render(sp.deployment.ComponentVersions[component]),
			))
		}
	}

	b.WriteString("\n" + labelStyle.Render("Timeline") + "\n")
	b.WriteString(renderTimestamp("rendered", sp.deployment.RenderedAt))
	b.WriteString(renderTimestamp("previewed", sp.deployment.PreviewedAt))
	b.WriteString(renderTimestamp("applied", sp.deployment.AppliedAt))
	b.WriteString(renderTimestamp("destroyed", sp.deployment.DestroyedAt))

	fmt.Println(panelStyle.Render(strings.TrimRight(b.String(), "\n")))
	fmt.Println(subtleStyle.Render(fmt.Sprintf("state file: %s", types.StatePath(sp.assetDir))))

	return nil
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), value)
}

func renderTimestamp(name string, at *time.Time) string {
	if at == nil {
		return fmt.Sprintf("  %s %s\n", subtleStyle.Render(fmt.Sprintf("%-10s", name)), subtleStyle.Render("-"))
	}
	return fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", name)), valueStyle.Render(at.Format(time.RFC3339)))
}

func stateStyle(state string) lipgloss.Style {
	switch state {
	case types.StateApplied:
		return appliedStyle
	case types.StateDestroyed:
		return downStyle
	default:
		return renderedStyle
	}
}
