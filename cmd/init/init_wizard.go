package init

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cloudcomb/ncp/internal/services/manifest"
	"github.com/cloudcomb/ncp/internal/types"
	"github.com/cloudcomb/ncp/internal/utils"
)

var (
	// Nord theme color palette
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#88C0D0")).Bold(true) // Nord Frost - Ice Blue
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5E81AC")).Bold(true) // Nord Frost - Deep Blue
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C"))            // Nord Aurora - Green
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B")).Bold(true) // Nord Aurora - Yellow
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A")).Bold(true) // Nord Aurora - Red
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A"))            // Nord Aurora - Red
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#616E88"))            // Nord Polar Night - Light Gray
)

// step is one wizard question. Answers are collected by id; a step whose skip
// func returns true for the answers so far is not asked.
type step struct {
	id       string
	prompt   string
	help     string
	fallback string // used when the answer is left empty
	validate func(value string, answers map[string]string) error
	skip     func(answers map[string]string) bool
}

type wizardModel struct {
	steps   []step
	current int
	answers map[string]string

	input    string
	inputErr string

	showingSummary bool
	confirmed      bool
	quitting       bool
	width          int
	height         int
}

type ManifestWizard struct {
	outputFile string
}

func NewManifestWizard(outputFile string) *ManifestWizard {
	return &ManifestWizard{
		outputFile: outputFile,
	}
}

func (w *ManifestWizard) Run() error {
	model := newWizardModel()
	program := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	m := finalModel.(wizardModel)
	if !m.confirmed {
		slog.Info("🚫 init cancelled, no manifest written")
		return nil
	}

	environmentManifest := buildManifest(m.answers)
	if err := manifest.SaveManifest(w.outputFile, environmentManifest); err != nil {
		return err
	}

	slog.Info("✅ wrote manifest", "file", w.outputFile, "environment", environmentManifest.Name, "components", environmentManifest.ComponentNames())
	slog.Info("💡 render it with", "command", fmt.Sprintf("ncp render --manifest %s", w.outputFile))

	return nil
}

func newWizardModel() wizardModel {
	return wizardModel{
		steps:   wizardSteps(),
		answers: map[string]string{},
	}
}

func wizardSteps() []step {
	return []step{
		{
			id:     "name",
			prompt: "Environment name",
			help:   "lowercase letters, digits and hyphens, e.g. staging",
			validate: func(value string, _ map[string]string) error {
				return utils.ValidateEnvironmentName(value)
			},
		},
		{
			id:     "region",
			prompt: "AWS region",
			help:   "e.g. eu-west-1",
			validate: func(value string, _ map[string]string) error {
				return utils.ValidateRegion(value)
			},
		},
		{
			id:       "network",
			prompt:   "Include the network component? (Y/n)",
			fallback: "y",
			validate: validateYesNo,
		},
		{
			id:     "vpc-cidr",
			prompt: "VPC CIDR",
			help:   "e.g. 10.0.0.0/16",
			skip:   skipNetwork,
			validate: func(value string, _ map[string]string) error {
				_, err := utils.ValidateCidr(value)
				return err
			},
		},
		{
			id:     "availability-zones",
			prompt: "Availability zones",
			help:   "comma separated, e.g. eu-west-1a,eu-west-1b",
			skip:   skipNetwork,
			validate: func(value string, _ map[string]string) error {
				zones := splitList(value)
				if len(zones) == 0 {
					return fmt.Errorf("at least one availability zone is required")
				}
				for _, zone := range zones {
					if err := utils.ValidateAvailabilityZoneName(zone); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			id:       "public-subnet-cidrs",
			prompt:   "Public subnet CIDRs",
			help:     "comma separated, one per availability zone",
			skip:     skipNetwork,
			validate: validateSubnetCidrs,
		},
		{
			id:       "private-subnet-cidrs",
			prompt:   "Private subnet CIDRs",
			help:     "comma separated, one per availability zone",
			skip:     skipNetwork,
			validate: validateSubnetCidrs,
		},
		{
			id:       "nat",
			prompt:   "Enable NAT gateways for the private subnets? (y/N)",
			fallback: "n",
			skip:     skipNetwork,
			validate: validateYesNo,
		},
		{
			id:       "github-oidc",
			prompt:   "Include the github-oidc component? (y/N)",
			fallback: "n",
			validate: validateYesNo,
		},
		{
			id:     "role-name",
			prompt: "IAM role name for GitHub Actions",
			skip:   skipGithubOidc,
			validate: func(value string, _ map[string]string) error {
				return utils.ValidateRoleName(value)
			},
		},
		{
			id:     "repositories",
			prompt: "Trusted repositories",
			help:   "comma separated owner/name entries, e.g. cloudcomb/platform",
			skip:   skipGithubOidc,
			validate: func(value string, _ map[string]string) error {
				repositories := splitList(value)
				if len(repositories) == 0 {
					return fmt.Errorf("at least one repository is required")
				}
				for _, repository := range repositories {
					if err := utils.ValidateRepositoryFormat(repository); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			id:     "branches",
			prompt: "Restrict to branches",
			help:   "comma separated, leave empty for no branch restriction",
			skip:   skipGithubOidc,
		},
		{
			id:     "environments",
			prompt: "Restrict to GitHub environments",
			help:   "comma separated, ignored when branches are set",
			skip:   skipGithubOidc,
		},
	}
}

func skipNetwork(answers map[string]string) bool {
	return !isYes(answers["network"])
}

func skipGithubOidc(answers map[string]string) bool {
	return !isYes(answers["github-oidc"])
}

func isYes(value string) bool {
	switch strings.ToLower(value) {
	case "y", "yes":
		return true
	}
	return false
}

func validateYesNo(value string, _ map[string]string) error {
	switch strings.ToLower(value) {
	case "y", "yes", "n", "no":
		return nil
	}
	return fmt.Errorf("answer y or n")
}

func validateSubnetCidrs(value string, answers map[string]string) error {
	cidrs := splitList(value)
	zones := splitList(answers["availability-zones"])
	if len(cidrs) != len(zones) {
		return fmt.Errorf("expected %d CIDRs to match the availability zones, got %d", len(zones), len(cidrs))
	}
	for _, cidr := range cidrs {
		if _, err := utils.ValidateCidr(cidr); err != nil {
			return err
		}
	}
	return nil
}

func splitList(value string) []string {
	var entries []string
	for _, entry := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.showingSummary {
			switch msg.String() {
			case "ctrl+c", "q":
				m.quitting = true
				return m, tea.Quit
			case "y", "enter":
				m.confirmed = true
				return m, tea.Quit
			case "n", "b", "esc":
				m.showingSummary = false
				m.current = m.lastAskedStep()
				m.input = m.answers[m.steps[m.current].id]
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			m.submit()

		case tea.KeyBackspace:
			if len(m.input) > 0 {
				runes := []rune(m.input)
				m.input = string(runes[:len(runes)-1])
			}
			m.inputErr = ""

		case tea.KeyRunes, tea.KeySpace:
			m.input += msg.String()
			m.inputErr = ""
		}
	}

	return m, nil
}

func (m *wizardModel) submit() {
	s := m.steps[m.current]

	value := strings.TrimSpace(m.input)
	if value == "" {
		value = s.fallback
	}

	if s.validate != nil {
		if err := s.validate(value, m.answers); err != nil {
			m.inputErr = err.Error()
			return
		}
	}

	m.answers[s.id] = value
	m.input = ""
	m.inputErr = ""
	m.advance()
}

func (m *wizardModel) advance() {
	for next := m.current + 1; next < len(m.steps); next++ {
		s := m.steps[next]
		if s.skip != nil && s.skip(m.answers) {
			continue
		}
		m.current = next
		return
	}
	m.showingSummary = true
}

// lastAskedStep finds the final question that was actually asked, so the
// summary's back action re-opens it.
func (m wizardModel) lastAskedStep() int {
	for i := len(m.steps) - 1; i >= 0; i-- {
		s := m.steps[i]
		if s.skip != nil && s.skip(m.answers) {
			continue
		}
		return i
	}
	return 0
}

func (m wizardModel) View() string {
	if m.quitting {
		return ""
	}

	if m.showingSummary {
		return m.renderSummaryView()
	}

	return m.renderStepView()
}

func (m wizardModel) renderStepView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🌐 New environment manifest") + "\n\n")
	b.WriteString(helpStyle.Render("type your answer • enter: confirm • ctrl+c: quit") + "\n\n")

	for i := 0; i < m.current; i++ {
		s := m.steps[i]
		if s.skip != nil && s.skip(m.answers) {
			continue
		}
		answer := m.answers[s.id]
		if answer == "" {
			answer = "-"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", doneStyle.Render("✓"), s.prompt, answerStyle.Render(answer)))
	}
	if m.current > 0 {
		b.WriteString("\n")
	}

	s := m.steps[m.current]
	b.WriteString(promptStyle.Render(s.prompt) + "\n")
	if s.help != "" {
		b.WriteString(helpStyle.Render(s.help) + "\n")
	}
	b.WriteString(cursorStyle.Render("❯ ") + m.input + cursorStyle.Render("█") + "\n")

	if m.inputErr != "" {
		b.WriteString(errorStyle.Render("✗ "+m.inputErr) + "\n")
	}

	return b.String()
}

func (m wizardModel) renderSummaryView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎯 Manifest summary") + "\n\n")

	b.WriteString(renderAnswer("Environment", m.answers["name"]))
	b.WriteString(renderAnswer("Region", m.answers["region"]))

	if isYes(m.answers["network"]) {
		b.WriteString("\n" + promptStyle.Render("network") + "\n")
		b.WriteString(renderAnswer("  VPC CIDR", m.answers["vpc-cidr"]))
		b.WriteString(renderAnswer("  Availability zones", m.answers["availability-zones"]))
		b.WriteString(renderAnswer("  Public subnets", m.answers["public-subnet-cidrs"]))
		b.WriteString(renderAnswer("  Private subnets", m.answers["private-subnet-cidrs"]))
		b.WriteString(renderAnswer("  NAT gateways", m.answers["nat"]))
	}

	if isYes(m.answers["github-oidc"]) {
		b.WriteString("\n" + promptStyle.Render("github-oidc") + "\n")
		b.WriteString(renderAnswer("  Role name", m.answers["role-name"]))
		b.WriteString(renderAnswer("  Repositories", m.answers["repositories"]))
		if m.answers["branches"] != "" {
			b.WriteString(renderAnswer("  Branches", m.answers["branches"]))
		}
		if m.answers["environments"] != "" {
			b.WriteString(renderAnswer("  Environments", m.answers["environments"]))
		}
	}

	b.WriteString("\n" + helpStyle.Render("y/enter: write the manifest • b/esc: go back • q: quit") + "\n")

	return b.String()
}

func renderAnswer(label, value string) string {
	return fmt.Sprintf("%s %s\n", promptStyle.Render(fmt.Sprintf("%-20s", label)), answerStyle.Render(value))
}

func buildManifest(answers map[string]string) *types.Manifest {
	environmentManifest := &types.Manifest{
		Name:   answers["name"],
		Region: answers["region"],
	}

	if isYes(answers["network"]) {
		environmentManifest.Components.Network = &types.NetworkComponent{
			Spec: types.NetworkSpec{
				VpcCidr:            answers["vpc-cidr"],
				AvailabilityZones:  splitList(answers["availability-zones"]),
				PublicSubnetCidrs:  splitList(answers["public-subnet-cidrs"]),
				PrivateSubnetCidrs: splitList(answers["private-subnet-cidrs"]),
				EnableNatGateway:   isYes(answers["nat"]),
			},
		}
	}

	if isYes(answers["github-oidc"]) {
		environmentManifest.Components.GithubOidc = &types.GithubOidcComponent{
			Spec: types.GithubOidcSpec{
				RoleName:     answers["role-name"],
				Repositories: splitList(answers["repositories"]),
				Branches:     splitList(answers["branches"]),
				Environments: splitList(answers["environments"]),
			},
		}
	}

	return environmentManifest
}
