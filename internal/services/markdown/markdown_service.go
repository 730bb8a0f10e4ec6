package markdown

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// PrintOptions configures where and how to print the markdown
type PrintOptions struct {
	ToTerminal bool   // Print to terminal with glamour rendering
	ToFile     string // File path to save raw markdown (empty string = don't save to file)
}

// DefaultPrintOptions returns default options (terminal only)
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{
		ToTerminal: true,
		ToFile:     "",
	}
}

// Markdown is a markdown document built incrementally. All Add methods return
// the receiver so calls can be chained.
type Markdown struct {
	content strings.Builder
}

// New creates an empty Markdown document
func New() *Markdown {
	return &Markdown{}
}

// AddHeading adds a heading with the specified level (1-6)
func (m *Markdown) AddHeading(text string, level int) *Markdown {
	if level < 1 || level > 6 {
		level = 1
	}
	m.content.WriteString(fmt.Sprintf("%s %s\n\n", strings.Repeat("#", level), text))
	return m
}

// AddParagraph adds a paragraph of text
func (m *Markdown) AddParagraph(text string) *Markdown {
	m.content.WriteString(fmt.Sprintf("%s\n\n", text))
	return m
}

// AddTable adds a table with the given headers and data rows. Rows shorter
// than the header are padded with empty cells. skipRepeatColumns lists
// column indices (0-based) whose values are blanked when they repeat the
// previous row, which keeps grouped tables readable.
func (m *Markdown) AddTable(headers []string, data [][]string, skipRepeatColumns ...int) *Markdown {
	if len(headers) == 0 {
		return m
	}

	m.content.WriteString("| " + strings.Join(headers, " | ") + " |\n")

	separators := make([]string, len(headers))
	for i := range headers {
		separators[i] = "---"
	}
	m.content.WriteString("| " + strings.Join(separators, " | ") + " |\n")

	skip := make(map[int]bool, len(skipRepeatColumns))
	for _, col := range skipRepeatColumns {
		if col >= 0 && col < len(headers) {
			skip[col] = true
		}
	}

	previous := make([]string, len(headers))
	for _, row := range data {
		padded := make([]string, len(headers))
		copy(padded, row)

		for col := range padded {
			if !skip[col] {
				continue
			}
			if padded[col] == previous[col] {
				padded[col] = ""
			} else {
				previous[col] = padded[col]
			}
		}

		m.content.WriteString("| " + strings.Join(padded, " | ") + " |\n")
	}

	m.content.WriteString("\n")
	return m
}

// AddCodeBlock adds a fenced code block with optional language specification
func (m *Markdown) AddCodeBlock(code string, language string) *Markdown {
	m.content.WriteString(fmt.Sprintf("```%s\n%s\n```\n\n", language, code))
	return m
}

// AddList adds a bulleted list of items
func (m *Markdown) AddList(items []string) *Markdown {
	for _, item := range items {
		m.content.WriteString(fmt.Sprintf("- %s\n", item))
	}
	m.content.WriteString("\n")
	return m
}

// AddHorizontalRule adds a horizontal rule
func (m *Markdown) AddHorizontalRule() *Markdown {
	m.content.WriteString("---\n\n")
	return m
}

// String returns the markdown content as a string
func (m *Markdown) String() string {
	return m.content.String()
}

// WriteTo writes the raw markdown content to the provided io.Writer
func (m *Markdown) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte(m.content.String()))
	return int64(n), err
}

// WriteToTerminal writes the raw markdown content to stdout without glamour rendering
func (m *Markdown) WriteToTerminal() (int64, error) {
	return m.WriteTo(os.Stdout)
}

// WriteToTerminalWithGlamour writes the rendered markdown content to stdout using glamour
func (m *Markdown) WriteToTerminalWithGlamour() (int64, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(180),
	)
	if err != nil {
		// Fall back to raw output if glamour fails
		return m.WriteToTerminal()
	}

	out, err := renderer.Render(m.content.String())
	if err != nil {
		return m.WriteToTerminal()
	}

	n, err := os.Stdout.Write([]byte(out + "\n"))
	return int64(n), err
}

// Print renders the markdown and outputs it according to the provided options
func (m *Markdown) Print(opts ...PrintOptions) error {
	options := DefaultPrintOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.ToTerminal {
		if _, err := m.WriteToTerminalWithGlamour(); err != nil {
			return fmt.Errorf("failed to write to terminal: %v", err)
		}
	}

	if options.ToFile != "" {
		file, err := os.Create(options.ToFile)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %v", options.ToFile, err)
		}
		defer file.Close()

		if _, err := m.WriteTo(file); err != nil {
			return fmt.Errorf("failed to write markdown to file %s: %v", options.ToFile, err)
		}
		slog.Info("Markdown saved to file", "file", options.ToFile)
	}

	return nil
}

// Render returns the rendered markdown as a string (without printing)
func (m *Markdown) Render() (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(180),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create glamour renderer: %v", err)
	}

	out, err := renderer.Render(m.content.String())
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %v", err)
	}

	return out, nil
}
