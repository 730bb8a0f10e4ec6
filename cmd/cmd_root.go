package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudcomb/ncp/cmd/apply"
	"github.com/cloudcomb/ncp/cmd/create_asset"
	"github.com/cloudcomb/ncp/cmd/destroy"
	initialize "github.com/cloudcomb/ncp/cmd/init"
	"github.com/cloudcomb/ncp/cmd/preflight"
	"github.com/cloudcomb/ncp/cmd/preview"
	"github.com/cloudcomb/ncp/cmd/publish"
	"github.com/cloudcomb/ncp/cmd/render"
	"github.com/cloudcomb/ncp/cmd/report"
	"github.com/cloudcomb/ncp/cmd/status"
	"github.com/cloudcomb/ncp/cmd/update"
	"github.com/cloudcomb/ncp/cmd/validate"
	"github.com/cloudcomb/ncp/cmd/version"
	"github.com/cloudcomb/ncp/internal/build_info"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var RootCmd = &cobra.Command{
	Use:   "ncp",
	Short: "A CLI tool for declarative cloud network infrastructure",
	Long:  "A CLI tool for rendering, validating and deploying versioned network infrastructure components. Docs: " + getDocURL(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if build_info.IsDevBuild() {
			fmt.Printf("\n%s\n%s\n%s\n%s\n\n",
				color.RedString("┌─────────────────────────────────────────────────────────────────────────┐"),
				color.RedString("│ ⚠️  WARNING: This is a development build                                │"),
				color.RedString("│ Official releases: https://github.com/cloudcomb/ncp/releases            │"),
				color.RedString("└─────────────────────────────────────────────────────────────────────────┘"))
		}

		fmt.Printf("%s %s %s %s\n",
			color.CyanString("Executing ncp with build"),
			color.GreenString("version=%s", build_info.Version),
			color.YellowString("commit=%s", build_info.Commit),
			color.BlueString("date=%s", build_info.Date))

		if err := checkWritePermissions(); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", color.RedString("Error: %v", err))
			os.Exit(1)
		}
	},
}

func init() {
	cobra.EnableTraverseRunHooks = true

	lumberjackLogger := &lumberjack.Logger{
		Filename: "ncp.log",
		MaxSize:  25,
		Compress: true,
	}
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	handler := NewPrettyHandler(io.MultiWriter(lumberjackLogger, os.Stdout), opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)

	RootCmd.AddCommand(
		initialize.NewInitCmd(),
		validate.NewValidateCmd(),
		create_asset.NewCreateAssetCmd(),
		render.NewRenderCmd(),
		preflight.NewPreflightCmd(),
		preview.NewPreviewCmd(),
		apply.NewApplyCmd(),
		destroy.NewDestroyCmd(),
		publish.NewPublishCmd(),
		report.NewReportCmd(),
		status.NewStatusCmd(),
		version.NewVersionCmd(),
		update.NewUpdateCmd(),
	)
}

type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

type PrettyHandler struct {
	slog.Handler
	l *log.Logger
}

func getDocURL() string {
	if build_info.IsDevBuild() {
		return "https://github.com/cloudcomb/ncp/tree/latest/docs"
	}
	return "https://github.com/cloudcomb/ncp/tree/v" + build_info.Version + "/docs"

}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	time := r.Time.Format("2006/01/02 15:04:05")
	level := r.Level.String()
	message := r.Message

	values := []string{}
	r.Attrs(func(a slog.Attr) bool {
		values = append(values, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	})

	h.l.Printf("%s %s %s %s", time, level, message, strings.Join(values, " "))

	return nil
}

func NewPrettyHandler(
	out io.Writer,
	opts PrettyHandlerOptions,
) *PrettyHandler {
	h := &PrettyHandler{
		Handler: slog.NewTextHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
	}

	return h
}

func checkWritePermissions() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	testFile, err := os.CreateTemp(cwd, ".ncp-write-test-*")
	if err != nil {
		return fmt.Errorf("current working directory '%s' does not have write permissions for the current user", cwd)
	}

	// Defer works on a LIFO execution order.
	defer os.Remove(testFile.Name())
	defer testFile.Close()

	return nil
}
