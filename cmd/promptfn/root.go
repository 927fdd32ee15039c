package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/promptfn/internal/config"
	"github.com/leofalp/promptfn/providers/observability/slogobs"
)

var version = "dev"

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	debug   bool
	envFile string
	fnPath  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "promptfn",
		Short:         "Render, run and parse typed prompt functions",
		Long:          "promptfn loads a prompt function from a YAML file, renders its template against an input record, sends it to a model and deserializes the answer into the declared output type.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv(flags.envFile)
		},
	}

	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging and tracing")
	root.PersistentFlags().StringVar(&flags.envFile, "env", ".env", "path to a .env file (ignored when missing)")
	root.PersistentFlags().StringVarP(&flags.fnPath, "file", "f", "", "path to the function YAML file")

	root.AddCommand(
		newRenderCmd(flags),
		newMarkersCmd(flags),
		newParseCmd(flags),
		newRunCmd(flags),
	)
	return root
}

// loadFunction parses the file named by --file.
func (g *globalFlags) loadFunction() (*config.Function, error) {
	if g.fnPath == "" {
		return nil, errors.New("--file is required")
	}
	return config.Load(g.fnPath)
}

// setupLogger writes compact lines to w. --debug wins over PROMPTFN_LOG_LEVEL.
func (g *globalFlags) setupLogger(w io.Writer) *slog.Logger {
	level := slogobs.LevelFromEnv()
	if g.debug {
		level = slog.LevelDebug
	}
	return slog.New(slogobs.NewHandler(&slogobs.HandlerOptions{
		Level:  level,
		Output: w,
		Colors: isTerminal(w),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
