package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leofalp/promptfn/core/function"
	"github.com/leofalp/promptfn/core/parse"
	"github.com/leofalp/promptfn/core/template"
	"github.com/leofalp/promptfn/internal/config"
	"github.com/leofalp/promptfn/internal/utils"
	"github.com/leofalp/promptfn/providers/ai"
)

// compileOffline builds fn against a provider that is never called, for the
// commands that only render or parse.
func compileOffline(cmd *cobra.Command, g *globalFlags, fn *config.Function) (*impl, error) {
	return buildImpl(fn, ai.NewFake(), g.setupLogger(cmd.ErrOrStderr()), g.debug)
}

func loadPreparedInput(fn *config.Function, path string) (template.Map, error) {
	in, err := config.LoadInput(path)
	if err != nil {
		return nil, err
	}
	return fn.PrepareInput(in)
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the rendered prompt for an input",
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := g.loadFunction()
			if err != nil {
				return err
			}
			f, err := compileOffline(cmd, g, fn)
			if err != nil {
				return err
			}
			in, err := loadPreparedInput(fn, inputPath)
			if err != nil {
				return err
			}
			prompt, err := f.Prompt(in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "YAML or JSON input record (- for stdin)")
	return cmd
}

func newMarkersCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "List the marker tokens of a function and their text",
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := g.loadFunction()
			if err != nil {
				return err
			}
			f, err := compileOffline(cmd, g, fn)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := f.Markers()
			for i, token := range table.Tokens() {
				text, _ := table.Resolve(token)
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "{%s}\n%s\n", token, text)
			}
			return nil
		},
	}
}

func newParseCmd(g *globalFlags) *cobra.Command {
	var (
		responsePath string
		loose        bool
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Deserialize a model answer into the function's output type",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readText(cmd.InOrStdin(), responsePath)
			if err != nil {
				return err
			}

			var out any
			if loose {
				out, err = parse.ParseStringAs[any](raw)
			} else {
				out, err = parseWithFunction(cmd, g, raw)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(out, true))
			return nil
		},
	}
	cmd.Flags().StringVarP(&responsePath, "response", "r", "-", "file holding the model answer (- for stdin)")
	cmd.Flags().BoolVar(&loose, "loose", false, "skip the output type and print the first JSON payload")
	return cmd
}

func parseWithFunction(cmd *cobra.Command, g *globalFlags, raw string) (any, error) {
	fn, err := g.loadFunction()
	if err != nil {
		return nil, err
	}
	f, err := compileOffline(cmd, g, fn)
	if err != nil {
		return nil, err
	}
	return f.Parse(raw)
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		inputPath    string
		responsePath string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render, send and deserialize in one call",
		Long:  "run invokes the function through a registry, by name. With --dry-run the model is replaced by a fake that answers with the contents of --response.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := g.loadFunction()
			if err != nil {
				return err
			}

			var canned string
			if responsePath != "" {
				if canned, err = readText(cmd.InOrStdin(), responsePath); err != nil {
					return err
				}
			}
			provider, err := newProvider(fn.Client, canned, dryRun)
			if err != nil {
				return err
			}

			f, err := buildImpl(fn, provider, g.setupLogger(cmd.ErrOrStderr()), g.debug)
			if err != nil {
				return err
			}
			reg := function.NewRegistry()
			if err := function.Register(reg, f); err != nil {
				return err
			}

			in, err := loadPreparedInput(fn, inputPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out, err := reg.Invoke(ctx, fn.Function, fn.Name, in)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return errors.New("interrupted")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(out, true))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "YAML or JSON input record (- for stdin)")
	cmd.Flags().StringVarP(&responsePath, "response", "r", "", "canned model answer used by --dry-run")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "answer with --response instead of calling the model")
	return cmd
}

// readText returns the contents of path, or of stdin when path is "-".
func readText(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
