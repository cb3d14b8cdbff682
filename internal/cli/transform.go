package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/payroll/internal/core"
	"github.com/spf13/cobra"
)

// stdio is the --in/--out value for stdin and stdout.
const stdio = "-"

type transformOptions struct {
	in        string
	out       string
	rulesFile string
	format    string
	strict    bool
}

func newTransformCommand(g *globals) *cobra.Command {
	opts := &transformOptions{}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform a payroll export into the sign-off file",
		Example: `  payroll transform --in export.csv --out payroll.csv
  payroll transform --in export.xlsx --out payroll.xlsx
  cat export.csv | payroll transform --in - > payroll.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), g, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.in, "in", "", `input CSV or XLSX file ("-" for stdin)`)
	cmd.Flags().StringVar(&opts.out, "out", stdio, `output file ("-" for stdout)`)
	cmd.Flags().StringVar(&opts.rulesFile, "rules", "", "override rules YAML file (default RULES_FILE, then built-in rules)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: csv or xlsx (default from --out extension)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when the input has decode errors")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runTransform(ctx context.Context, g *globals, opts *transformOptions, stdin io.Reader, stdout io.Writer) error {
	format, err := outputFormat(opts)
	if err != nil {
		return err
	}

	rules, err := g.rules(opts.rulesFile)
	if err != nil {
		return err
	}

	in, name, err := openInput(opts.in, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	svc := core.NewService(core.ServiceOptions{
		Rules:         rules,
		Encoder:       g.encoder(),
		MaxConcurrent: 1,
		Logger:        g.logger,
	})

	run, err := svc.Process(ctx, name, in)
	if err != nil {
		if core.IsUserFacing(err) {
			return errors.New(core.FormatUserError(err))
		}
		return err
	}

	for _, de := range run.Errors {
		g.logger.Warn("decode error", "row", de.Row, "type", de.Type, "code", de.Code, "message", de.Message)
	}
	if opts.strict && len(run.Errors) > 0 {
		return fmt.Errorf("%d decode errors in %s", len(run.Errors), name)
	}

	if err := writeOutput(opts.out, stdout, func(w io.Writer) error {
		return svc.Export(w, format)
	}); err != nil {
		return err
	}

	g.logger.Info("transform complete",
		"in", name,
		"out", opts.out,
		"format", format,
		"decoded", run.Decoded,
		"kept", run.Kept,
		"overrides_applied", run.OverridesApplied,
		"decode_errors", len(run.Errors),
	)
	return nil
}

// outputFormat resolves --format, then the --out extension, then CSV.
func outputFormat(opts *transformOptions) (core.Format, error) {
	if opts.format != "" {
		return core.ParseFormat(opts.format)
	}
	if opts.out != stdio {
		return core.FormatForFile(opts.out), nil
	}
	return core.FormatCSV, nil
}

// openInput returns the input stream and the name used to pick its decoder.
func openInput(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if path == stdio {
		return io.NopCloser(stdin), "stdin.csv", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, filepath.Base(path), nil
}

// writeOutput runs write against stdout or a new file. A partially written
// file is removed on failure.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == stdio {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
