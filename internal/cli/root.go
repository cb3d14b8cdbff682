// Package cli implements the payroll command-line tool.
//
//	payroll
//	├── transform   clean one payroll export and write the sign-off file
//	├── rules       print the active override rules
//	└── version
//
// Configuration comes from the same environment variables as the server,
// optionally read from --env-file. Logs go to stderr so stdout can carry
// the transformed file.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/payroll/internal/config"
	"github.com/JonMunkholm/payroll/internal/core"
	"github.com/JonMunkholm/payroll/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// globals holds state shared by every subcommand after PersistentPreRunE.
type globals struct {
	envFiles []string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the payroll command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Clean payroll CSV exports for sign-off",
		Long: `payroll reads a payroll export (CSV or XLSX), drops rows with neither
an SSN nor hours, masks SSNs to their last four digits, rewrites names as
"Last, First", sorts by name, applies override rules and appends the
"Approved by / Approved on" sign-off row.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init(cmd)
		},
	}

	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil, "dotenv file(s) to load before reading configuration")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		newTransformCommand(g),
		newRulesCommand(g),
		newVersionCommand(),
	)
	return cmd
}

func (g *globals) init(cmd *cobra.Command) error {
	if err := config.LoadEnvFiles(g.envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}

	g.cfg = cfg
	g.logger = logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format)
	return nil
}

// encoder builds the export encoder from configuration.
func (g *globals) encoder() *core.Encoder {
	return &core.Encoder{
		Delimiter: g.cfg.Export.DelimiterRune(),
		BOM:       g.cfg.Export.BOM,
		FileName:  g.cfg.Export.FileName,
	}
}

// rules loads override rules from path, falling back to RULES_FILE and
// then to the built-in defaults.
func (g *globals) rules(path string) ([]core.OverrideRule, error) {
	if path == "" {
		path = g.cfg.Rules.File
	}
	return core.LoadRules(path)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading so version works with a broken environment.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "payroll "+Version)
		},
	}
}
