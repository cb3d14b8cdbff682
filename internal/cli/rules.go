package cli

import (
	"fmt"

	"github.com/JonMunkholm/payroll/internal/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// rulesDocument mirrors the layout LoadRules reads.
type rulesDocument struct {
	Rules []core.OverrideRule `yaml:"rules"`
}

func newRulesCommand(g *globals) *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active override rules as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := g.rules(rulesFile)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rulesDocument{Rules: rules}); err != nil {
				return fmt.Errorf("encode rules: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "override rules YAML file (default RULES_FILE, then built-in rules)")
	return cmd
}
