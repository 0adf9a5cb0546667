package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/model"
)

type policyOutput struct {
	TitleKey  model.TitleKey `json:"titleKey"`
	RollupID  string         `json:"rollupId"`
	Label     string         `json:"label"`
	Category  model.Category `json:"category,omitempty"`
	Severity  model.Severity `json:"severity,omitempty"`
	Breakdown string         `json:"breakdown"`
	MinCount  int            `json:"minCount"`
}

func policiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List rollup policies",
		Long: `List the rollup policies in effect: the built-in ones and any added or
replaced under "rollups" in the config file.`,
		Args: cobra.NoArgs,
		RunE: runPolicies,
	}

	cmd.Flags().Bool("json", false, "print policies as JSON")

	return cmd
}

func runPolicies(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	eng, err := newEngine(settings)
	if err != nil {
		return err
	}

	policies := eng.Registry().Policies()
	out := cmd.OutOrStdout()

	if asJSON {
		rows := make([]policyOutput, len(policies))
		for i, p := range policies {
			rows[i] = policyOutput{
				TitleKey:  p.TitleKey,
				RollupID:  p.RollupID,
				Label:     p.Label(p.MinCount),
				Category:  p.Category,
				Severity:  p.Severity,
				Breakdown: string(p.Breakdown),
				MinCount:  p.MinCount,
			}
		}
		return writeJSON(out, rows)
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Rollup policies (%d)", len(policies))))
	fmt.Fprint(out, cli.RenderPolicies(policies))
	return nil
}
