package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/config"
	"github.com/Veraticus/decision-queue/internal/dashboard"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
	"github.com/Veraticus/decision-queue/internal/tui"
	"github.com/Veraticus/decision-queue/internal/tui/themes"
)

type dashboardRow struct {
	Pass dashboard.Pass `json:"pass,omitempty"`
	model.DecisionItem
}

type dashboardOutput struct {
	RunID       string         `json:"runId,omitempty"`
	Items       []dashboardRow `json:"items"`
	Warnings    []string       `json:"warnings,omitempty"`
	ActionCount int            `json:"actionCount"`
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard [files...]",
		Short: "Show the six most important decisions",
		Long: `Curate the ranked queue into at most six items.

The two highest-scoring items are always shown. Each remaining tier and then
each remaining category gets its best item, and any room left is filled by
score. Use --explain to see which rule chose each item.`,
		RunE: runDashboard,
	}

	cmd.Flags().Bool("json", false, "print the dashboard as JSON")
	cmd.Flags().Bool("explain", false, "show which selection pass chose each item")
	cmd.Flags().BoolP("interactive", "i", false, "browse the dashboard and rollup children interactively")
	cmd.Flags().Bool("record", false, "store this dashboard in the run history")
	cmd.Flags().Bool("from-db", false, "include stored items alongside the given files")
	cmd.Flags().String("theme", "default", "interactive color theme (default, catppuccin)")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")
	explain, _ := cmd.Flags().GetBool("explain")
	interactive, _ := cmd.Flags().GetBool("interactive")
	record, _ := cmd.Flags().GetBool("record")
	useDB, _ := cmd.Flags().GetBool("from-db")
	theme, _ := cmd.Flags().GetString("theme")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	result, store, err := pipeline(ctx, settings, args, useDB || record)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	picks := dashboard.Explain(result.ActionItems)

	var runID string
	if record {
		runID, err = recordRun(cmd, store, settings, picks, len(result.ActionItems))
		if err != nil {
			return err
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(w.Error()))
	}

	if interactive {
		return tui.Run(ctx, picks, cmd.InOrStdin(), cmd.OutOrStdout(),
			tui.WithNow(settings.Now),
			tui.WithTheme(themes.GetTheme(theme)),
			tui.WithTitle(fmt.Sprintf("Dashboard · %d of %d", len(picks), len(result.ActionItems))),
		)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		rows := make([]dashboardRow, len(picks))
		for i, p := range picks {
			rows[i] = dashboardRow{DecisionItem: p.Item}
			if explain {
				rows[i].Pass = p.Pass
			}
		}
		return writeJSON(out, dashboardOutput{
			RunID:       runID,
			Items:       rows,
			ActionCount: len(result.ActionItems),
			Warnings:    warningStrings(result.Warnings),
		})
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Dashboard (%d of %d)", len(picks), len(result.ActionItems))))
	if explain {
		fmt.Fprint(out, cli.RenderPicks(picks, settings.Now))
	} else {
		fmt.Fprint(out, cli.RenderItems(pickItems(picks), settings.Now))
	}
	if runID != "" {
		fmt.Fprintln(out, cli.FormatSuccess("Recorded run "+runID))
	}
	return nil
}

func recordRun(cmd *cobra.Command, store service.Storage, settings config.Settings, picks []dashboard.Pick, actionCount int) (string, error) {
	passes := make([]string, len(picks))
	for i, p := range picks {
		passes[i] = string(p.Pass)
	}

	run, err := store.RecordRun(cmd.Context(), service.Run{
		EvaluatedAt: settings.Now,
		ActionCount: actionCount,
		Items:       service.RunItemsFrom(pickItems(picks), passes),
	})
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	common.LogInfo("Recorded dashboard run", common.Fields{"run_id": run.ID, "items": len(run.Items)})
	return run.ID, nil
}

func pickItems(picks []dashboard.Pick) []model.DecisionItem {
	items := make([]model.DecisionItem, len(picks))
	for i, p := range picks {
		items[i] = p.Item
	}
	return items
}
