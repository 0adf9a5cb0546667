package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/common"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded dashboards or show one",
		Long: `Without arguments, list the most recent dashboards stored with
"dq dashboard --record". With a run id, show what that dashboard contained.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "number of runs to list (0 for all)")
	cmd.Flags().Bool("json", false, "print as JSON")
	cmd.Flags().Bool("delete", false, "delete the given run")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	del, _ := cmd.Flags().GetBool("delete")

	if del && len(args) == 0 {
		return common.NewUserError("--delete needs a run id", nil)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		if del {
			if err := store.DeleteRun(ctx, args[0]); err != nil {
				return notFoundAsUserError(err, args[0])
			}
			fmt.Fprintln(out, cli.FormatSuccess("Deleted run "+args[0]))
			return nil
		}

		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return notFoundAsUserError(err, args[0])
		}
		if asJSON {
			return writeJSON(out, run)
		}
		fmt.Fprint(out, cli.RenderRun(run))
		return nil
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, runs)
	}
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Recorded runs (%d)", len(runs))))
	fmt.Fprint(out, cli.RenderRuns(runs))
	return nil
}

func notFoundAsUserError(err error, id string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no run with id %s", id), err)
	}
	return err
}
