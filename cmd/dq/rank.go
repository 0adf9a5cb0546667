package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/model"
)

type rankOutput struct {
	ActionItems        []model.DecisionItem `json:"actionItems"`
	InformationalItems []model.DecisionItem `json:"informationalItems,omitempty"`
	Warnings           []string             `json:"warnings,omitempty"`
}

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank [files...]",
		Short: "Print the full ordered decision queue",
		Long: `Roll up, score and order decision items.

Items are read from the given JSON or YAML files. With no files, or with --from-db,
the items stored by "dq import" are used as well.`,
		RunE: runRank,
	}

	cmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.Flags().Bool("all", false, "include informational items")
	cmd.Flags().Bool("from-db", false, "include stored items alongside the given files")

	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")
	all, _ := cmd.Flags().GetBool("all")
	useDB, _ := cmd.Flags().GetBool("from-db")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	result, store, err := pipeline(ctx, settings, args, useDB)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	out := cmd.OutOrStdout()
	if asJSON {
		payload := rankOutput{
			ActionItems: result.ActionItems,
			Warnings:    warningStrings(result.Warnings),
		}
		if payload.ActionItems == nil {
			payload.ActionItems = []model.DecisionItem{}
		}
		if all {
			payload.InformationalItems = result.InformationalItems
		}
		return writeJSON(out, payload)
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Decision queue (%d)", len(result.ActionItems))))
	fmt.Fprint(out, cli.RenderItems(result.ActionItems, settings.Now))

	if all {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Informational (%d)", len(result.InformationalItems))))
		fmt.Fprint(out, cli.RenderItems(result.InformationalItems, settings.Now))
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(w.Error()))
	}
	return nil
}
