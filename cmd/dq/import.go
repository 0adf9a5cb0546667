package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/config"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
	"github.com/Veraticus/decision-queue/internal/source"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import files...",
		Short: "Validate and store decision items",
		Long: `Read decision items from JSON or YAML files and store them in the local database.

Every item is validated first. Items are stored per file, keyed by id, so
importing a file again replaces its items. Use --prune to also delete
stored items from the same file that are no longer present.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "validate without saving")
	cmd.Flags().Bool("prune", false, "delete stored items from the same file that are no longer present")
	cmd.Flags().Bool("quiet", false, "hide the progress bar")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	prune, _ := cmd.Flags().GetBool("prune")
	quiet, _ := cmd.Flags().GetBool("quiet")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import interrupted. Files imported so far are kept.")
	ctx := interrupts.HandleInterrupts(cmd.Context())
	defer interrupts.Stop()

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetVisibility(!quiet),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing items...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	var total, pruned int
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := source.NewFileSource(config.ExpandPath(path))
		items, err := src.Items(ctx, settings.Now)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("cannot read %s", path), err)
		}
		for i, item := range items {
			if err := item.Validate(); err != nil {
				return common.NewUserError(fmt.Sprintf("%s: item %d is invalid", path, i), err)
			}
		}

		if !dryRun && len(items) > 0 {
			if err := store.SaveItems(ctx, src.Name(), items); err != nil {
				return fmt.Errorf("failed to save items from %s: %w", path, err)
			}
		}
		if !dryRun && prune {
			n, err := pruneSource(ctx, store, src.Name(), items)
			if err != nil {
				return err
			}
			pruned += n
		}

		common.LogDebug("Imported item file", common.Fields{"path": path, "items": len(items), "dry_run": dryRun})
		total += len(items)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	switch {
	case dryRun:
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d items from %d files are valid (dry run, nothing saved)", total, len(args))))
	case pruned > 0:
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d items from %d files, removed %d stale items", total, len(args), pruned)))
	default:
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d items from %d files", total, len(args))))
	}
	return nil
}

// pruneSource deletes stored items from sourceName whose ids are not in keep.
func pruneSource(ctx context.Context, store service.Storage, sourceName string, keep []model.DecisionItem) (int, error) {
	stored, err := store.ListItems(ctx, service.ItemFilter{Source: sourceName})
	if err != nil {
		return 0, fmt.Errorf("failed to list items from %s: %w", sourceName, err)
	}

	current := make(map[string]struct{}, len(keep))
	for _, item := range keep {
		current[item.ID] = struct{}{}
	}

	var stale []string
	for _, item := range stored {
		if _, ok := current[item.ID]; !ok {
			stale = append(stale, item.ID)
		}
	}

	n, err := store.DeleteItems(ctx, stale...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune items from %s: %w", sourceName, err)
	}
	return int(n), nil
}
