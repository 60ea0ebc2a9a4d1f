package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved analyses",
	}
	cmd.AddCommand(
		newHistoryListCmd(opts),
		newHistoryShowCmd(opts),
		newHistoryClearCmd(opts),
		newHistoryDiffCmd(opts),
	)
	return cmd
}

func newHistoryListCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			items, err := a.History.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if opts.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			renderHistory(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of items (0 = all)")
	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			item, err := a.History.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n%s\n\n", item.ID, item.Kind,
				item.Timestamp.Local().Format("2006-01-02 15:04:05"), item.Input)
			renderResult(cmd.OutOrStdout(), item.Result, "")
			return nil
		},
	}
}

func newHistoryClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			if err := a.History.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

func newHistoryDiffCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <base-id> <head-id>",
		Short: "Compare two saved analyses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			cmp, err := a.History.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if opts.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), cmp)
			}
			renderComparison(cmd.OutOrStdout(), cmp)
			return nil
		},
	}
}
