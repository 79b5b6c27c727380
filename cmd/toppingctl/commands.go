package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/franciscosanchezn/pizza-admin/internal/topping"
	"github.com/spf13/cobra"
)

// loadView fetches the pizzas and builds a fresh view. recent seeds the
// recent list, most recent first.
func (a *app) loadView(ctx context.Context, recent []string) (*topping.View, error) {
	pizzas, err := a.api.ListPizzas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pizzas: %w", err)
	}
	view := topping.NewView(a.conf.RecentLimit)
	for i := len(recent) - 1; i >= 0; i-- {
		view.Recent.Push(recent[i])
	}
	view.Refresh(pizzas)
	a.logger.WithField("toppings", len(view.Toppings)).Debug("Topping index built")
	return view, nil
}

func (a *app) newListCmd() *cobra.Command {
	var (
		filter string
		sortBy string
		recent []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List toppings with the number of pizzas using them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := topping.ParseSortMode(sortBy)
			if err != nil {
				return err
			}
			view, err := a.loadView(cmd.Context(), recent)
			if err != nil {
				return err
			}
			view.Filter = filter
			view.Sort = mode
			return printToppings(cmd.OutOrStdout(), view.Visible())
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "case-insensitive substring filter")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(topping.SortNameAsc), "sort mode: name, name-desc, usage, recent")
	cmd.Flags().StringSliceVar(&recent, "recent", nil, "recently used toppings, most recent first")
	return cmd
}

func (a *app) newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a topping in every pizza that uses it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName, newName := args[0], args[1]
			view, err := a.loadView(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if !view.BeginEdit(oldName) {
				return fmt.Errorf("topping %q not found", oldName)
			}
			view.SetDraft(oldName, newName)

			result, err := view.CommitEdit(cmd.Context(), a.coordinator(), oldName)
			if err != nil {
				return a.reportFailure(cmd, result, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q in %d pizza(s)\n",
				oldName, strings.TrimSpace(newName), len(result.Updated))
			return nil
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	var (
		filter string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "delete [NAME...]",
		Short: "Remove toppings from every pizza that uses them",
		Example: `  toppingctl delete Ham Olives
  toppingctl delete --filter cheese --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("give topping names or --all, not both")
			}
			view, err := a.loadView(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if all {
				view.Filter = filter
				view.SelectAll()
			}
			for _, name := range args {
				if !view.Toggle(name) {
					return fmt.Errorf("topping %q not found or given twice", name)
				}
			}
			names := view.SelectionSnapshot()

			result, err := view.BulkDelete(cmd.Context(), a.coordinator())
			if err != nil {
				return a.reportFailure(cmd, result, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %d pizza(s)\n",
				strings.Join(names, ", "), len(result.Updated))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "with --all, restrict to toppings matching this filter")
	cmd.Flags().BoolVar(&all, "all", false, "delete every topping in the (filtered) list")
	return cmd
}

func (a *app) newAddCmd() *cobra.Command {
	var pizzaID int
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a new topping to a pizza",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.loadView(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := view.AddTopping(args[0]); err != nil {
				return err
			}
			name := view.Recent.Names()[0]

			pizza, err := a.api.GetPizza(cmd.Context(), pizzaID)
			if err != nil {
				return err
			}
			pizza.Toppings = append(pizza.Toppings, name)
			if _, err := a.api.UpdatePizza(cmd.Context(), pizza); err != nil {
				return fmt.Errorf("failed to update pizza %d: %w", pizzaID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", name, pizza.Name)
			return nil
		},
	}
	cmd.Flags().IntVarP(&pizzaID, "pizza", "p", 0, "ID of the pizza to add the topping to")
	_ = cmd.MarkFlagRequired("pizza")
	return cmd
}

func (a *app) newBasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bases",
		Short: "List pizza bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bases, err := a.api.ListBases(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, b := range bases {
				fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.Name, b.Description)
			}
			return w.Flush()
		},
	}
}

// reportFailure explains a failed rename or delete. After a partial failure
// some pizzas were already written, so the user is told which ones failed.
func (a *app) reportFailure(cmd *cobra.Command, result *topping.Result, err error) error {
	var batch *topping.BatchError
	if errors.As(err, &batch) {
		a.logger.WithError(err).Error("Topping propagation partially failed")
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d pizza(s) updated; failed pizza IDs: %s\n",
			len(result.Updated), result.Affected, joinInts(batch.FailedIDs()))
		fmt.Fprintln(cmd.ErrOrStderr(), "Run `toppingctl list` to see the current state.")
	}
	return err
}

func printToppings(out io.Writer, toppings []topping.Topping) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUSAGE")
	for _, t := range toppings {
		fmt.Fprintf(w, "%s\t%d\n", t.Name, t.Usage)
	}
	return w.Flush()
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
