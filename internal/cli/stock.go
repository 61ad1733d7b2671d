package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"frontdesk/pkg/domain"
)

// NewStockCommand groups inventory commands.
func NewStockCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Manage consumable stock",
	}
	cmd.AddCommand(newStockAddCommand(opts))
	cmd.AddCommand(newStockAdjustCommand(opts))
	cmd.AddCommand(newStockListCommand(opts))
	cmd.AddCommand(newStockMovementsCommand(opts))
	return cmd
}

func newStockAddCommand(opts *RootOptions) *cobra.Command {
	var (
		id, name, unit string
		qty            float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a stock item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				item, err := sess.Desk.AddStockItem(ctx, domain.StockItem{Base: domain.Base{ID: id}, Name: name, Unit: unit, Quantity: qty})
				if err := classify("failed to add stock item", err); err != nil {
					return err
				}
				return formatter(cmd, opts).Success(item, func(w io.Writer) {
					fmt.Fprintf(w, "Added %s (%s): %g %s\n", item.Name, item.ID, item.Quantity, item.Unit)
				})
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "item id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "item name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&unit, "unit", "", "unit of measure")
	cmd.Flags().Float64Var(&qty, "qty", 0, "opening quantity")
	return cmd
}

func newStockAdjustCommand(opts *RootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:     "adjust <item-id> <in|out|adjust> <quantity>",
		Short:   "Record a stock movement",
		Example: "  frontdesk stock adjust towels out 4 --reason \"room 101\"",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := domain.StockMovementKind(args[1])
			if !kind.Valid() {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown stock movement kind %q", args[1]))
			}
			qty, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid quantity", err)
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				item, mov, err := sess.Desk.AdjustStock(ctx, args[0], kind, qty, reason, actionOptions(opts)...)
				if err := classify("failed to adjust stock", err); err != nil {
					return err
				}
				return formatter(cmd, opts).Success(mov, func(w io.Writer) {
					fmt.Fprintf(w, "%s: %g -> %g %s\n", item.Name, mov.Before, mov.After, item.Unit)
				})
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the stock changed")
	return cmd
}

func newStockListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stock items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				items := sess.Desk.Inventory().Items()
				return formatter(cmd, opts).Success(items, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tUNIT")
					for _, it := range items {
						fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", it.ID, it.Name, it.Quantity, it.Unit)
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func newStockMovementsCommand(opts *RootOptions) *cobra.Command {
	var item, search string
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "List stock movements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				ledger := sess.Desk.Inventory().Movements()
				var records []domain.StockMovement
				switch {
				case item != "":
					records = ledger.ByEntity(item)
				case search != "":
					records = ledger.Search(search)
				default:
					records = ledger.All()
				}
				return formatter(cmd, opts).Success(records, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tDATE\tTIME\tITEM\tKIND\tQTY\tBEFORE\tAFTER\tREASON")
					for _, m := range records {
						fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%g\t%g\t%g\t%s\n",
							m.ID, m.Date, m.Time, m.ItemID, m.Kind, m.Quantity, m.Before, m.After, m.Reason)
					}
					_ = tw.Flush()
				})
			})
		},
	}
	cmd.Flags().StringVar(&item, "item", "", "item id")
	cmd.Flags().StringVar(&search, "search", "", "text search")
	return cmd
}
