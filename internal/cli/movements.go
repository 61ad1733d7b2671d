package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"frontdesk/pkg/domain"
)

// NewMovementsCommand queries the movement ledger.
func NewMovementsCommand(opts *RootOptions) *cobra.Command {
	var room, kind, date, search string
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "List movement records",
		Long: `List movement records. Filters combine; without filters every record is
listed in the order it was recorded. --room lists newest first.`,
		Example: `  frontdesk movements --room 101
  frontdesk movements --type check_out --date 2024-06-03
  frontdesk movements --search "perez"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var mt domain.MovementType
			if kind != "" {
				mt = domain.MovementType(kind)
				if !mt.Valid() {
					return NewExitError(ExitCommandError, fmt.Sprintf("unknown movement type %q", kind))
				}
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				svc := sess.Desk.Service()
				var sets [][]domain.MovementRecord
				if room != "" {
					sets = append(sets, svc.MovementsByRoom(room))
				}
				if mt != "" {
					sets = append(sets, svc.MovementsByType(mt))
				}
				if date != "" {
					sets = append(sets, svc.MovementsOn(date))
				}
				if search != "" {
					sets = append(sets, svc.SearchMovements(search))
				}
				if len(sets) == 0 {
					sets = append(sets, svc.Movements())
				}
				records := intersect(sets)
				return formatter(cmd, opts).Success(records, func(w io.Writer) {
					writeMovements(w, records)
				})
			})
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "room id")
	cmd.Flags().StringVar(&kind, "type", "", "movement type (check_in|check_out|status_change|reservation|cancellation)")
	cmd.Flags().StringVar(&date, "date", "", "record date YYYY-MM-DD")
	cmd.Flags().StringVar(&search, "search", "", "accent and case insensitive text search")
	return cmd
}

// intersect keeps the order of the first set.
func intersect(sets [][]domain.MovementRecord) []domain.MovementRecord {
	out := sets[0]
	for _, set := range sets[1:] {
		keep := make(map[int64]bool, len(set))
		for _, rec := range set {
			keep[rec.ID] = true
		}
		filtered := out[:0:0]
		for _, rec := range out {
			if keep[rec.ID] {
				filtered = append(filtered, rec)
			}
		}
		out = filtered
	}
	if out == nil {
		out = []domain.MovementRecord{}
	}
	return out
}

// NewStatsCommand prints occupancy and ledger statistics.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show occupancy and movement statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				svc := sess.Desk.Service()
				occupancy := svc.OccupancySummary()
				movements := svc.MovementStats(recent)
				data := map[string]any{"occupancy": occupancy, "movements": movements}
				return formatter(cmd, opts).Success(data, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					for _, st := range domain.RoomStatuses {
						fmt.Fprintf(tw, "%s\t%d\n", st.Label(), occupancy[st])
					}
					fmt.Fprintf(tw, "Movements\t%d\n", movements.Total)
					fmt.Fprintf(tw, "Today\t%d\n", movements.Today)
					fmt.Fprintf(tw, "Occupied rooms\t%d\n", movements.OpenEntities)
					kinds := make([]string, 0, len(movements.ByType))
					for k := range movements.ByType {
						kinds = append(kinds, k)
					}
					sort.Strings(kinds)
					for _, k := range kinds {
						fmt.Fprintf(tw, "  %s\t%d\n", k, movements.ByType[k])
					}
					_ = tw.Flush()
					if len(movements.Recent) > 0 {
						fmt.Fprintln(w)
						writeMovements(w, movements.Recent)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent records to include")
	return cmd
}

func writeMovements(w io.Writer, records []domain.MovementRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tROOM\tTYPE\tFROM\tTO\tACTOR\tOBSERVATIONS")
	for _, m := range records {
		from := "-"
		if m.PreviousStatus != nil {
			from = m.PreviousStatus.Label()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			strconv.FormatInt(m.ID, 10), m.Date, m.Time, m.RoomID, m.Type, from, m.NewStatus.Label(), m.Actor, m.Observations)
	}
	_ = tw.Flush()
}

// NewAdminCommand groups operator-only commands.
func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "remove-movement <id>",
		Short: "Remove one movement record from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid movement id", err)
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				actor := opts.Actor
				if actor == "" {
					actor = "admin"
				}
				if err := classify("failed to remove movement", sess.Desk.AdminDeleteMovement(ctx, id, actor)); err != nil {
					return err
				}
				return formatter(cmd, opts).Success(map[string]int64{"removed": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Removed movement %d\n", id)
				})
			})
		},
	})
	return cmd
}
