package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"frontdesk/internal/core"
	"frontdesk/pkg/domain"
)

func reportOutcome(cmd *cobra.Command, opts *RootOptions, out core.Outcome) error {
	return formatter(cmd, opts).Success(out, func(w io.Writer) {
		if !out.Applied() {
			fmt.Fprintf(w, "Room %s unchanged (%s)\n", out.Room.ID, out.Room.Status.Label())
			return
		}
		fmt.Fprintf(w, "Room %s is now %s. Movement #%d: %s\n",
			out.Room.ID, out.Room.Status.Label(), out.Movement.ID, out.Movement.Observations)
		for _, v := range out.Result.Violations {
			fmt.Fprintf(w, "warning: %s\n", v.Message)
		}
	})
}

// NewReserveCommand places a reservation.
func NewReserveCommand(opts *RootOptions) *cobra.Command {
	var date, clock string
	cmd := &cobra.Command{
		Use:     "reserve <room-id>",
		Short:   "Reserve a room for a date and time",
		Example: "  frontdesk reserve 101 --date 2024-06-09 --time 14:00",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				out, err := sess.Desk.Reserve(ctx, args[0], date, clock, actionOptions(opts)...)
				if err := classify("failed to reserve", err); err != nil {
					return err
				}
				return reportOutcome(cmd, opts, out)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reservation date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&clock, "time", "", "reservation time HH:MM (required)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

// NewCheckInCommand seats a guest.
func NewCheckInCommand(opts *RootOptions) *cobra.Command {
	var guest, document, date, clock string
	cmd := &cobra.Command{
		Use:   "checkin <room-id>",
		Short: "Check a guest into a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				d, t := dateTimeOr(sess, date, clock)
				out, err := sess.Desk.CheckIn(ctx, args[0], guest, document, d, t, actionOptions(opts)...)
				if err := classify("failed to check in", err); err != nil {
					return err
				}
				return reportOutcome(cmd, opts, out)
			})
		},
	}
	cmd.Flags().StringVar(&guest, "guest", "", "guest name (required)")
	_ = cmd.MarkFlagRequired("guest")
	cmd.Flags().StringVar(&document, "document", "", "guest identity document")
	cmd.Flags().StringVar(&date, "date", "", "check-in date (defaults to today)")
	cmd.Flags().StringVar(&clock, "time", "", "check-in time (defaults to now)")
	return cmd
}

// NewCheckOutCommand releases a room.
func NewCheckOutCommand(opts *RootOptions) *cobra.Command {
	var (
		date, clock string
		clean       bool
	)
	cmd := &cobra.Command{
		Use:   "checkout <room-id>",
		Short: "Check the guest out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				d, t := dateTimeOr(sess, date, clock)
				out, err := sess.Desk.CheckOut(ctx, args[0], d, t, clean, actionOptions(opts)...)
				if err := classify("failed to check out", err); err != nil {
					return err
				}
				return reportOutcome(cmd, opts, out)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "check-out date (defaults to today)")
	cmd.Flags().StringVar(&clock, "time", "", "check-out time (defaults to now)")
	cmd.Flags().BoolVar(&clean, "clean", true, "send the room to cleaning")
	return cmd
}

// NewCancelCommand cancels a reservation.
func NewCancelCommand(opts *RootOptions) *cobra.Command {
	var override bool
	cmd := &cobra.Command{
		Use:   "cancel <room-id>",
		Short: "Cancel a room's reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []core.ActionOption
			if override {
				extra = append(extra, core.WithOverride())
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				out, err := sess.Desk.CancelReservation(ctx, args[0], actionOptions(opts, extra...)...)
				if err := classify("failed to cancel", err); err != nil {
					return err
				}
				return reportOutcome(cmd, opts, out)
			})
		},
	}
	cmd.Flags().BoolVar(&override, "override", false, "cancel even when the reservation is imminent")
	return cmd
}

// NewStatusCommand applies a manual status change.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	var (
		override          bool
		guest, document   string
		resDate, resClock string
	)
	cmd := &cobra.Command{
		Use:   "status <room-id> <vacant|reserved|occupied|cleaning>",
		Short: "Change a room's status manually",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			var extra []core.ActionOption
			if override {
				extra = append(extra, core.WithOverride())
			}
			if guest != "" {
				extra = append(extra, core.WithGuest(domain.Guest{Name: guest, Document: document}))
			}
			if resDate != "" || resClock != "" {
				extra = append(extra, core.WithReservation(domain.Reservation{Date: resDate, Time: resClock}))
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				out, err := sess.Desk.ChangeStatus(ctx, args[0], status, actionOptions(opts, extra...)...)
				if err := classify("failed to change status", err); err != nil {
					return err
				}
				return reportOutcome(cmd, opts, out)
			})
		},
	}
	cmd.Flags().BoolVar(&override, "override", false, "change even when a reservation is imminent")
	cmd.Flags().StringVar(&guest, "guest", "", "guest name when moving to occupied")
	cmd.Flags().StringVar(&document, "document", "", "guest document when moving to occupied")
	cmd.Flags().StringVar(&resDate, "reservation-date", "", "reservation date when moving to reserved")
	cmd.Flags().StringVar(&resClock, "reservation-time", "", "reservation time when moving to reserved")
	return cmd
}
