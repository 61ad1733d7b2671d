package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"frontdesk/internal/core"
	"frontdesk/pkg/domain"
)

// NewRoomCommand groups room maintenance commands.
func NewRoomCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
	}
	cmd.AddCommand(newRoomAddCommand(opts))
	cmd.AddCommand(newRoomListCommand(opts))
	cmd.AddCommand(newRoomShowCommand(opts))
	cmd.AddCommand(newRoomUpdateCommand(opts))
	cmd.AddCommand(newRoomDeleteCommand(opts))
	return cmd
}

func newRoomAddCommand(opts *RootOptions) *cobra.Command {
	var (
		id, name string
		price    float64
	)
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a vacant room",
		Example: `  frontdesk room add --id 101 --name "Garden view" --price 85`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			room := domain.Room{Base: domain.Base{ID: id}, Name: name}
			if cmd.Flags().Changed("price") {
				room.PricePerNight = &price
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				created, err := sess.Desk.AddRoom(ctx, room)
				if err := classify("failed to add room", err); err != nil {
					return err
				}
				return formatter(cmd, opts).Success(created, func(w io.Writer) {
					fmt.Fprintf(w, "Added room %s (%s)\n", created.ID, created.Name)
				})
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "room id (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "room name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().Float64Var(&price, "price", 0, "price per night")
	return cmd
}

func newRoomListCommand(opts *RootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				svc := sess.Desk.Service()
				rooms := svc.Rooms()
				if status != "" {
					st, err := parseStatus(status)
					if err != nil {
						return err
					}
					rooms = svc.RoomsByStatus(st)
				}
				return formatter(cmd, opts).Success(rooms, func(w io.Writer) {
					writeRooms(w, svc, rooms)
				})
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only rooms with this status")
	return cmd
}

func newRoomShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <room-id>",
		Short: "Show one room and its movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				svc := sess.Desk.Service()
				room, err := svc.Room(args[0])
				if err := classify("failed to show room", err); err != nil {
					return err
				}
				movements := svc.MovementsByRoom(room.ID)
				data := struct {
					Room      domain.Room             `json:"room"`
					Imminent  bool                    `json:"reservationImminent"`
					Movements []domain.MovementRecord `json:"movements"`
				}{room, svc.ReservationImminent(room), movements}
				return formatter(cmd, opts).Success(data, func(w io.Writer) {
					writeRooms(w, svc, []domain.Room{room})
					fmt.Fprintln(w)
					writeMovements(w, movements)
				})
			})
		},
	}
}

func newRoomUpdateCommand(opts *RootOptions) *cobra.Command {
	var (
		name       string
		price      float64
		clearPrice bool
	)
	cmd := &cobra.Command{
		Use:   "update <room-id>",
		Short: "Edit a room's name or price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var details core.RoomDetails
			if cmd.Flags().Changed("name") {
				details.Name = &name
			}
			if cmd.Flags().Changed("price") {
				details.PricePerNight = &price
			}
			details.ClearPrice = clearPrice
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				room, err := sess.Desk.UpdateRoomDetails(ctx, args[0], details)
				if err := classify("failed to update room", err); err != nil {
					return err
				}
				return formatter(cmd, opts).Success(room, func(w io.Writer) {
					fmt.Fprintf(w, "Updated room %s\n", room.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().Float64Var(&price, "price", 0, "new price per night")
	cmd.Flags().BoolVar(&clearPrice, "clear-price", false, "remove the price")
	return cmd
}

func newRoomDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete a room; its movement history is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				err := sess.Desk.DeleteRoom(ctx, args[0])
				if err := classify("failed to delete room", err); err != nil {
					return err
				}
				return formatter(cmd, opts).Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted room %s\n", args[0])
				})
			})
		},
	}
}

func writeRooms(w io.Writer, svc *core.Service, rooms []domain.Room) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPRICE\tGUEST\tRESERVATION")
	for _, r := range rooms {
		price := "-"
		if r.PricePerNight != nil {
			price = strconv.FormatFloat(*r.PricePerNight, 'f', 2, 64)
		}
		guest := "-"
		if r.Guest != nil {
			guest = r.Guest.Name
		}
		reservation := "-"
		if r.Reservation != nil {
			reservation = r.Reservation.Date + " " + r.Reservation.Time
			if svc.ReservationImminent(r) {
				reservation += " (imminent)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Status.Label(), price, guest, reservation)
	}
	_ = tw.Flush()
}
