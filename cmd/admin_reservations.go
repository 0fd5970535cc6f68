package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/output"
)

var reservationsCmd = &cobra.Command{
	Use:     "reservations",
	Aliases: []string{"res"},
	Short:   "Manage table reservations",
}

var reservationsStatus statusValue

var reservationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reservations",
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		var list []models.Reservation
		for _, r := range sess.store.Reservations() {
			status := r.Status
			if status == "" {
				status = models.StatusPending
			}
			if reservationsStatus.status != "" && status != reservationsStatus.status {
				continue
			}
			list = append(list, r)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if list == nil {
				list = []models.Reservation{}
			}
			return output.JSON(list)
		}
		if len(list) == 0 {
			fmt.Println("No reservations")
			return nil
		}
		long, _ := cmd.Flags().GetBool("long")
		width := output.TerminalWidth(0)
		for _, r := range list {
			if long {
				fmt.Println(output.FormatReservationLong(r))
				continue
			}
			fmt.Println(output.FormatReservationShort(r, width))
		}
		return nil
	}),
}

// statusCommand builds confirm/cancel, which differ only in target status.
func statusCommand(use, short string, to models.ReservationStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
			if err := sess.store.SetReservationStatus(cmd.Context(), args[0], to); err != nil {
				return err
			}
			r, _ := sess.store.Reservation(args[0])
			output.Success("Reservation %s for %s is %s", args[0], r.Name, output.StatusBadge(to))
			warnOffline(sess)
			return nil
		}),
	}
}

var reservationsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a reservation",
	Args:    cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		r, ok := sess.store.Reservation(args[0])
		if !ok {
			return fmt.Errorf("reservation %s not found", args[0])
		}
		if ok, err := confirm(cmd, fmt.Sprintf("Delete reservation for %s on %s?", r.Name, r.Date)); err != nil || !ok {
			return err
		}
		if err := sess.store.DeleteReservation(cmd.Context(), r.ID); err != nil {
			return err
		}
		output.Success("Deleted reservation %s", r.ID)
		warnOffline(sess)
		return nil
	}),
}

func init() {
	reservationsListCmd.Flags().Var(&reservationsStatus, "status", "Only show this status (pending, confirmed, cancelled)")
	reservationsListCmd.Flags().Bool("json", false, "JSON output")
	reservationsListCmd.Flags().BoolP("long", "l", false, "Show every field")
	reservationsDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	reservationsCmd.AddCommand(
		reservationsListCmd,
		statusCommand("confirm", "Confirm a pending reservation", models.StatusConfirmed),
		statusCommand("cancel", "Cancel a reservation", models.StatusCancelled),
		reservationsDeleteCmd,
	)
	adminCmd.AddCommand(reservationsCmd)
}
