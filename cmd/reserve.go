package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/output"
)

var reserveCmd = &cobra.Command{
	Use:     "reserve",
	Short:   "Book a table",
	GroupID: "public",
	Example: `  storefront reserve --name "Ana Ruiz" --phone 555-0101 --date 2026-03-20 --time 19:30 --guests 4
  storefront reserve   # interactive form`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := reservationFromFlags(cmd)
		if missingReservationFields(req) && isInteractive() {
			if err := promptReservation(&req); err != nil {
				return err
			}
		}

		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		id, err := sess.store.AddReservation(cmd.Context(), req)
		if err != nil {
			return err
		}
		r, _ := sess.store.Reservation(id)
		output.Success("Reservation received for %s on %s at %s (%d guests)", r.Name, r.Date, r.Time, r.Guests)
		if !sess.store.Connected() {
			output.Warning("remote store unavailable, the booking was not sent")
		}
		return nil
	},
}

func reservationFromFlags(cmd *cobra.Command) models.ReservationRequest {
	f := cmd.Flags()
	var req models.ReservationRequest
	req.Name, _ = f.GetString("name")
	req.Email, _ = f.GetString("email")
	req.Phone, _ = f.GetString("phone")
	req.Date, _ = f.GetString("date")
	req.Time, _ = f.GetString("time")
	req.Guests, _ = f.GetInt("guests")
	req.Notes, _ = f.GetString("notes")
	return req
}

func missingReservationFields(req models.ReservationRequest) bool {
	for _, v := range []string{req.Name, req.Phone, req.Date, req.Time} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// promptReservation asks for the booking fields, keeping any values
// already given as flags.
func promptReservation(req *models.ReservationRequest) error {
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}
	guests := strconv.Itoa(max(req.Guests, 1))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&req.Name).Validate(required("name")),
			huh.NewInput().Title("Phone").Value(&req.Phone).Validate(required("phone")),
			huh.NewInput().Title("Email").Value(&req.Email).Placeholder("optional"),
		).Title("Book a table"),
		huh.NewGroup(
			huh.NewInput().Title("Date").Value(&req.Date).Placeholder("YYYY-MM-DD").
				Validate(func(s string) error {
					if _, err := time.Parse("2006-01-02", s); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().Title("Time").Value(&req.Time).Placeholder("HH:MM").
				Validate(func(s string) error {
					if _, err := time.Parse("15:04", s); err != nil {
						return errors.New("use HH:MM")
					}
					return nil
				}),
			huh.NewInput().Title("Guests").Value(&guests).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n < 1 {
						return errors.New("at least 1 guest")
					}
					return nil
				}),
			huh.NewText().Title("Notes").Value(&req.Notes).Lines(3),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return err
	}
	req.Guests, _ = strconv.Atoi(guests)
	return nil
}

func init() {
	reserveCmd.Flags().String("name", "", "Guest name")
	reserveCmd.Flags().String("phone", "", "Contact phone")
	reserveCmd.Flags().String("email", "", "Contact email (optional)")
	reserveCmd.Flags().String("date", "", "Date (YYYY-MM-DD)")
	reserveCmd.Flags().String("time", "", "Time (HH:MM)")
	reserveCmd.Flags().Int("guests", 2, "Number of guests")
	reserveCmd.Flags().String("notes", "", "Notes for the staff")

	rootCmd.AddCommand(reserveCmd)
}
