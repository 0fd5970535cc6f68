package cmd

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/output"
	"github.com/marcus/storefront/internal/storefront"
	"github.com/marcus/storefront/internal/tui/dashboard"
)

var adminCategoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "Manage menu categories",
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category; its id is derived from the name",
	Args:  cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		icon, _ := cmd.Flags().GetString("icon")
		c, err := sess.store.AddCategory(cmd.Context(), args[0], icon)
		if err != nil {
			return err
		}
		output.Success("Added category %s %s (%s)", c.Icon, c.Name, c.ID)
		warnOffline(sess)
		return nil
	}),
}

var categoriesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an unused category",
	Args:    cobra.ExactArgs(1),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		err := sess.store.DeleteCategory(cmd.Context(), args[0])
		if errors.Is(err, storefront.ErrCategoryInUse) {
			n := sess.store.Stats().PerCategory[args[0]]
			return fmt.Errorf("category %s still has %d items, move or delete them first", args[0], n)
		}
		if err != nil {
			return err
		}
		output.Success("Deleted category %s", args[0])
		warnOffline(sess)
		return nil
	}),
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live admin dashboard",
	Long: `Launch the admin dashboard with tabs for overview, menu, reservations and
categories.

Key bindings:
  Tab/Shift+Tab  Switch tabs
  1-4            Jump to tab
  ↑/↓ or j/k     Select row
  c / x          Confirm / cancel reservation
  d              Delete selected row
  t / f          Toggle available / featured
  r              Retry remote connection
  L              Log out
  ?              Toggle help
  q              Quit`,
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval < 250*time.Millisecond {
			interval = time.Second
		}
		model := dashboard.NewModel(cmd.Context(), sess.store, sess.gate, interval)
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running dashboard: %w", err)
		}
		return nil
	}),
}

func init() {
	categoriesAddCmd.Flags().String("icon", "🍽️", "Category icon")
	dashboardCmd.Flags().Duration("interval", time.Second, "Refresh interval")

	adminCategoriesCmd.AddCommand(categoriesAddCmd, categoriesDeleteCmd)
	adminCmd.AddCommand(adminCategoriesCmd, dashboardCmd)
}
