package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/output"
	"github.com/marcus/storefront/internal/storefront"
)

var menuCmd = &cobra.Command{
	Use:     "menu",
	Short:   "List menu items",
	GroupID: "public",
	Example: `  storefront menu
  storefront menu --category bakery
  storefront menu --featured --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		category, _ := cmd.Flags().GetString("category")
		featured, _ := cmd.Flags().GetBool("featured")
		all, _ := cmd.Flags().GetBool("all")
		jsonOut, _ := cmd.Flags().GetBool("json")

		items := sess.store.Menu(storefront.MenuFilter{
			Category:      category,
			FeaturedOnly:  featured,
			AvailableOnly: !all,
		})
		if jsonOut {
			return output.JSON(items)
		}

		printOfflineBanner(sess)
		if len(items) == 0 {
			fmt.Println("No menu items")
			return nil
		}
		width := output.TerminalWidth(0)
		for _, it := range items {
			fmt.Println(output.FormatMenuItemShort(it, width))
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List menu categories",
	GroupID: "public",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		cats := sess.store.Categories()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(cats)
		}
		printOfflineBanner(sess)
		counts := models.CountByCategory(sess.store.MenuItems())
		for _, c := range cats {
			fmt.Println(output.FormatCategory(c, counts[c.ID]))
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:     "info",
	Short:   "Show business information",
	GroupID: "public",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		printOfflineBanner(sess)
		fmt.Print(formatInfo(sess.store.Config()))
		return nil
	},
}

// formatInfo renders the public business profile. The admin credential is
// never part of it.
func formatInfo(cfg models.BusinessConfig) string {
	var sb strings.Builder
	sb.WriteString(output.SectionHeader(cfg.Name))
	if cfg.Slogan != "" {
		fmt.Fprintf(&sb, "  %s\n", cfg.Slogan)
	}
	if md := output.Prose(cfg.Description); md != "" {
		sb.WriteString(md + "\n")
	}
	sb.WriteString(output.SectionHeader("Visit us"))
	if cfg.Address != "" {
		fmt.Fprintf(&sb, "  Address:  %s\n", cfg.Address)
	}
	if cfg.Phone != "" {
		fmt.Fprintf(&sb, "  Phone:    %s\n", cfg.Phone)
	}
	if cfg.Email != "" {
		fmt.Fprintf(&sb, "  Email:    %s\n", cfg.Email)
	}
	if cfg.Schedule.Weekdays != "" {
		fmt.Fprintf(&sb, "  Weekdays: %s\n", cfg.Schedule.Weekdays)
	}
	if cfg.Schedule.Weekends != "" {
		fmt.Fprintf(&sb, "  Weekends: %s\n", cfg.Schedule.Weekends)
	}
	social := []struct{ name, url string }{
		{"Instagram", cfg.SocialMedia.Instagram},
		{"Facebook", cfg.SocialMedia.Facebook},
		{"WhatsApp", cfg.SocialMedia.WhatsApp},
	}
	for _, s := range social {
		if s.url != "" {
			fmt.Fprintf(&sb, "  %-9s %s\n", s.name+":", s.url)
		}
	}
	if cfg.AboutUs != "" {
		sb.WriteString(output.RenderSection("About us", cfg.AboutUs))
	}
	return sb.String()
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Check the remote connection and show counts",
	GroupID: "public",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		st := sess.store.State()
		stats := sess.store.Stats()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]any{
				"connected": st.Connected,
				"lastError": st.LastError,
				"remote":    sess.cfg.RemoteURL,
				"policy":    sess.store.Policy().Name(),
				"stats":     stats,
			})
		}

		if st.Connected {
			output.Success("Connected to %s", sess.cfg.RemoteURL)
		} else {
			fmt.Println(output.OfflineBanner(st))
		}
		fmt.Printf("Write policy: %s\n", sess.store.Policy().Name())
		fmt.Print(output.SectionHeader("Menu"))
		fmt.Printf("  %d items, %d available, %d featured\n", stats.Items, stats.Available, stats.Featured)
		fmt.Print(output.SectionHeader("Reservations"))
		fmt.Printf("  %d total, %d pending\n", stats.Reservations, stats.Pending)
		fmt.Print(output.SectionHeader("Categories"))
		fmt.Printf("  %d\n", stats.Categories)
		return nil
	},
}

func printOfflineBanner(sess *session) {
	if banner := output.OfflineBanner(sess.store.State()); banner != "" {
		fmt.Println(banner)
	}
}

func init() {
	menuCmd.Flags().String("category", "", "Only show items in this category id")
	menuCmd.Flags().Bool("featured", false, "Only show featured items")
	menuCmd.Flags().Bool("all", false, "Include unavailable items")
	menuCmd.Flags().Bool("json", false, "JSON output")

	categoriesCmd.Flags().Bool("json", false, "JSON output")
	statusCmd.Flags().Bool("json", false, "JSON output")

	rootCmd.AddCommand(menuCmd, categoriesCmd, infoCmd, statusCmd)
}
