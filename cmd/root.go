package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/config"
	"github.com/marcus/storefront/internal/output"
)

var (
	version   string
	logLevel  string
	configDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Menu, reservations and business profile for a small café",
	Long: `storefront - browse the menu, book a table and manage the business profile.

Changes are applied locally first and synced to the remote document store in
the background. Without a reachable remote the session keeps working offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	// Cobra's own template, with aliases listed beside each subcommand.
	rootCmd.SetUsageTemplate(strings.ReplaceAll(rootCmd.UsageTemplate(),
		"rpad .Name .NamePadding ", "rpad (nameWithAliases .) (add .NamePadding 8) "))

	rootCmd.AddGroup(
		&cobra.Group{ID: "public", Title: "Storefront Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.config/storefront)")
}

// resolveConfigDir returns --config-dir, or the default location.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return config.Dir()
}

// setupLogging installs a text slog handler on stderr. The flag wins over
// the config file and environment.
func setupLogging() {
	level := logLevel
	if level == "" {
		if dir, err := resolveConfigDir(); err == nil {
			if cfg, err := config.Load(dir); err == nil {
				level = cfg.Level()
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
