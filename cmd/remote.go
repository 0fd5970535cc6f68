package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/config"
	"github.com/marcus/storefront/internal/gate"
	"github.com/marcus/storefront/internal/output"
	"github.com/marcus/storefront/internal/storefront"
)

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Short:   "Configure the remote document store",
	GroupID: "system",
}

var remoteSetFlags = []string{"url", "key", "timeout", "policy", "credential-mode", "log-level"}

var remoteSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save remote store settings",
	Example: `  storefront remote set --url https://docs.example.com --key sk_...
  storefront remote set --policy rollback
  storefront remote set --url ""   # go local-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if !slices.ContainsFunc(remoteSetFlags, func(name string) bool { return changed(f, name) }) {
			return fmt.Errorf("nothing to set, see --help")
		}
		dir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		err = config.Update(dir, func(cfg *config.Config) error {
			if changed(f, "url") {
				cfg.RemoteURL, _ = f.GetString("url")
			}
			if changed(f, "key") {
				cfg.APIKey, _ = f.GetString("key")
			}
			if changed(f, "timeout") {
				d, _ := f.GetDuration("timeout")
				cfg.Timeout = d.String()
			}
			if changed(f, "policy") {
				name, _ := f.GetString("policy")
				if _, err := storefront.PolicyByName(name); err != nil {
					return err
				}
				cfg.WritePolicy = name
			}
			if changed(f, "credential-mode") {
				mode, _ := f.GetString("credential-mode")
				if _, err := gate.NewVerifier(mode); err != nil {
					return err
				}
				cfg.CredentialMode = mode
			}
			if changed(f, "log-level") {
				cfg.LogLevel = logLevel
			}
			return nil
		})
		if err != nil {
			return err
		}
		output.Success("Saved %s", dir)
		return nil
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective client settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		shown := *cfg
		shown.APIKey = maskKey(cfg.APIKey)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(shown)
		}
		url := shown.RemoteURL
		if url == "" {
			url = "(none, local-only)"
		}
		fmt.Printf("Config dir:      %s\n", dir)
		fmt.Printf("Remote URL:      %s\n", url)
		fmt.Printf("API key:         %s\n", shown.APIKey)
		fmt.Printf("Timeout:         %s\n", cfg.RequestTimeout())
		fmt.Printf("Write policy:    %s\n", orDefault(cfg.WritePolicy, storefront.PolicyOptimistic))
		fmt.Printf("Credential mode: %s\n", orDefault(cfg.CredentialMode, gate.ModePlain))
		fmt.Printf("Log level:       %s\n", cfg.Level())
		return nil
	},
}

// maskKey keeps the first characters of an API key for recognition.
func maskKey(k string) string {
	if k == "" {
		return ""
	}
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}
	return k[:6] + strings.Repeat("*", len(k)-6)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	remoteSetCmd.Flags().String("url", "", "Document service base URL (empty for local-only)")
	remoteSetCmd.Flags().String("key", "", "API key")
	remoteSetCmd.Flags().Duration("timeout", config.DefaultTimeout, "Per-request timeout")
	remoteSetCmd.Flags().String("policy", "", "Write policy: optimistic or rollback")
	remoteSetCmd.Flags().String("credential-mode", "", "Admin credential mode: plain or bcrypt")
	remoteShowCmd.Flags().Bool("json", false, "JSON output")

	remoteCmd.AddCommand(remoteSetCmd, remoteShowCmd)
	rootCmd.AddCommand(remoteCmd)
}
