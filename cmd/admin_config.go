package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/imaging"
	"github.com/marcus/storefront/internal/models"
	"github.com/marcus/storefront/internal/output"
)

// configKeys lists the business profile fields settable with "config set".
// Dotted keys address nested objects.
var configKeys = []string{
	"name",
	"slogan",
	"description",
	"aboutUs",
	"phone",
	"email",
	"address",
	"schedule.weekdays",
	"schedule.weekends",
	"socialMedia.instagram",
	"socialMedia.facebook",
	"socialMedia.whatsapp",
	"header.bgColor",
	"header.textColor",
	"header.style",
}

// configField builds the partial config that sets one dotted key.
func configField(key, value string) (models.ConfigFields, error) {
	if !slices.Contains(configKeys, key) {
		return nil, fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(configKeys, ", "))
	}
	parent, child, nested := strings.Cut(key, ".")
	if !nested {
		return models.ConfigFields{key: value}, nil
	}
	return models.ConfigFields{parent: map[string]any{child: value}}, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the business profile",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the business profile",
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		cfg := sess.store.Config()
		cfg.AdminPassword = ""
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(cfg)
		}
		fmt.Print(formatInfo(cfg))
		fmt.Print(output.SectionHeader("Header"))
		fmt.Printf("  style %s, background %s, text %s\n", cfg.Header.Style, cfg.Header.BgColor, cfg.Header.TextColor)
		fmt.Print(output.SectionHeader("Images"))
		for _, img := range []struct{ name, url string }{
			{"logo", cfg.LogoURL}, {"hero", cfg.HeroImage}, {"about", cfg.AboutUsImage},
		} {
			if img.url == "" {
				fmt.Printf("  %-5s (none)\n", img.name)
				continue
			}
			fmt.Printf("  %-5s %d bytes encoded\n", img.name, len(img.url))
		}
		return nil
	}),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a business profile field",
	Long:  "Set a business profile field. Valid keys: " + strings.Join(configKeys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		fields, err := configField(args[0], args[1])
		if err != nil {
			return err
		}
		if err := sess.store.UpdateConfig(cmd.Context(), fields); err != nil {
			return err
		}
		output.Success("Set %s", args[0])
		warnOffline(sess)
		return nil
	}),
}

var headerStyle headerStyleValue

var configHeaderCmd = &cobra.Command{
	Use:   "header",
	Short: "Set the public header look",
	Example: `  storefront admin config header --style glass --bg "#1f2937" --text "#ffffff"`,
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		f := cmd.Flags()
		h := map[string]any{}
		if changed(f, "style") {
			h["style"] = string(headerStyle.style)
		}
		if changed(f, "bg") {
			h["bgColor"], _ = f.GetString("bg")
		}
		if changed(f, "text") {
			h["textColor"], _ = f.GetString("text")
		}
		if len(h) == 0 {
			return errors.New("set at least one of --style, --bg, --text")
		}
		if err := sess.store.UpdateConfig(cmd.Context(), models.ConfigFields{"header": h}); err != nil {
			return err
		}
		output.Success("Header updated")
		warnOffline(sess)
		return nil
	}),
}

var configPasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the admin password",
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		next, _ := cmd.Flags().GetString("new")
		if next == "" {
			if !isInteractive() {
				return errors.New("--new is required when not running in a terminal")
			}
			var err error
			if next, err = promptNewPassword(); err != nil {
				return err
			}
		}
		sealed, err := sess.gate.Seal(next)
		if err != nil {
			return err
		}
		if err := sess.store.UpdateConfig(cmd.Context(), models.ConfigFields{"adminPassword": sealed}); err != nil {
			return err
		}
		output.Success("Admin password changed")
		warnOffline(sess)
		return nil
	}),
}

func promptNewPassword() (string, error) {
	var first, second string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&first).
			Validate(required("password")),
		huh.NewInput().Title("Repeat password").EchoMode(huh.EchoModePassword).Value(&second).
			Validate(func(s string) error {
				if s != first {
					return errors.New("passwords do not match")
				}
				return nil
			}),
	)).Run()
	return first, err
}

// imageTargets maps "config image" targets to their field and preset.
var imageTargets = map[string]struct {
	field  string
	preset imaging.Options
}{
	"logo":  {"logoUrl", imaging.Logo},
	"hero":  {"heroImage", imaging.Hero},
	"about": {"aboutUsImage", imaging.Hero},
}

var configImageCmd = &cobra.Command{
	Use:       "image <logo|hero|about> <file>",
	Short:     "Set the logo, hero or about-us image",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"logo", "hero", "about"},
	RunE: adminRun(func(cmd *cobra.Command, args []string, sess *session) error {
		target, ok := imageTargets[args[0]]
		if !ok {
			return fmt.Errorf("unknown image %q (use logo, hero or about)", args[0])
		}
		img, err := readImage(args[1], target.preset)
		if err != nil {
			return err
		}
		if err := sess.store.UpdateConfig(cmd.Context(), models.ConfigFields{target.field: img}); err != nil {
			return err
		}
		output.Success("Updated %s image (%d bytes encoded)", args[0], len(img))
		warnOffline(sess)
		return nil
	}),
}

func init() {
	configShowCmd.Flags().Bool("json", false, "JSON output")
	configHeaderCmd.Flags().Var(&headerStyle, "style", "Header style: solid, gradient, glass")
	configHeaderCmd.Flags().String("bg", "", "Background color")
	configHeaderCmd.Flags().String("text", "", "Text color")
	configPasswordCmd.Flags().String("new", "", "New password (prompted when omitted)")

	configCmd.AddCommand(configShowCmd, configSetCmd, configHeaderCmd, configPasswordCmd, configImageCmd)
	adminCmd.AddCommand(configCmd)
}
