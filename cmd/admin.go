package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/marcus/storefront/internal/imaging"
	"github.com/marcus/storefront/internal/output"
)

// EnvAdminPassword supplies the admin credential without a prompt.
const EnvAdminPassword = "STOREFRONT_ADMIN_PASSWORD"

var errUnauthorized = errors.New("invalid admin password")

var adminCmd = &cobra.Command{
	Use:     "admin",
	Short:   "Manage menu, reservations, categories and business profile",
	GroupID: "admin",
	Long: `Admin commands require the admin password. It is read from --password,
then STOREFRONT_ADMIN_PASSWORD, and otherwise prompted for.`,
}

// adminRun opens a session, passes it through the access gate and runs fn.
// Pending remote writes are flushed before returning.
func adminRun(fn func(cmd *cobra.Command, args []string, sess *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.close()

		password, err := adminPassword(cmd)
		if err != nil {
			return err
		}
		if !sess.gate.Authenticate(password) {
			return errUnauthorized
		}
		return fn(cmd, args, sess)
	}
}

func adminPassword(cmd *cobra.Command) (string, error) {
	if changed(cmd.Flags(), "password") {
		return cmd.Flags().GetString("password")
	}
	if p := os.Getenv(EnvAdminPassword); p != "" {
		return p, nil
	}
	if !isInteractive() {
		return "", fmt.Errorf("admin password required: use --password or %s", EnvAdminPassword)
	}
	var p string
	err := huh.NewInput().
		Title("Admin password").
		EchoMode(huh.EchoModePassword).
		Value(&p).
		Run()
	return p, err
}

// confirm asks before a destructive action. Non-interactive sessions and
// --yes skip the question.
func confirm(cmd *cobra.Command, title string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes || !isInteractive() {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok).Run()
	return ok, err
}

// readImage loads an upload from disk and turns it into a data URL with the
// given preset. Files that cannot be compressed are stored as-is.
func readImage(path string, opts imaging.Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if err := imaging.ValidateUpload(data); err != nil {
		return "", err
	}
	url, compressed := imaging.CompressOrOriginal(data, opts)
	if !compressed && !opts.Skip {
		output.Warning("could not compress %s, storing the original", path)
	}
	return url, nil
}

// warnOffline tells the admin that a change stays in this session only.
func warnOffline(sess *session) {
	if !sess.store.Connected() {
		output.Warning("remote store unavailable, this change was not saved remotely")
	}
}

func init() {
	adminCmd.PersistentFlags().String("password", "", "Admin password")
	rootCmd.AddCommand(adminCmd)
}
