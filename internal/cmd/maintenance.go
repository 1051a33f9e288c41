package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/talentmap/internal/session"
)

func newMigrateCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Encrypt saved state written before encryption was enabled",
		Long: `Rewrite any plaintext session entries in encrypted form. Entries that are
already encrypted, missing or unreadable are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{skipRestore: true})
			if err != nil {
				return err
			}
			defer a.Close()

			migrated := 0
			for _, key := range []string{session.KeyAnswers, session.KeyFlags} {
				ok, err := a.store.Migrate(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("migrate %s: %w", key, err)
				}
				if ok {
					migrated++
					a.out.Success("encrypted %s", key)
				}
			}

			if migrated == 0 {
				a.out.Info("Nothing to migrate.")
			}
			return nil
		},
	}
}

func newResetCommand(g *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all answers and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			output := cmd.OutOrStdout()
			answered := a.session.OverallProgress().Answered
			if !yes {
				fmt.Fprintf(output, "This will delete %d saved answers and %d flags.\n", answered, a.session.FlagCount())
				if !confirmAction(cmd.InOrStdin(), output) {
					fmt.Fprintf(output, "Operation cancelled.\n")
					return nil
				}
			}

			if err := a.session.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			a.out.Success("session cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirmAction prompts the user for confirmation
func confirmAction(in io.Reader, output io.Writer) bool {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
