package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progress per instrument",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			a.out.Status(a.session)
			if a.session.IsAllComplete() {
				a.out.Success("all instruments complete, ready to submit")
			}
			return nil
		},
	}
}

func newScoresCommand(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show category scores (0-100) from the current answers",
		Long: `Show each category's 0-100 score computed from the current answers.
Unanswered categories score 0; partially answered categories are scored
from the questions answered so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			scores := a.session.Scores()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(scores); err != nil {
					return fmt.Errorf("encode scores: %w", err)
				}
				return nil
			}
			a.out.Scores(scores, a.bank)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print scores as JSON")
	return cmd
}

func newAutofillCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "autofill [instrument...]",
		Short: "Fill instruments with random answers (demo aid)",
		Long: `Answer every question of the given instruments (all when none are
given) with random in-scale values. Intended for demos and testing the
submission flow; existing answers are overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			ids, err := parseInstruments(a.bank, args)
			if err != nil {
				return err
			}
			if err := a.session.AutoFill(cmd.Context(), ids...); err != nil {
				return err
			}
			a.out.Status(a.session)
			return nil
		},
	}
}
