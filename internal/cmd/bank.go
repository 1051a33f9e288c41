package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/talentmap/internal/display"
	"github.com/harrison/talentmap/internal/parser"
	"github.com/harrison/talentmap/internal/submission"
)

func newBankCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Inspect question banks",
	}
	cmd.AddCommand(newBankValidateCommand())
	return cmd
}

func newBankValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Parse a YAML or Markdown question bank and report its shape",
		Long: `Parse and validate a question bank, checking for:
  - All three instruments present exactly once
  - Valid scales and non-empty categories
  - Unique category keys within each instrument
  - Every category the submission payload is built from

Without a file the built-in bank is validated.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return validateBank(path, cmd.OutOrStdout())
		},
	}
}

// validateBank loads the bank at path (built-in when empty) and prints a
// per-instrument summary.
func validateBank(path string, output io.Writer) error {
	out := display.NewPrinter(output)
	name := path
	if name == "" {
		name = "built-in bank"
	}

	bank, err := parser.Load(path)
	if err != nil {
		out.Failure("Validation failed: %v", err)
		return err
	}
	if err := submission.CheckBank(bank); err != nil {
		out.Failure("Validation failed: %v", err)
		return err
	}

	for i := range bank.Instruments {
		inst := &bank.Instruments[i]
		reverse := 0
		for j := range inst.Categories {
			reverse += len(inst.Categories[j].Reverse)
		}
		out.Info("  %-8s %-32s scale %d-%d, %d categories, %d questions (%d reverse)",
			inst.ID, inst.Name, inst.Scale.Min, inst.Scale.Max,
			len(inst.Categories), inst.QuestionCount(), reverse)
	}
	out.Success("%s is valid: %d questions", name, bank.QuestionCount())
	return nil
}
