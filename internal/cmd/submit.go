package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/talentmap/internal/display"
	"github.com/harrison/talentmap/internal/poller"
	"github.com/harrison/talentmap/internal/submission"
)

func newSubmitCommand(g *globalFlags) *cobra.Command {
	var wait, dryRun bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the completed assessment",
		Long: `Score the completed assessment, decompose the six VIA virtues into
24 character strengths, validate the payload and send it to the backend.

Local answers are cleared only after the backend accepts the submission.

Examples:
  talentmap submit --dry-run   # print the payload without sending
  talentmap submit --wait      # submit and wait for the analysis result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun {
				payload, err := a.session.Payload()
				if err != nil {
					return explainSubmitError(cmd, err)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			}

			resp, err := a.session.Submit(cmd.Context(), a.client)
			if err != nil {
				return explainSubmitError(cmd, err)
			}
			a.out.Success("submitted, job %s (%s)", resp.JobID, resp.Status)

			if !wait {
				a.out.Info("Run 'talentmap result %s' to fetch the analysis.", resp.JobID)
				return nil
			}
			return pollResult(cmd, a, resp.JobID)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the analysis result after submitting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the payload without submitting")
	return cmd
}

// explainSubmitError turns validation failures into an actionable warning.
func explainSubmitError(cmd *cobra.Command, err error) error {
	var cfgErr *submission.ConfigurationError
	if errors.As(err, &cfgErr) {
		display.Warning{
			Title:      "Assessment incomplete",
			Message:    "Every instrument must be fully answered before submitting.",
			Items:      cfgErr.Missing,
			Suggestion: "Run 'talentmap take <instrument>' to finish, or 'talentmap status' to see progress",
		}.Display(cmd.ErrOrStderr())
		return err
	}

	var valErr *submission.ValidationError
	if errors.As(err, &valErr) {
		items := make([]string, len(valErr.Errors))
		for i, fe := range valErr.Errors {
			items[i] = fmt.Sprintf("%s: %s", fe.Path, fe.Message)
		}
		display.Warning{
			Title: "Submission payload is invalid",
			Items: items,
		}.Display(cmd.ErrOrStderr())
	}
	return err
}

func newResultCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "result <job-id>",
		Short: "Wait for and show an assessment result",
		Long: `Poll the backend for a submitted assessment's result. The result store is
eventually consistent, so "not found" is retried with exponential backoff
(see the poll section of the config) before giving up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{skipRestore: true})
			if err != nil {
				return err
			}
			defer a.Close()

			return pollResult(cmd, a, args[0])
		},
	}
}

// pollResult polls until the result is ready, the attempts are exhausted or
// the user interrupts.
func pollResult(cmd *cobra.Command, a *app, id string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.newPoller().Run(ctx, id)
	if err != nil {
		if poller.IsExhausted(err) {
			a.out.Info("The result is not available yet. Try again later with 'talentmap result %s'.", id)
		}
		return err
	}
	a.out.Result(res)
	return nil
}
