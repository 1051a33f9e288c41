package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/talentmap/internal/display"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/session"
)

const takeHelp = `Commands:
  <n> <value>   answer question n on this page
  f <n>         flag or unflag question n for review
  n / p         next / previous page
  N / P         next / previous instrument
  s             show overall progress
  ?             show this help
  q             save and quit`

func newTakeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "take [instrument]",
		Short: "Answer questions page by page",
		Long: `Answer the assessment interactively, one category page at a time.

Answers are saved after every change, so you can quit and resume later.

` + takeHelp + `

Examples:
  talentmap take
  talentmap take ocean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				ids, err := parseInstruments(a.bank, args)
				if err != nil {
					return err
				}
				a.session.NavigateToInstrument(ids[0])
			}
			return runTake(cmd.Context(), a.session, cmd.InOrStdin(), a.out)
		},
	}
}

// runTake drives the interactive loop until q or end of input.
func runTake(ctx context.Context, s *session.Session, in io.Reader, out *display.Printer) error {
	scanner := bufio.NewScanner(in)
	w := out.Writer()

	out.Page(s)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" {
			out.Success("progress saved (%d%% overall)", s.OverallProgress().Percentage)
			return nil
		}

		redraw, err := takeStep(ctx, s, line, out)
		if err != nil {
			out.Failure("%v", err)
			continue
		}
		if redraw {
			out.Page(s)
		}
	}
}

// takeStep applies one input line and reports whether the page should be
// redrawn.
func takeStep(ctx context.Context, s *session.Session, line string, out *display.Printer) (bool, error) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "?", "h", "help":
		out.Info("%s", takeHelp)
		return false, nil
	case "s":
		out.Status(s)
		return false, nil
	case "n":
		return moved(s.NextCategory(), "already on the last page of this instrument")
	case "p":
		return moved(s.PreviousCategory(), "already on the first page of this instrument")
	case "N":
		return moved(s.NextInstrument(), "already on the last instrument")
	case "P":
		return moved(s.PreviousInstrument(), "already on the first instrument")
	case "f":
		if len(fields) != 2 {
			return false, errors.New("usage: f <question>")
		}
		key, err := pageKey(s, fields[1])
		if err != nil {
			return false, err
		}
		if _, err := s.ToggleFlag(ctx, key); err != nil {
			return false, err
		}
		return true, nil
	}

	if len(fields) != 2 {
		return false, fmt.Errorf("unrecognized input %q (type ? for help)", line)
	}
	key, err := pageKey(s, fields[0])
	if err != nil {
		return false, err
	}
	value, err := strconv.Atoi(fields[1])
	if err != nil {
		return false, fmt.Errorf("answer must be a number, got %q", fields[1])
	}
	if err := s.SetAnswer(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

func moved(ok bool, boundary string) (bool, error) {
	if !ok {
		return false, errors.New(boundary)
	}
	return true, nil
}

// pageKey maps a 1-based question number on the active page to its key.
func pageKey(s *session.Session, arg string) (models.QuestionKey, error) {
	keys := s.CurrentKeys()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(keys) {
		return models.QuestionKey{}, fmt.Errorf("question must be 1-%d, got %q", len(keys), arg)
	}
	return keys[n-1], nil
}
