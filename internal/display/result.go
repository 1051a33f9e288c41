package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/harrison/talentmap/internal/backend"
	"github.com/harrison/talentmap/internal/poller"
)

// Result renders a materialized assessment result.
func (p *Printer) Result(r *backend.Result) {
	fmt.Fprintf(p.w, "%s %s %s\n", p.bold.Sprint("Result"), r.ID, p.faint.Sprintf("(%s)", r.Status))
	if r.AssessmentName != "" {
		fmt.Fprintf(p.w, "  Assessment: %s\n", r.AssessmentName)
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(p.w, "  Created:    %s\n", r.CreatedAt.Format(time.RFC3339))
	}

	fields := r.Scores.Fields()
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		slices.Sort(names)

		fmt.Fprintln(p.w, p.bold.Sprint("Scores"))
		for _, name := range names {
			fmt.Fprintf(p.w, "  %-36s %s\n", name, p.cyan.Sprint(ScoreBar(fields[name], barWidth)))
		}
	}

	if len(r.Profile) > 0 {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, r.Profile, "  ", "  "); err == nil {
			fmt.Fprintf(p.w, "%s\n  %s\n", p.bold.Sprint("Profile"), pretty.String())
		}
	}
}

// PollObserver reports poll transitions as they happen.
func (p *Printer) PollObserver() poller.Observer {
	return func(st poller.PollState) {
		switch st.Phase {
		case poller.Fetching:
			fmt.Fprintf(p.w, "%s fetching result %s (attempt %d/%d)\n",
				p.cyan.Sprint("…"), st.ID, st.Attempt+1, st.MaxAttempts)
		case poller.Backoff:
			fmt.Fprintf(p.w, "  not ready yet, retrying in %s\n", st.Delay)
		case poller.Succeeded:
			p.Success("result %s is ready", st.ID)
		case poller.Failed:
			p.Failure("polling %s failed: %v", st.ID, st.LastError)
		case poller.Cancelled:
			fmt.Fprintf(p.w, "%s polling %s cancelled\n", p.yellow.Sprint("!"), st.ID)
		}
	}
}
