package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harrison/talentmap/internal/backend"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/poller"
	"github.com/harrison/talentmap/internal/session"
	"github.com/harrison/talentmap/internal/submission"
)

func testBank() *models.Bank {
	return &models.Bank{Instruments: []models.Instrument{
		{
			ID:    models.InstrumentVIA,
			Name:  "VIA Character Strengths",
			Scale: models.Scale{Min: 1, Max: 5},
			Categories: []models.Category{
				{Key: "wisdom", Name: "Wisdom", Questions: []string{"I am curious."}, Reverse: []string{"I avoid new ideas."}},
				{Key: "courage", Name: "Courage", Questions: []string{"I finish what I start."}},
			},
		},
		{
			ID:    models.InstrumentRIASEC,
			Name:  "RIASEC",
			Scale: models.Scale{Min: 1, Max: 5},
			Categories: []models.Category{
				{Key: "realistic", Name: "Realistic", Questions: []string{"I like tools."}},
			},
		},
	}}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name  string
		p     models.Progress
		width int
		want  string
	}{
		{"empty", models.NewProgress(0, 4), 4, "[----]   0% (0/4)"},
		{"half", models.NewProgress(2, 4), 4, "[##--]  50% (2/4)"},
		{"full", models.NewProgress(4, 4), 4, "[####] 100% (4/4)"},
		{"no total", models.Progress{}, 4, "[----]   0% (0/0)"},
		{"default width", models.NewProgress(1, 1), 0, "[" + strings.Repeat("#", barWidth) + "] 100% (1/1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressBar(tt.p, tt.width); got != tt.want {
				t.Errorf("ProgressBar() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoreBar(t *testing.T) {
	if got := ScoreBar(50, 4); got != "██░░  50" {
		t.Errorf("ScoreBar(50) = %q", got)
	}
	if got := ScoreBar(150, 2); got != "██ 100" {
		t.Errorf("ScoreBar(150) = %q, want clamped", got)
	}
	if got := ScoreBar(-3, 2); got != "░░   0" {
		t.Errorf("ScoreBar(-3) = %q, want clamped", got)
	}
}

func TestColorEnabled_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if ColorEnabled(&buf) {
		t.Error("ColorEnabled(buffer) = true, want false")
	}
}

func TestPage(t *testing.T) {
	s := session.New(testBank())
	wisdom := models.QuestionKey{Instrument: models.InstrumentVIA, Category: "wisdom"}
	if err := s.SetAnswer(context.Background(), wisdom, 4); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}
	if _, err := s.ToggleFlag(context.Background(), models.QuestionKey{Instrument: models.InstrumentVIA, Category: "wisdom", Reverse: true}); err != nil {
		t.Fatalf("ToggleFlag() error = %v", err)
	}

	var buf bytes.Buffer
	NewPlainPrinter(&buf).Page(s)
	out := buf.String()

	for _, want := range []string{
		"VIA Character Strengths  ›  Wisdom  (page 1/2)",
		"   1. [4] I am curious.\n",
		"   2. [ ] I avoid new ideas. ⚑\n",
		"Answer 1-5.",
		"(1/3)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Page() output missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain printer emitted ANSI codes")
	}
}

func TestStatus(t *testing.T) {
	s := session.New(testBank())
	if err := s.AutoFill(context.Background(), models.InstrumentRIASEC); err != nil {
		t.Fatalf("AutoFill() error = %v", err)
	}
	key := models.QuestionKey{Instrument: models.InstrumentVIA, Category: "courage"}
	if _, err := s.ToggleFlag(context.Background(), key); err != nil {
		t.Fatalf("ToggleFlag() error = %v", err)
	}

	var buf bytes.Buffer
	NewPlainPrinter(&buf).Status(s)
	out := buf.String()

	for _, want := range []string{
		"Assessment progress",
		"VIA Character Strengths",
		"(0/3)",
		"✓ RIASEC",
		"(1/1)",
		"Overall",
		"(1/4)",
		"⚑ 1 flagged for review",
		"via:courage:0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Status() output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestScores(t *testing.T) {
	bank := testBank()
	scores := map[models.InstrumentID]models.CategoryScores{
		models.InstrumentVIA: {"wisdom": 75, "courage": 0},
	}

	var buf bytes.Buffer
	NewPlainPrinter(&buf).Scores(scores, bank)
	out := buf.String()

	if !strings.Contains(out, "VIA Character Strengths\n") {
		t.Errorf("Scores() missing instrument header:\n%s", out)
	}
	if !strings.Contains(out, "Wisdom  ") || !strings.Contains(out, " 75\n") {
		t.Errorf("Scores() missing wisdom score:\n%s", out)
	}
	if strings.Contains(out, "RIASEC") {
		t.Errorf("Scores() rendered an instrument without scores:\n%s", out)
	}
}

func TestResult(t *testing.T) {
	payload := submission.Payload{AssessmentName: submission.AssessmentName}
	payload.RIASEC.Realistic = 80
	r := &backend.Result{
		ID:             "job-42",
		Status:         "completed",
		AssessmentName: submission.AssessmentName,
		Scores:         payload,
		Profile:        json.RawMessage(`{"archetype":"Builder"}`),
		CreatedAt:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	NewPlainPrinter(&buf).Result(r)
	out := buf.String()

	for _, want := range []string{
		"Result job-42 (completed)",
		"Assessment: AI-Driven Talent Mapping",
		"Created:    2026-03-01T09:30:00Z",
		"Scores",
		"riasec.realistic",
		"\"archetype\": \"Builder\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Result() output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestPollObserver(t *testing.T) {
	var buf bytes.Buffer
	observe := NewPlainPrinter(&buf).PollObserver()

	observe(poller.PollState{Phase: poller.Fetching, ID: "j", Attempt: 0, MaxAttempts: 6})
	observe(poller.PollState{Phase: poller.Backoff, ID: "j", Delay: 2 * time.Second})
	observe(poller.PollState{Phase: poller.Failed, ID: "j", LastError: errors.New("boom")})
	observe(poller.PollState{Phase: poller.Succeeded, ID: "j"})
	observe(poller.PollState{Phase: poller.Cancelled, ID: "j"})
	observe(poller.PollState{Phase: poller.Idle, ID: "j"})

	want := "… fetching result j (attempt 1/6)\n" +
		"  not ready yet, retrying in 2s\n" +
		"✗ polling j failed: boom\n" +
		"✓ result j is ready\n" +
		"! polling j cancelled\n"
	if got := buf.String(); got != want {
		t.Errorf("PollObserver output =\n%q\nwant\n%q", got, want)
	}
}

func TestWarningDisplay(t *testing.T) {
	var buf bytes.Buffer
	Warning{
		Title:      "Assessment incomplete",
		Message:    "Some instruments still have unanswered questions.",
		Items:      []string{"riasec", "ocean"},
		Suggestion: "Run 'talentmap take' to finish",
	}.Display(&buf)

	want := "⚠️  Warning: Assessment incomplete\n" +
		"    Some instruments still have unanswered questions.\n" +
		"      1. riasec\n" +
		"      2. ocean\n" +
		"    Suggestion: Run 'talentmap take' to finish\n"
	if got := buf.String(); got != want {
		t.Errorf("Display() =\n%q\nwant\n%q", got, want)
	}
}

func TestWarningDisplay_TitleOnly(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "Nothing to migrate"}.Display(&buf)
	if got := buf.String(); got != "⚠️  Warning: Nothing to migrate\n" {
		t.Errorf("Display() = %q", got)
	}
}
