package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/talentmap/internal/config"
	"github.com/harrison/talentmap/internal/display"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/parser"
	"github.com/harrison/talentmap/internal/persist"
	"github.com/harrison/talentmap/internal/session"
	"github.com/harrison/talentmap/internal/submission"
)

// runCLI executes the root command against an isolated home directory.
func runCLI(t *testing.T, home, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.HomeEnv, home)

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	stdout, _, err := runCLI(t, t.TempDir(), "", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "talentmap")
	assert.Contains(t, stdout, "RIASEC")

	names := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"take", "status", "scores", "autofill", "submit", "result", "migrate", "reset", "bank"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := runCLI(t, t.TempDir(), "", "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, Version)
}

func TestBankValidate(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		stdout, _, err := runCLI(t, t.TempDir(), "", "bank", "validate")
		require.NoError(t, err)
		assert.Contains(t, stdout, "built-in bank is valid")
		assert.Contains(t, stdout, "riasec")
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bank.yaml")
		require.NoError(t, os.WriteFile(path, []byte("instruments: []\n"), 0o644))

		var out bytes.Buffer
		err := validateBank(path, &out)
		require.Error(t, err)
		assert.Contains(t, out.String(), "Validation failed")
	})

	t.Run("not submittable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bank.yaml")
		yml := `instruments:
  - id: via
    name: VIA
    scale: {min: 1, max: 5}
    categories:
      - key: wisdom
        questions: [a]
  - id: riasec
    name: RIASEC
    scale: {min: 1, max: 5}
    categories:
      - key: realistic
        questions: [a]
  - id: ocean
    name: Big Five
    scale: {min: 1, max: 5}
    categories:
      - key: openness
        questions: [a]
`
		require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

		var out bytes.Buffer
		err := validateBank(path, &out)
		require.ErrorIs(t, err, submission.ErrValidation)
		assert.Contains(t, out.String(), "Validation failed")
		assert.Contains(t, out.String(), "via.courage")
		assert.NotContains(t, out.String(), "is valid")
	})

	t.Run("missing file", func(t *testing.T) {
		var out bytes.Buffer
		err := validateBank(filepath.Join(t.TempDir(), "nope.yaml"), &out)
		assert.Error(t, err)
	})
}

func TestAutofillStatusScores(t *testing.T) {
	home := t.TempDir()

	_, _, err := runCLI(t, home, "", "autofill", "via", "riasec")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, home, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Assessment progress")
	assert.NotContains(t, stdout, "ready to submit")

	_, _, err = runCLI(t, home, "", "autofill")
	require.NoError(t, err)

	stdout, _, err = runCLI(t, home, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ready to submit")

	stdout, _, err = runCLI(t, home, "", "scores", "--json")
	require.NoError(t, err)
	var scores map[models.InstrumentID]models.CategoryScores
	require.NoError(t, json.Unmarshal([]byte(stdout), &scores))
	assert.Len(t, scores, 3)
	assert.Len(t, scores[models.InstrumentVIA], 6)
	for _, cs := range scores {
		for cat, v := range cs {
			assert.True(t, v >= 0 && v <= 100, "%s=%d", cat, v)
		}
	}
}

func TestAutofill_UnknownInstrument(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "", "autofill", "mbti")
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnknownInstrument)
}

func TestStateIsEncryptedAtRest(t *testing.T) {
	home := t.TempDir()
	_, _, err := runCLI(t, home, "", "autofill", "ocean")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "state", "assessment.answers.dat"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), persist.Prefix))
	assert.NotContains(t, string(data), "ocean:")

	_, err = os.Stat(filepath.Join(home, "key"))
	assert.NoError(t, err, "key file created on first use")
}

func TestSubmit_DryRun(t *testing.T) {
	home := t.TempDir()

	_, stderr, err := runCLI(t, home, "", "submit", "--dry-run")
	require.Error(t, err)
	assert.True(t, submission.IsValidation(err))
	assert.Contains(t, stderr, "Assessment incomplete")
	assert.Contains(t, stderr, "ocean")

	_, _, err = runCLI(t, home, "", "autofill")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, home, "", "submit", "--dry-run")
	require.NoError(t, err)
	var payload submission.Payload
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, submission.AssessmentName, payload.AssessmentName)
	assert.True(t, submission.Validate(payload).IsValid)
}

func newBackend(t *testing.T, submits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/assessment/submit":
			submits.Add(1)
			var p submission.Payload
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"jobId":"job-9","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/assessment/results/job-9":
			_, _ = w.Write([]byte(`{"id":"job-9","status":"completed","assessmentName":"AI-Driven Talent Mapping","scores":{},"profile":{"archetype":"Explorer"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"no such result"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmit_WaitForResult(t *testing.T) {
	home := t.TempDir()
	var submits atomic.Int32
	srv := newBackend(t, &submits)

	_, _, err := runCLI(t, home, "", "autofill")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, home, "", "--backend-url", srv.URL, "submit", "--wait")
	require.NoError(t, err)
	assert.Equal(t, int32(1), submits.Load())
	assert.Contains(t, stdout, "submitted, job job-9")
	assert.Contains(t, stdout, "Result job-9 (completed)")
	assert.Contains(t, stdout, "Explorer")

	stdout, _, err = runCLI(t, home, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(0/", "answers cleared after accepted submission")
}

func TestSubmit_BackendDownKeepsAnswers(t *testing.T) {
	home := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := runCLI(t, home, "", "autofill")
	require.NoError(t, err)

	_, _, err = runCLI(t, home, "", "--backend-url", srv.URL, "submit")
	require.Error(t, err)

	stdout, _, err := runCLI(t, home, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ready to submit")
}

func TestResult_Exhausted(t *testing.T) {
	home := t.TempDir()
	var submits atomic.Int32
	srv := newBackend(t, &submits)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`poll:
  max_attempts: 2
  base_delay: 1ms
  max_delay: 2ms
`), 0o644))

	stdout, _, err := runCLI(t, home, "", "--config", cfgPath, "--backend-url", srv.URL, "result", "job-unknown")
	require.Error(t, err)
	assert.Contains(t, stdout, "attempt 2/2")
	assert.Contains(t, stdout, "not available yet")
}

func TestReset(t *testing.T) {
	home := t.TempDir()
	_, _, err := runCLI(t, home, "", "autofill", "via")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, home, "n\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Operation cancelled")

	stdout, _, err = runCLI(t, home, "", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session cleared")

	_, err = os.Stat(filepath.Join(home, "state", "assessment.answers.dat"))
	assert.True(t, os.IsNotExist(err))
}

func TestMigrate(t *testing.T) {
	home := t.TempDir()
	stateDir := filepath.Join(home, "state")
	require.NoError(t, os.MkdirAll(stateDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "assessment.answers.dat"),
		[]byte(`{"answers":{"via:wisdom:0":3}}`), 0o600))

	stdout, _, err := runCLI(t, home, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "encrypted assessment.answers")

	data, err := os.ReadFile(filepath.Join(stateDir, "assessment.answers.dat"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), persist.Prefix))

	stdout, _, err = runCLI(t, home, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing to migrate")
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "", "--storage", "s3", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRunTake(t *testing.T) {
	bank := parser.Default()
	s := session.New(bank)
	var out bytes.Buffer

	input := strings.Join([]string{
		"1 4",
		"2 9",
		"f 1",
		"x",
		"p",
		"n",
		"N",
		"1 2",
		"?",
		"q",
	}, "\n")
	require.NoError(t, runTake(context.Background(), s, strings.NewReader(input), display.NewPlainPrinter(&out)))

	first := models.QuestionKey{Instrument: models.InstrumentVIA, Category: "wisdom", Index: 0}
	v, ok := s.Answer(first)
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.True(t, s.IsFlagged(first))

	_, ok = s.Answer(models.QuestionKey{Instrument: models.InstrumentVIA, Category: "wisdom", Index: 1})
	assert.False(t, ok, "out-of-scale answer rejected")

	riasec := bank.Instrument(models.InstrumentRIASEC)
	v, ok = s.Answer(models.CategoryKeys(riasec.ID, &riasec.Categories[0])[0])
	require.True(t, ok)
	assert.Equal(t, 2, v)

	text := out.String()
	assert.Contains(t, text, "outside scale 1-5")
	assert.Contains(t, text, `unrecognized input "x"`)
	assert.Contains(t, text, "already on the first page")
	assert.Contains(t, text, "Commands:")
	assert.Contains(t, text, "progress saved")
}

func TestRunTake_EndOfInput(t *testing.T) {
	s := session.New(parser.Default())
	var out bytes.Buffer
	require.NoError(t, runTake(context.Background(), s, strings.NewReader("1 3\n"), display.NewPlainPrinter(&out)))
	assert.Equal(t, 1, s.OverallProgress().Answered)
}

func TestPageKey(t *testing.T) {
	s := session.New(parser.Default())
	n := len(s.CurrentKeys())

	key, err := pageKey(s, "1")
	require.NoError(t, err)
	assert.Equal(t, s.CurrentKeys()[0], key)

	for _, arg := range []string{"0", "-1", "abc", "999"} {
		_, err := pageKey(s, arg)
		assert.Error(t, err, arg)
	}
	key, err = pageKey(s, strconv.Itoa(n))
	require.NoError(t, err)
	assert.Equal(t, s.CurrentKeys()[n-1], key)
}
