// Package session holds the respondent's in-progress assessment: answers,
// review flags, the page cursor and the derived scores.
//
// Every mutation recomputes all scores and writes a full snapshot to the
// persistence store. Scoring is O(total questions), which is cheap for a
// bank of a few hundred items; revisit if the bank grows by orders of
// magnitude. Persistence is best effort: a failed save is logged and never
// undoes the in-memory change.
//
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/harrison/talentmap/internal/logger"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/persist"
	"github.com/harrison/talentmap/internal/scoring"
)

// Keys under which session state is persisted.
const (
	KeyAnswers = "assessment.answers"
	KeyFlags   = "assessment.flags"
)

// Session is one respondent's assessment in progress.
type Session struct {
	bank  *models.Bank
	store *persist.Store
	log   logger.Logger
	rng   *rand.Rand

	answers models.AnswerMap
	flags   models.FlagSet
	cursor  models.Cursor
	scores  map[models.InstrumentID]models.CategoryScores
}

// Option configures a Session.
type Option func(*Session)

// WithStore enables persistence. Without it the session lives in memory only.
func WithStore(store *persist.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger sets the logger for persistence warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithRand sets the random source used by AutoFill.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// New creates an empty session positioned on the first category of the first
// instrument. bank must be valid.
func New(bank *models.Bank, opts ...Option) *Session {
	s := &Session{
		bank:    bank,
		log:     logger.NewNoOpLogger(),
		answers: models.AnswerMap{},
		flags:   models.FlagSet{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.cursor = s.firstCursor()
	s.recompute()
	return s
}

// Bank returns the question bank.
func (s *Session) Bank() *models.Bank {
	return s.bank
}

// SetAnswer records value for key. Unknown keys and values outside the
// instrument's scale are rejected without changing anything. A valid write
// always re-saves, even when the value is unchanged. ctx bounds the save.
func (s *Session) SetAnswer(ctx context.Context, key models.QuestionKey, value int) error {
	inst, _, err := s.bank.Lookup(key)
	if err != nil {
		return err
	}
	if !inst.Scale.Contains(value) {
		return &OutOfRangeError{Key: key, Value: value, Scale: inst.Scale}
	}

	s.answers[key] = value
	s.recompute()
	s.save(ctx)
	return nil
}

// Answer returns the answer for key, if any.
func (s *Session) Answer(key models.QuestionKey) (int, bool) {
	v, ok := s.answers[key]
	return v, ok
}

// Answers returns a copy of all answers.
func (s *Session) Answers() models.AnswerMap {
	return s.answers.Clone()
}

// ToggleFlag flips the review flag on key and returns the new state.
func (s *Session) ToggleFlag(ctx context.Context, key models.QuestionKey) (bool, error) {
	if !s.bank.Contains(key) {
		return false, fmt.Errorf("%w: %s", models.ErrUnknownQuestion, key)
	}

	flagged := !s.flags.Has(key)
	if flagged {
		s.flags[key] = struct{}{}
	} else {
		delete(s.flags, key)
	}
	s.recompute()
	s.save(ctx)
	return flagged, nil
}

// IsFlagged reports whether key is flagged.
func (s *Session) IsFlagged(key models.QuestionKey) bool {
	return s.flags.Has(key)
}

// Flags returns the flagged keys in key order.
func (s *Session) Flags() []models.QuestionKey {
	return s.flags.Sorted()
}

// FlagCount returns the number of flagged keys.
func (s *Session) FlagCount() int {
	return len(s.flags)
}

// AutoFill answers every slot of the given instruments (all when none are
// given) with uniformly random in-scale values through SetAnswer.
func (s *Session) AutoFill(ctx context.Context, ids ...models.InstrumentID) error {
	if len(ids) == 0 {
		for i := range s.bank.Instruments {
			ids = append(ids, s.bank.Instruments[i].ID)
		}
	}

	for _, id := range ids {
		if s.bank.Instrument(id) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownInstrument, id)
		}
	}

	for _, id := range ids {
		inst := s.bank.Instrument(id)
		span := inst.Scale.Max - inst.Scale.Min + 1
		for _, key := range inst.Keys() {
			if err := s.SetAnswer(ctx, key, inst.Scale.Min+s.rng.IntN(span)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Scores returns a copy of the scores from the last recomputation.
func (s *Session) Scores() map[models.InstrumentID]models.CategoryScores {
	out := make(map[models.InstrumentID]models.CategoryScores, len(s.scores))
	for id, cs := range s.scores {
		cp := make(models.CategoryScores, len(cs))
		for k, v := range cs {
			cp[k] = v
		}
		out[id] = cp
	}
	return out
}

// CategoryScore returns one category's score.
func (s *Session) CategoryScore(id models.InstrumentID, category string) (int, bool) {
	v, ok := s.scores[id][category]
	return v, ok
}

func (s *Session) recompute() {
	s.scores = scoring.ScoreAll(s.bank, s.answers)
}
