package session

import (
	"context"
	"errors"

	"github.com/harrison/talentmap/internal/logger"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/persist"
)

type answersRecord struct {
	Answers models.AnswerMap `json:"answers"`
}

type flagsRecord struct {
	Flags []models.QuestionKey `json:"flags"`
}

// save writes full snapshots of answers and flags.
func (s *Session) save(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.saveEntry(ctx, KeyAnswers, answersRecord{Answers: s.answers})
	s.saveEntry(ctx, KeyFlags, flagsRecord{Flags: s.flags.Sorted()})
}

// saveEntry falls back to an unencrypted write when encryption fails, so
// progress survives a broken key at the cost of privacy at rest.
func (s *Session) saveEntry(ctx context.Context, key string, value any) {
	err := s.store.Save(ctx, key, value)
	if err == nil {
		return
	}
	if !persist.IsEncryptionFailure(err) {
		logger.Warnf(s.log, "autosave %s failed: %v", key, err)
		return
	}

	logger.Warnf(s.log, "encryption failed for %s, saving unencrypted: %v", key, err)
	if err := s.store.SaveUnencrypted(ctx, key, value); err != nil {
		logger.Warnf(s.log, "unencrypted autosave %s failed: %v", key, err)
	}
}

// RestoreResult summarizes what Restore found.
type RestoreResult struct {
	Answers  int
	Flags    int
	Dropped  int
	Migrated int
}

// Restore migrates any plaintext entries and loads the persisted answers and
// flags, replacing the in-memory state when an entry is found. Answers or
// flags that no longer fit the bank are dropped. Missing or corrupt state is
// not an error: the session simply starts empty.
func (s *Session) Restore(ctx context.Context) RestoreResult {
	var res RestoreResult
	if s.store == nil {
		return res
	}

	for _, key := range []string{KeyAnswers, KeyFlags} {
		migrated, err := s.store.Migrate(ctx, key)
		if err != nil {
			logger.Warnf(s.log, "migrating %s: %v", key, err)
		}
		if migrated {
			res.Migrated++
		}
	}

	var ar answersRecord
	if s.store.Load(ctx, KeyAnswers, &ar) {
		answers := models.AnswerMap{}
		for key, value := range ar.Answers {
			inst, _, err := s.bank.Lookup(key)
			if err != nil || !inst.Scale.Contains(value) {
				res.Dropped++
				continue
			}
			answers[key] = value
		}
		s.answers = answers
		res.Answers = len(answers)
	}

	var fr flagsRecord
	if s.store.Load(ctx, KeyFlags, &fr) {
		flags := models.FlagSet{}
		for _, key := range fr.Flags {
			if !s.bank.Contains(key) {
				res.Dropped++
				continue
			}
			flags[key] = struct{}{}
		}
		s.flags = flags
		res.Flags = len(flags)
	}

	if res.Dropped > 0 {
		logger.Warnf(s.log, "dropped %d persisted entries that no longer match the question bank", res.Dropped)
	}
	s.recompute()
	return res
}

// Reset clears answers, flags and the cursor, and removes persisted state.
func (s *Session) Reset(ctx context.Context) error {
	s.answers = models.AnswerMap{}
	s.flags = models.FlagSet{}
	s.cursor = s.firstCursor()
	s.recompute()
	return s.removePersisted(ctx)
}

func (s *Session) removePersisted(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return errors.Join(
		s.store.Remove(ctx, KeyAnswers),
		s.store.Remove(ctx, KeyFlags),
	)
}
