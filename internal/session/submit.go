package session

import (
	"context"
	"fmt"

	"github.com/harrison/talentmap/internal/backend"
	"github.com/harrison/talentmap/internal/logger"
	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/submission"
)

// Payload builds and validates the submission payload from the current
// scores. Every instrument must be complete.
func (s *Session) Payload() (submission.Payload, error) {
	if missing := s.Incomplete(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, id := range missing {
			names[i] = string(id)
		}
		return submission.Payload{}, &submission.ConfigurationError{Missing: names}
	}
	return submission.Build(s.scores)
}

// Submit sends the completed assessment. Only when the backend accepts it
// are answers and flags cleared, in memory and in the store; any failure
// leaves the session untouched so no progress is lost.
func (s *Session) Submit(ctx context.Context, submitter backend.Submitter) (backend.SubmitResponse, error) {
	payload, err := s.Payload()
	if err != nil {
		return backend.SubmitResponse{}, err
	}

	resp, err := submitter.Submit(ctx, payload)
	if err != nil {
		return backend.SubmitResponse{}, fmt.Errorf("submit assessment: %w", err)
	}

	s.answers = models.AnswerMap{}
	s.flags = models.FlagSet{}
	s.cursor = s.firstCursor()
	s.recompute()
	if err := s.removePersisted(ctx); err != nil {
		logger.Warnf(s.log, "clearing persisted state after submit: %v", err)
	}
	logger.Infof(s.log, "assessment submitted as job %s", resp.JobID)
	return resp, nil
}
