package session

import "github.com/harrison/talentmap/internal/models"

// InstrumentProgress counts answered slots over all of an instrument's
// categories. An unknown instrument has zero progress.
func (s *Session) InstrumentProgress(id models.InstrumentID) models.Progress {
	inst := s.bank.Instrument(id)
	if inst == nil {
		return models.Progress{}
	}
	keys := inst.Keys()
	return models.NewProgress(s.answers.CountAnswered(keys), len(keys))
}

// CategoryProgress counts answered slots on one category page.
func (s *Session) CategoryProgress(id models.InstrumentID, category string) models.Progress {
	inst := s.bank.Instrument(id)
	if inst == nil {
		return models.Progress{}
	}
	cat := inst.Category(category)
	if cat == nil {
		return models.Progress{}
	}
	keys := models.CategoryKeys(id, cat)
	return models.NewProgress(s.answers.CountAnswered(keys), len(keys))
}

// CurrentProgress is the progress of the whole active instrument, not just
// the active page.
func (s *Session) CurrentProgress() models.Progress {
	return s.InstrumentProgress(s.cursor.Instrument)
}

// OverallProgress spans every instrument.
func (s *Session) OverallProgress() models.Progress {
	var total models.Progress
	for i := range s.bank.Instruments {
		total = total.Add(s.InstrumentProgress(s.bank.Instruments[i].ID))
	}
	return total
}

// IsInstrumentComplete reports whether every regular and reverse slot of id
// is answered.
func (s *Session) IsInstrumentComplete(id models.InstrumentID) bool {
	return s.InstrumentProgress(id).Complete()
}

// IsAllComplete reports whether every instrument is complete.
func (s *Session) IsAllComplete() bool {
	for i := range s.bank.Instruments {
		if !s.IsInstrumentComplete(s.bank.Instruments[i].ID) {
			return false
		}
	}
	return len(s.bank.Instruments) > 0
}

// Incomplete lists the instruments that still have unanswered slots.
func (s *Session) Incomplete() []models.InstrumentID {
	var out []models.InstrumentID
	for i := range s.bank.Instruments {
		if id := s.bank.Instruments[i].ID; !s.IsInstrumentComplete(id) {
			out = append(out, id)
		}
	}
	return out
}
