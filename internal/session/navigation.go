package session

import "github.com/harrison/talentmap/internal/models"

// Navigation never moves on its own: each method reports whether the cursor
// moved, and boundary or out-of-range requests leave it unchanged.

func (s *Session) firstCursor() models.Cursor {
	if len(s.bank.Instruments) == 0 {
		return models.Cursor{}
	}
	return models.Cursor{Instrument: s.bank.Instruments[0].ID}
}

// Cursor returns the active instrument and category index.
func (s *Session) Cursor() models.Cursor {
	return s.cursor
}

// CurrentInstrument returns the active instrument.
func (s *Session) CurrentInstrument() *models.Instrument {
	return s.bank.Instrument(s.cursor.Instrument)
}

// CurrentCategory returns the active category page.
func (s *Session) CurrentCategory() *models.Category {
	inst := s.CurrentInstrument()
	if inst == nil || s.cursor.Category >= len(inst.Categories) {
		return nil
	}
	return &inst.Categories[s.cursor.Category]
}

// CurrentKeys returns the question slots on the active page.
func (s *Session) CurrentKeys() []models.QuestionKey {
	cat := s.CurrentCategory()
	if cat == nil {
		return nil
	}
	return models.CategoryKeys(s.cursor.Instrument, cat)
}

// NavigateToInstrument makes id active and resets to its first category.
func (s *Session) NavigateToInstrument(id models.InstrumentID) bool {
	if s.bank.Instrument(id) == nil || id == s.cursor.Instrument {
		return false
	}
	s.cursor = models.Cursor{Instrument: id}
	return true
}

// NavigateToCategory moves to category index within the active instrument.
func (s *Session) NavigateToCategory(index int) bool {
	inst := s.CurrentInstrument()
	if inst == nil || index < 0 || index >= len(inst.Categories) || index == s.cursor.Category {
		return false
	}
	s.cursor.Category = index
	return true
}

// NextCategory moves forward one page. It does not cross into the next
// instrument.
func (s *Session) NextCategory() bool {
	return s.NavigateToCategory(s.cursor.Category + 1)
}

// PreviousCategory moves back one page.
func (s *Session) PreviousCategory() bool {
	return s.NavigateToCategory(s.cursor.Category - 1)
}

// NextInstrument moves to the next instrument's first category.
func (s *Session) NextInstrument() bool {
	i := s.bank.IndexOf(s.cursor.Instrument)
	if i < 0 || i+1 >= len(s.bank.Instruments) {
		return false
	}
	return s.NavigateToInstrument(s.bank.Instruments[i+1].ID)
}

// PreviousInstrument moves to the previous instrument's first category.
func (s *Session) PreviousInstrument() bool {
	i := s.bank.IndexOf(s.cursor.Instrument)
	if i <= 0 {
		return false
	}
	return s.NavigateToInstrument(s.bank.Instruments[i-1].ID)
}

func (s *Session) IsFirstCategory() bool {
	return s.cursor.Category == 0
}

func (s *Session) IsLastCategory() bool {
	inst := s.CurrentInstrument()
	return inst == nil || s.cursor.Category == len(inst.Categories)-1
}

func (s *Session) IsFirstInstrument() bool {
	return s.bank.IndexOf(s.cursor.Instrument) <= 0
}

func (s *Session) IsLastInstrument() bool {
	return s.bank.IndexOf(s.cursor.Instrument) == len(s.bank.Instruments)-1
}
