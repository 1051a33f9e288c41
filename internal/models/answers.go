package models

import (
	"math"
	"slices"
)

// AnswerMap holds the respondent's Likert answers. A missing key means unanswered.
type AnswerMap map[QuestionKey]int

// Clone returns an independent copy.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CountAnswered returns how many of keys have an answer.
func (m AnswerMap) CountAnswered(keys []QuestionKey) int {
	n := 0
	for _, k := range keys {
		if _, ok := m[k]; ok {
			n++
		}
	}
	return n
}

// FlagSet holds question slots marked for later review. Unflagged keys are absent.
type FlagSet map[QuestionKey]struct{}

// Has reports whether key is flagged.
func (f FlagSet) Has(key QuestionKey) bool {
	_, ok := f[key]
	return ok
}

// Sorted returns the flagged keys in QuestionKey order.
func (f FlagSet) Sorted() []QuestionKey {
	keys := make([]QuestionKey, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, QuestionKey.Compare)
	return keys
}

// Clone returns an independent copy.
func (f FlagSet) Clone() FlagSet {
	out := make(FlagSet, len(f))
	for k := range f {
		out[k] = struct{}{}
	}
	return out
}

// CategoryScores maps category key to a 0-100 score.
type CategoryScores map[string]int

// Progress summarizes how many slots are answered.
type Progress struct {
	Answered   int `json:"answered"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NewProgress builds a Progress, rounding the percentage to the nearest integer.
func NewProgress(answered, total int) Progress {
	p := Progress{Answered: answered, Total: total}
	if total > 0 {
		p.Percentage = int(math.Round(float64(answered) * 100 / float64(total)))
	}
	return p
}

// Add combines two progress values.
func (p Progress) Add(other Progress) Progress {
	return NewProgress(p.Answered+other.Answered, p.Total+other.Total)
}

// Complete reports whether every slot is answered.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Answered == p.Total
}

// Cursor is the active instrument and category page.
type Cursor struct {
	Instrument InstrumentID `json:"instrument"`
	Category   int          `json:"category"`
}
