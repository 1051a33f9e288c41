// Package scoring converts Likert answers into 0-100 category scores.
//
// Scoring is pure: identical inputs always produce identical outputs. Sessions
// rely on this to recompute every instrument after each answer, which costs
// O(total questions) and stays cheap for banks of a few hundred questions.
package scoring

import (
	"math"

	"github.com/harrison/talentmap/internal/models"
)

// Score returns the score of every category of inst.
//
// Per category the mean of the answered slots is taken, with reverse slots
// inverted as (max + min - value), then rescaled from the instrument's scale
// onto 0-100 and rounded to the nearest integer. A category with no answered
// slots scores 0.
func Score(inst *models.Instrument, answers models.AnswerMap) models.CategoryScores {
	scores := make(models.CategoryScores, len(inst.Categories))
	for i := range inst.Categories {
		cat := &inst.Categories[i]
		scores[cat.Key] = CategoryScore(inst.ID, inst.Scale, cat, answers)
	}
	return scores
}

// CategoryScore scores a single category.
func CategoryScore(id models.InstrumentID, scale models.Scale, cat *models.Category, answers models.AnswerMap) int {
	sum, answered := 0, 0

	for idx := range cat.Questions {
		if v, ok := answers[models.QuestionKey{Instrument: id, Category: cat.Key, Index: idx}]; ok {
			sum += v
			answered++
		}
	}
	for idx := range cat.Reverse {
		if v, ok := answers[models.QuestionKey{Instrument: id, Category: cat.Key, Index: idx, Reverse: true}]; ok {
			sum += scale.Invert(v)
			answered++
		}
	}

	if answered == 0 {
		return 0
	}
	mean := float64(sum) / float64(answered)
	return Normalize(mean, scale)
}

// Normalize rescales a mean on scale onto 0-100, rounded and clamped.
func Normalize(mean float64, scale models.Scale) int {
	span := float64(scale.Max - scale.Min)
	if span <= 0 {
		return 0
	}
	pct := math.Round((mean - float64(scale.Min)) / span * 100)
	return clamp(int(pct))
}

// ScoreAll scores every instrument of the bank.
func ScoreAll(bank *models.Bank, answers models.AnswerMap) map[models.InstrumentID]models.CategoryScores {
	out := make(map[models.InstrumentID]models.CategoryScores, len(bank.Instruments))
	for i := range bank.Instruments {
		inst := &bank.Instruments[i]
		out[inst.ID] = Score(inst, answers)
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
