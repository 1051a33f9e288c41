package display

import (
	"fmt"

	"github.com/harrison/talentmap/internal/models"
	"github.com/harrison/talentmap/internal/session"
)

const flagMark = "⚑"

// Page renders the active category page with the current answers.
// Questions are numbered from 1 in page order.
func (p *Printer) Page(s *session.Session) {
	inst := s.CurrentInstrument()
	cat := s.CurrentCategory()
	if inst == nil || cat == nil {
		p.Info("No questions to show.")
		return
	}

	cur := s.Cursor()
	fmt.Fprintf(p.w, "%s  ›  %s  %s\n",
		p.bold.Sprint(inst.Name), p.cyan.Sprint(cat.Name),
		p.faint.Sprintf("(page %d/%d)", cur.Category+1, len(inst.Categories)))

	for i, key := range s.CurrentKeys() {
		_, text, err := s.Bank().Lookup(key)
		if err != nil {
			continue
		}
		answer := " "
		if v, ok := s.Answer(key); ok {
			answer = p.green.Sprint(v)
		}
		flag := ""
		if s.IsFlagged(key) {
			flag = " " + p.yellow.Sprint(flagMark)
		}
		fmt.Fprintf(p.w, "  %2d. [%s] %s%s\n", i+1, answer, text, flag)
	}

	pr := s.CurrentProgress()
	fmt.Fprintf(p.w, "Answer %d-%d. %s %s\n", inst.Scale.Min, inst.Scale.Max,
		inst.Name, p.progressColor(pr).Sprint(ProgressBar(pr, barWidth)))
}

// Status renders per-instrument progress, completion and flags.
func (p *Printer) Status(s *session.Session) {
	bank := s.Bank()
	width := nameWidth(bank)

	fmt.Fprintln(p.w, p.bold.Sprint("Assessment progress"))
	for i := range bank.Instruments {
		inst := &bank.Instruments[i]
		pr := s.InstrumentProgress(inst.ID)
		mark := " "
		if pr.Complete() {
			mark = p.green.Sprint("✓")
		}
		fmt.Fprintf(p.w, "  %s %-*s %s\n", mark, width, inst.Name, p.progressColor(pr).Sprint(ProgressBar(pr, barWidth)))
	}

	overall := s.OverallProgress()
	fmt.Fprintf(p.w, "    %-*s %s\n", width, "Overall", p.progressColor(overall).Sprint(ProgressBar(overall, barWidth)))

	if n := s.FlagCount(); n > 0 {
		fmt.Fprintf(p.w, "%s %d flagged for review\n", p.yellow.Sprint(flagMark), n)
		for _, key := range s.Flags() {
			fmt.Fprintf(p.w, "    %s\n", key)
		}
	}
}

// Scores renders each category's 0-100 score grouped by instrument.
func (p *Printer) Scores(scores map[models.InstrumentID]models.CategoryScores, bank *models.Bank) {
	for i := range bank.Instruments {
		inst := &bank.Instruments[i]
		cs, ok := scores[inst.ID]
		if !ok {
			continue
		}
		fmt.Fprintln(p.w, p.bold.Sprint(inst.Name))

		width := 0
		for j := range inst.Categories {
			width = max(width, len(inst.Categories[j].Name))
		}
		for j := range inst.Categories {
			cat := &inst.Categories[j]
			fmt.Fprintf(p.w, "  %-*s %s\n", width, cat.Name, p.cyan.Sprint(ScoreBar(cs[cat.Key], barWidth)))
		}
	}
}

func nameWidth(bank *models.Bank) int {
	width := len("Overall")
	for i := range bank.Instruments {
		width = max(width, len(bank.Instruments[i].Name))
	}
	return width
}
