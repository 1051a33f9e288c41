package models

import (
	"errors"
	"fmt"
)

// ErrUnknownQuestion is returned when a key is not part of the bank.
var ErrUnknownQuestion = errors.New("unknown question")

// Bank is the full, immutable set of instruments administered in a session.
type Bank struct {
	Instruments []Instrument `yaml:"instruments" json:"instruments"`
}

// Instrument returns the instrument with the given id, or nil.
func (b *Bank) Instrument(id InstrumentID) *Instrument {
	for i := range b.Instruments {
		if b.Instruments[i].ID == id {
			return &b.Instruments[i]
		}
	}
	return nil
}

// IndexOf returns the position of id in administration order, or -1.
func (b *Bank) IndexOf(id InstrumentID) int {
	for i := range b.Instruments {
		if b.Instruments[i].ID == id {
			return i
		}
	}
	return -1
}

// QuestionCount returns the number of slots across all instruments.
func (b *Bank) QuestionCount() int {
	total := 0
	for i := range b.Instruments {
		total += b.Instruments[i].QuestionCount()
	}
	return total
}

// Lookup resolves a key to its instrument and question text.
func (b *Bank) Lookup(key QuestionKey) (*Instrument, string, error) {
	inst := b.Instrument(key.Instrument)
	if inst == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
	}
	cat := inst.Category(key.Category)
	if cat == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
	}
	list := cat.Questions
	if key.Reverse {
		list = cat.Reverse
	}
	if key.Index < 0 || key.Index >= len(list) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
	}
	return inst, list[key.Index], nil
}

// Contains reports whether key is a slot of the bank.
func (b *Bank) Contains(key QuestionKey) bool {
	_, _, err := b.Lookup(key)
	return err == nil
}

// Validate checks every instrument and requires each one exactly once.
func (b *Bank) Validate() error {
	seen := make(map[InstrumentID]bool, len(b.Instruments))
	for i := range b.Instruments {
		inst := &b.Instruments[i]
		if err := inst.Validate(); err != nil {
			return err
		}
		if seen[inst.ID] {
			return fmt.Errorf("duplicate instrument %q", inst.ID)
		}
		seen[inst.ID] = true
	}
	for _, id := range AllInstruments {
		if !seen[id] {
			return fmt.Errorf("missing instrument %q", id)
		}
	}
	return nil
}
