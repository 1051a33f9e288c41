package models

import "fmt"

// InstrumentID identifies one of the three psychometric instruments.
type InstrumentID string

const (
	// InstrumentVIA is the virtue/character strengths inventory.
	InstrumentVIA InstrumentID = "via"
	// InstrumentRIASEC is the interest/career inventory.
	InstrumentRIASEC InstrumentID = "riasec"
	// InstrumentOCEAN is the five-factor personality inventory.
	InstrumentOCEAN InstrumentID = "ocean"
)

// AllInstruments lists the instruments in administration order.
var AllInstruments = []InstrumentID{InstrumentVIA, InstrumentRIASEC, InstrumentOCEAN}

// Valid reports whether id names a known instrument.
func (id InstrumentID) Valid() bool {
	switch id {
	case InstrumentVIA, InstrumentRIASEC, InstrumentOCEAN:
		return true
	default:
		return false
	}
}

// Scale is the closed Likert interval an instrument is answered on.
type Scale struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether value lies within the scale.
func (s Scale) Contains(value int) bool {
	return value >= s.Min && value <= s.Max
}

// Invert maps a reverse-scored answer onto the regular direction.
func (s Scale) Invert(value int) int {
	return s.Max + s.Min - value
}

// Validate checks the scale has at least two points.
func (s Scale) Validate() error {
	if s.Max <= s.Min {
		return fmt.Errorf("scale max (%d) must be greater than min (%d)", s.Max, s.Min)
	}
	return nil
}

// Category is one page of questions within an instrument.
type Category struct {
	Key       string   `yaml:"key" json:"key"`
	Name      string   `yaml:"name" json:"name"`
	Questions []string `yaml:"questions" json:"questions"`
	Reverse   []string `yaml:"reverse,omitempty" json:"reverse,omitempty"`
}

// QuestionCount returns the number of regular and reverse slots.
func (c *Category) QuestionCount() int {
	return len(c.Questions) + len(c.Reverse)
}

// Instrument is an immutable questionnaire definition.
type Instrument struct {
	ID         InstrumentID `yaml:"id" json:"id"`
	Name       string       `yaml:"name" json:"name"`
	Scale      Scale        `yaml:"scale" json:"scale"`
	Categories []Category   `yaml:"categories" json:"categories"`
}

// QuestionCount returns the total number of slots across all categories.
func (inst *Instrument) QuestionCount() int {
	total := 0
	for i := range inst.Categories {
		total += inst.Categories[i].QuestionCount()
	}
	return total
}

// Category returns the category with the given key, or nil.
func (inst *Instrument) Category(key string) *Category {
	for i := range inst.Categories {
		if inst.Categories[i].Key == key {
			return &inst.Categories[i]
		}
	}
	return nil
}

// Keys returns every question slot of the instrument in page order,
// regular slots before reverse slots within each category.
func (inst *Instrument) Keys() []QuestionKey {
	keys := make([]QuestionKey, 0, inst.QuestionCount())
	for i := range inst.Categories {
		keys = append(keys, CategoryKeys(inst.ID, &inst.Categories[i])...)
	}
	return keys
}

// CategoryKeys returns the slots of a single category in page order.
func CategoryKeys(id InstrumentID, cat *Category) []QuestionKey {
	keys := make([]QuestionKey, 0, cat.QuestionCount())
	for idx := range cat.Questions {
		keys = append(keys, QuestionKey{Instrument: id, Category: cat.Key, Index: idx})
	}
	for idx := range cat.Reverse {
		keys = append(keys, QuestionKey{Instrument: id, Category: cat.Key, Index: idx, Reverse: true})
	}
	return keys
}

// Validate checks the instrument is well formed.
func (inst *Instrument) Validate() error {
	if !inst.ID.Valid() {
		return fmt.Errorf("unknown instrument id %q", inst.ID)
	}
	if err := inst.Scale.Validate(); err != nil {
		return fmt.Errorf("instrument %s: %w", inst.ID, err)
	}
	if len(inst.Categories) == 0 {
		return fmt.Errorf("instrument %s: no categories", inst.ID)
	}
	seen := make(map[string]bool, len(inst.Categories))
	for _, cat := range inst.Categories {
		if cat.Key == "" {
			return fmt.Errorf("instrument %s: category with empty key", inst.ID)
		}
		if !ValidCategoryKey(cat.Key) {
			return fmt.Errorf("instrument %s: category key %q may only contain letters, digits, '_' and '-'", inst.ID, cat.Key)
		}
		if seen[cat.Key] {
			return fmt.Errorf("instrument %s: duplicate category %q", inst.ID, cat.Key)
		}
		seen[cat.Key] = true
		if cat.QuestionCount() == 0 {
			return fmt.Errorf("instrument %s: category %q has no questions", inst.ID, cat.Key)
		}
	}
	return nil
}
