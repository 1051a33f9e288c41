package models

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// categoryKeyRegex is the charset a category key may use. ':' is the
// separator of the text form, so keys outside it cannot round-trip.
var categoryKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidCategoryKey reports whether s can be used as a category key.
func ValidCategoryKey(s string) bool {
	return categoryKeyRegex.MatchString(s)
}

// QuestionKey identifies a single question slot.
//
// Index is 0-based within the regular list, or within the reverse list when
// Reverse is set. The text form is only used for serialization.
type QuestionKey struct {
	Instrument InstrumentID
	Category   string
	Index      int
	Reverse    bool
}

// instrumentRank orders instruments by administration order rather than name.
func instrumentRank(id InstrumentID) int {
	for i, known := range AllInstruments {
		if known == id {
			return i
		}
	}
	return len(AllInstruments)
}

// Compare returns -1, 0 or +1 and defines a total order over keys:
// instrument, category, regular before reverse, then index.
func (k QuestionKey) Compare(other QuestionKey) int {
	if c := cmp.Compare(instrumentRank(k.Instrument), instrumentRank(other.Instrument)); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Instrument, other.Instrument); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Category, other.Category); c != 0 {
		return c
	}
	if k.Reverse != other.Reverse {
		if k.Reverse {
			return 1
		}
		return -1
	}
	return cmp.Compare(k.Index, other.Index)
}

// String returns the canonical text form, e.g. "ocean:neuroticism:2:r".
func (k QuestionKey) String() string {
	s := fmt.Sprintf("%s:%s:%d", k.Instrument, k.Category, k.Index)
	if k.Reverse {
		s += ":r"
	}
	return s
}

// MarshalText implements encoding.TextMarshaler so keys can be JSON map keys.
func (k QuestionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *QuestionKey) UnmarshalText(text []byte) error {
	parsed, err := ParseQuestionKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseQuestionKey parses the canonical text form produced by String.
func ParseQuestionKey(s string) (QuestionKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return QuestionKey{}, fmt.Errorf("invalid question key %q", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return QuestionKey{}, fmt.Errorf("invalid question key %q", s)
	}
	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return QuestionKey{}, fmt.Errorf("invalid question index in key %q", s)
	}
	key := QuestionKey{
		Instrument: InstrumentID(parts[0]),
		Category:   parts[1],
		Index:      idx,
	}
	if len(parts) == 4 {
		if parts[3] != "r" {
			return QuestionKey{}, fmt.Errorf("invalid reverse marker in key %q", s)
		}
		key.Reverse = true
	}
	return key, nil
}
