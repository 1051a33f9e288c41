package session

import (
	"errors"
	"fmt"

	"github.com/harrison/talentmap/internal/models"
)

// ErrUnknownInstrument is returned when an instrument id is not in the bank.
var ErrUnknownInstrument = errors.New("unknown instrument")

// OutOfRangeError rejects an answer outside the instrument's scale.
type OutOfRangeError struct {
	Key   models.QuestionKey
	Value int
	Scale models.Scale
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("answer %d for %s is outside scale %d-%d", e.Value, e.Key, e.Scale.Min, e.Scale.Max)
}
