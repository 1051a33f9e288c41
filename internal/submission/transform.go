// Package submission converts category scores into the backend's wire
// payload and validates it before it leaves the device.
package submission

import (
	"fmt"

	"github.com/harrison/talentmap/internal/models"
)

// VIACategories are the six virtue keys the decomposition reads.
var VIACategories = []string{"wisdom", "courage", "humanity", "justice", "temperance", "transcendence"}

// expected lists the category keys each instrument must provide.
func expected() map[models.InstrumentID][]string {
	var r RIASEC
	var o OCEAN
	return map[models.InstrumentID][]string{
		models.InstrumentVIA:    VIACategories,
		models.InstrumentRIASEC: names(r.slots()),
		models.InstrumentOCEAN:  names(o.slots()),
	}
}

func names(slots []slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.name
	}
	return out
}

// CheckBank reports every expected category the bank does not define. A
// bank that fails this check can be answered but never submitted.
func CheckBank(bank *models.Bank) error {
	want := expected()

	var missing []string
	for _, id := range models.AllInstruments {
		inst := bank.Instrument(id)
		for _, key := range want[id] {
			if inst == nil || inst.Category(key) == nil {
				missing = append(missing, fmt.Sprintf("%s.%s", id, key))
			}
		}
	}
	if len(missing) > 0 {
		return &BankError{Missing: missing}
	}
	return nil
}

// Transform builds the wire payload. Every instrument must have a non-empty
// score map containing all of its expected categories; otherwise a
// *ConfigurationError is returned and no payload is built.
func Transform(scores map[models.InstrumentID]models.CategoryScores) (Payload, error) {
	want := expected()

	var missing []string
	for _, id := range models.AllInstruments {
		got := scores[id]
		if len(got) == 0 {
			missing = append(missing, string(id))
			continue
		}
		for _, key := range want[id] {
			if _, ok := got[key]; !ok {
				missing = append(missing, fmt.Sprintf("%s.%s", id, key))
			}
		}
	}
	if len(missing) > 0 {
		return Payload{}, &ConfigurationError{Missing: missing}
	}

	p := Payload{AssessmentName: AssessmentName}
	for _, s := range p.RIASEC.slots() {
		*s.ptr = scores[models.InstrumentRIASEC][s.name]
	}
	for _, s := range p.OCEAN.slots() {
		*s.ptr = scores[models.InstrumentOCEAN][s.name]
	}
	p.VIAIS = Decompose(scores[models.InstrumentVIA])
	return p, nil
}

// ValidationResult lists every violation found by Validate.
type ValidationResult struct {
	IsValid bool
	Errors  []FieldError
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validate checks that every score lies in [0,100] and the assessment name is
// the expected literal. All violations are reported, in wire order.
func Validate(p Payload) ValidationResult {
	var errs []FieldError

	check := func(block string, slots []slot) {
		for _, s := range slots {
			if v := *s.ptr; v < 0 || v > 100 {
				errs = append(errs, FieldError{
					Path:    block + "." + s.name,
					Message: fmt.Sprintf("must be between 0 and 100, got %d", v),
				})
			}
		}
	}
	check("riasec", p.RIASEC.slots())
	check("ocean", p.OCEAN.slots())
	check("viaIs", p.VIAIS.slots())

	if p.AssessmentName != AssessmentName {
		errs = append(errs, FieldError{
			Path:    "assessmentName",
			Message: fmt.Sprintf("must be %q", AssessmentName),
		})
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Build transforms and validates in one step.
func Build(scores map[models.InstrumentID]models.CategoryScores) (Payload, error) {
	p, err := Transform(scores)
	if err != nil {
		return Payload{}, err
	}
	if err := Validate(p).Err(); err != nil {
		return Payload{}, err
	}
	return p, nil
}
