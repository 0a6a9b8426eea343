// Package assessment holds the static catalog of assessment forms and the
// auto-calculate dispatch that maps a form's answers to score results.
package assessment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// FormID identifies an assessment protocol. A visit payload names its
// protocol with one of these values.
type FormID string

const (
	FormHouseholdProfile FormID = "household_profile"
	FormAnthropometry    FormID = "anthropometry"
	FormNCDScreening     FormID = "ncd_screening"
	FormAntenatalCare    FormID = "antenatal_care"
	FormUnder5           FormID = "under5_assessment"
	FormSocioEconomic    FormID = "socio_economic"
	FormEnvironment      FormID = "environmental_health"
	FormPHQ9             FormID = "phq9"
	FormGAD7             FormID = "gad7"
	FormAUDIT            FormID = "audit"
	FormAUDITC           FormID = "audit_c"
	FormMMSE             FormID = "mmse"
	FormKatzADL          FormID = "katz_adl"
)

// FieldType is the input widget kind of a form field.
type FieldType string

const (
	FieldNumber      FieldType = "number"
	FieldText        FieldType = "text"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldDate        FieldType = "date"
)

// Capabilities a schema may list under auto_calculate.
const (
	AutoBMI        = "bmi"
	AutoIBW        = "ibw"
	AutoWHR        = "whr"
	AutoTotalScore = "total_score"
	AutoSeverity   = "severity"
)

// FieldMemberID carries the optional member reference of a visit payload.
const FieldMemberID = "member_id"

// Field is one question of a form.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// Schema describes one protocol. Instrument is set for forms whose
// auto_calculate list asks for a total score or severity.
type Schema struct {
	ID            FormID             `json:"id"`
	Title         string             `json:"title"`
	Fields        []Field            `json:"fields"`
	AutoCalculate []string           `json:"auto_calculate,omitempty"`
	Instrument    scoring.Instrument `json:"instrument,omitempty"`
	MemberScoped  bool               `json:"member_scoped"`
}

// Calculates reports whether capability is listed in AutoCalculate.
func (s Schema) Calculates(capability string) bool {
	for _, c := range s.AutoCalculate {
		if c == capability {
			return true
		}
	}
	return false
}

// ScreeningInstrument returns the instrument run under the "screening" key,
// if the schema asks for a total score or severity.
func (s Schema) ScreeningInstrument() (scoring.Instrument, bool) {
	if s.Instrument == "" {
		return "", false
	}
	if !s.Calculates(AutoTotalScore) && !s.Calculates(AutoSeverity) {
		return "", false
	}
	return s.Instrument, true
}

// Field looks up a field by key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// FieldErrors maps field keys to validation messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "invalid answers: " + strings.Join(parts, "; ")
}

// Validate checks required fields, numeric bounds and select options. It
// returns nil or a FieldErrors.
func (s Schema) Validate(a scoring.Answers) error {
	errs := FieldErrors{}
	for _, f := range s.Fields {
		if !a.Has(f.Key) {
			if f.Required {
				errs[f.Key] = "is required"
			}
			continue
		}
		switch f.Type {
		case FieldNumber:
			v, ok := a.Measure(f.Key).Value()
			if !ok {
				errs[f.Key] = "must be a number"
				continue
			}
			if f.Min != nil && v < *f.Min {
				errs[f.Key] = fmt.Sprintf("must be at least %g", *f.Min)
			} else if f.Max != nil && v > *f.Max {
				errs[f.Key] = fmt.Sprintf("must be at most %g", *f.Max)
			}
		case FieldSelect:
			if len(f.Options) > 0 && !contains(f.Options, a.String(f.Key)) {
				errs[f.Key] = fmt.Sprintf("must be one of %s", strings.Join(f.Options, ", "))
			}
		case FieldDate:
			if _, err := common.ParseDate(a.String(f.Key)); err != nil {
				errs[f.Key] = "must be a date (YYYY-MM-DD)"
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
